package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/middleware"
	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{models.ErrValidation, http.StatusBadRequest},
	{models.ErrInvalidTransition, http.StatusBadRequest},
	{models.ErrInvalidState, http.StatusBadRequest},
	{models.ErrConflict, http.StatusBadRequest},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrDuplicate, http.StatusConflict},
	{models.ErrUnauthorized, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
}

// HTTPStatus maps a service error onto a response code and client message.
// Unknown and store errors become a bare 500.
func HTTPStatus(err error) (int, string) {
	if errors.Is(err, models.ErrInternal) {
		return http.StatusInternalServerError, "internal server error"
	}
	var te *models.TransitionError
	if errors.As(err, &te) {
		return http.StatusBadRequest, te.Error()
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := strings.TrimPrefix(err.Error(), s.err.Error()+": ")
			return s.status, msg
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// respondError attaches err for ErrorHandler to log and writes the envelope.
func respondError(c *gin.Context, err error) {
	status, msg := HTTPStatus(err)
	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse(msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(msg))
}

func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := helpers.ParseObjectID(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryID parses an optional id filter; nil when absent.
func queryID(c *gin.Context, name string) (*primitive.ObjectID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := helpers.ParseObjectID(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

func pagination(c *gin.Context) (models.Pagination, bool) {
	var p models.Pagination
	var err error
	if raw := c.Query("page"); raw != "" {
		if p.Page, err = strconv.Atoi(raw); err != nil || p.Page < 1 || p.Page > models.MaxPage {
			badRequest(c, "invalid page parameter")
			return p, false
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if p.Limit, err = strconv.Atoi(raw); err != nil || p.Limit < 1 {
			badRequest(c, "invalid limit parameter")
			return p, false
		}
	}
	return p, true
}

// callerID returns the authenticated user's id. AuthMiddleware has already
// rejected tokens without a usable id.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return primitive.NilObjectID, false
	}
	id, err := claims.ObjectID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return primitive.NilObjectID, false
	}
	return id, true
}

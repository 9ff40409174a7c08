package helpers

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomClaims is the payload of tokens issued by this service. Tokens from
// an external identity provider must carry the same id/email/role claims.
type CustomClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Helper methods for role checking
func (c *CustomClaims) UserRole() models.UserRole {
	role, err := models.ParseUserRole(c.Role)
	if err != nil {
		return ""
	}
	return role
}

func (c *CustomClaims) IsBackOffice() bool {
	return c.UserRole().IsBackOffice()
}

func (c *CustomClaims) HasRole(roles ...models.UserRole) bool {
	role := c.UserRole()
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

// ObjectID returns the caller's id; the id claim falls back to sub.
func (c *CustomClaims) ObjectID() (primitive.ObjectID, error) {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	return ParseObjectID(id)
}

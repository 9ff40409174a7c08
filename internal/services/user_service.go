package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	userRepo     models.UserRepo
	bookingsRepo models.BookingRepo
	jwtSecret    []byte
	jwtTTL       time.Duration
	logger       *slog.Logger
}

func NewUserService(userRepo models.UserRepo, bookingsRepo models.BookingRepo, jwtSecret []byte, jwtTTL time.Duration, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo:     userRepo,
		bookingsRepo: bookingsRepo,
		jwtSecret:    jwtSecret,
		jwtTTL:       jwtTTL,
		logger:       logger,
	}
}

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string
	Password string `validate:"required,min=8"`
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)

// Register creates a USER account and signs the caller in.
func (us *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := us.createAccount(ctx, in, models.RoleUser)
	if err != nil {
		return nil, err
	}
	us.logger.Info("user registered", "user_id", user.ID.Hex())
	return us.issue(user)
}

// CreateUser opens an account with any role on behalf of an administrator.
func (us *UserService) CreateUser(ctx context.Context, in RegisterInput, role models.UserRole) (*models.User, error) {
	role, err := models.ParseUserRole(string(role))
	if err != nil {
		return nil, err
	}
	user, err := us.createAccount(ctx, in, role)
	if err != nil {
		return nil, err
	}
	us.logger.Info("user created by admin", "user_id", user.ID.Hex(), "role", role)
	return user, nil
}

func (us *UserService) createAccount(ctx context.Context, in RegisterInput, role models.UserRole) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: invalid registration data: %v", models.ErrValidation, err)
	}

	if _, err := us.userRepo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", models.ErrDuplicate)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInternal, err)
	}

	now := time.Now().UTC()
	return us.userRepo.CreateUser(ctx, &models.User{
		Email:     in.Email,
		Name:      in.Name,
		Phone:     in.Phone,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (us *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := us.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return us.issue(user)
}

// AdminLogin is Login restricted to back-office roles.
func (us *UserService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := us.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsBackOffice() {
		us.logger.Warn("non back-office user attempted admin login", "user_id", user.ID.Hex())
		return nil, fmt.Errorf("%w: admin access required", models.ErrForbidden)
	}
	return us.issue(user)
}

func (us *UserService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(user.Password, password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (us *UserService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := helpers.IssueToken(us.jwtSecret, us.jwtTTL, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInternal, err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return us.userRepo.GetUserByID(ctx, id)
}

// ListUsers lists accounts of one role, customers (USER) when none is given,
// with each account's booking count.
func (us *UserService) ListUsers(ctx context.Context, q models.UserQuery) ([]*models.UserView, int64, error) {
	if q.Role == nil {
		role := models.RoleUser
		q.Role = &role
	}
	q.Pagination = q.Normalize(models.DefaultPageLimit)
	users, total, err := us.userRepo.ListUsers(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	counts, err := us.bookingsRepo.CountBookingsByUser(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	views := make([]*models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, &models.UserView{User: u, Count: models.UserCount{Bookings: counts[u.ID]}})
	}
	return views, total, nil
}

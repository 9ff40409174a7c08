package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleStaff UserRole = "STAFF"
	RoleAdmin UserRole = "ADMIN"
)

func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleStaff, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

// IsBackOffice reports whether the role may use the admin endpoints.
func (r UserRole) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password  string             `bson:"password" json:"-"`
	Role      UserRole           `bson:"role" json:"role" validate:"required,oneof=USER STAFF ADMIN"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u *User) BeforeCreate() error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

type UserQuery struct {
	Role *UserRole
	Pagination
}

func (q UserQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Role != nil {
		filter["role"] = *q.Role
	}
	return filter
}

// UserSummary is the contact card shown next to a booking in back-office views.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type UserCount struct {
	Bookings int64 `json:"bookings"`
}

type UserView struct {
	*User
	Count UserCount `json:"_count"`
}

package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const CarsFolder = "cars"

const (
	TokenIssuer    = "carhire"
	PasswordCost   = 12
	DefaultJWTTTL  = 7 * 24 * time.Hour
	dateOnlyLayout = "2006-01-02"
)

// IssueToken signs an HS256 token for the given user.
func IssueToken(secret []byte, ttl time.Duration, user *models.User) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultJWTTTL
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := CustomClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// TokenValidator checks HS256 tokens against the shared secret and, when a
// JWKS URL is configured, asymmetric tokens against the provider's keys.
type TokenValidator struct {
	secret []byte
	jwks   *keyfunc.JWKS
}

func NewTokenValidator(ctx context.Context, secret []byte, jwksURL string) (*TokenValidator, error) {
	tv := &TokenValidator{secret: secret}
	if jwksURL == "" {
		return tv, nil
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			slog.Warn("jwks refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks from %s: %w", jwksURL, err)
	}
	tv.jwks = jwks
	return tv, nil
}

func (tv *TokenValidator) keyFor(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if len(tv.secret) == 0 {
			return nil, errors.New("hmac tokens are not accepted")
		}
		return tv.secret, nil
	}
	if tv.jwks != nil {
		return tv.jwks.Keyfunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
}

func (tv *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, tv.keyFor,
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: token validation failed: %v", models.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", models.ErrUnauthorized)
	}
	return claims, nil
}

// Close stops the background JWKS refresh, if any.
func (tv *TokenValidator) Close() {
	if tv.jwks != nil {
		tv.jwks.EndBackground()
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ParseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", models.ErrValidation)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", models.ErrValidation, s)
	}
	return t, nil
}

func ParseObjectID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", models.ErrValidation, s)
	}
	return id, nil
}

func StringTrim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type UploadedImage struct {
	URL      string
	PublicID string
}

func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, imageNames []string, imagePath string) ([]UploadedImage, error) {
	var images []UploadedImage

	for i, filePath := range imageNames {
		if strings.TrimSpace(filePath) == "" {
			slog.Debug("skipping empty image path", "index", i)
			continue
		}
		uploadResult, err := cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
			Folder: imagePath,
			Tags:   []string{"carhire"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %s: %v", filePath, err)
		}
		images = append(images, UploadedImage{URL: uploadResult.SecureURL, PublicID: uploadResult.PublicID})
	}

	return images, nil
}

// DeleteImages removes uploaded images, logging the ones that could not be deleted.
func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, publicIDs []string) {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if _, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
			slog.Warn("failed to delete image", "public_id", id, "error", err)
		}
	}
}

// CloudinaryImages hosts car images on Cloudinary.
type CloudinaryImages struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryImages(cld *cloudinary.Cloudinary) *CloudinaryImages {
	return &CloudinaryImages{cld: cld}
}

func (ci *CloudinaryImages) Upload(ctx context.Context, src, folder string) (UploadedImage, error) {
	images, err := UploadImages(ctx, ci.cld, []string{src}, folder)
	if err != nil {
		return UploadedImage{}, err
	}
	if len(images) == 0 {
		return UploadedImage{URL: src}, nil
	}
	return images[0], nil
}

func (ci *CloudinaryImages) Delete(ctx context.Context, publicIDs ...string) {
	DeleteImages(ctx, ci.cld, publicIDs)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"zen-backend/internal/models"
)

type contextKey string

const ProfileIDKey contextKey = "profile_id"

// ProfileTokenTTL is how long an anonymous profile token stays valid.
const ProfileTokenTTL = 30 * 24 * time.Hour

// JWTAuth issues and verifies the anonymous tokens that bind a browser to
// its profile. The token carries no personal data.
type JWTAuth struct {
	Secret []byte
	now    func() time.Time
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret), now: time.Now}
}

// GenerateProfileToken signs a token for profileID.
func (j *JWTAuth) GenerateProfileToken(profileID uuid.UUID) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"profile_id": profileID.String(),
		"exp":        now.Add(ProfileTokenTTL).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ParseProfileToken verifies tokenStr and returns the profile it names.
func (j *JWTAuth) ParseProfileToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token claims")
	}
	idStr, ok := claims["profile_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing profile_id claim")
	}
	return uuid.Parse(idStr)
}

// Middleware validates the bearer token and attaches profile_id to context
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, models.CodeUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, models.CodeUnauthorized, "Invalid authorization format")
			return
		}

		profileID, err := j.ParseProfileToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, models.CodeUnauthorized, "Token has expired")
			} else {
				writeError(w, models.CodeUnauthorized, "Invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), ProfileIDKey, profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetProfileID extracts profile_id from request context
func GetProfileID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ProfileIDKey).(uuid.UUID)
	return id
}

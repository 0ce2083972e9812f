package middleware

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/repositories"
)

const callerContextKey = "caller"

// OptionalAuth resolves the caller identity for every request. A valid bearer
// token yields an account identity and upserts the user's profile row; a
// missing or invalid token degrades to an anonymous IP identity instead of
// rejecting the request, since the free tier serves anonymous callers too.
func OptionalAuth(secret string, users repositories.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := models.Caller{IP: c.ClientIP()}

		if claims := parseBearer(c.GetHeader("Authorization"), secret); claims != nil {
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				caller.UserID = sub
				syncProfile(c, users, claims, sub, logger)
			}
		}

		c.Set(callerContextKey, caller)
		c.Next()
	}
}

// CallerFrom returns the identity OptionalAuth resolved, or an anonymous
// caller when the middleware did not run.
func CallerFrom(c *gin.Context) models.Caller {
	if value, ok := c.Get(callerContextKey); ok {
		if caller, ok := value.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{IP: c.ClientIP()}
}

func parseBearer(header, secret string) jwt.MapClaims {
	if secret == "" || header == "" {
		return nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

func syncProfile(c *gin.Context, users repositories.UserRepository, claims jwt.MapClaims, userID string, logger *slog.Logger) {
	if users == nil {
		return
	}

	user := &models.User{ID: userID, Tier: models.TierFree}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok && name != "" {
		user.Name = &name
	}

	if err := users.Upsert(c.Request.Context(), user); err != nil {
		logger.Warn("failed to sync user profile",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

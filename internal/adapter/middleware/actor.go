package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-approval/internal/shared/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor_id"

// Actor authenticates "Authorization: Bearer <jwt>" signed with HS256 and
// stores the numeric user_id claim on the context.
func Actor(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			raw = strings.TrimSpace(raw)
			if !found || raw == "" {
				return writeError(c, apperror.ErrUnauthorized.WithMessage("bearer token not found"))
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token expired"
				}
				return writeError(c, apperror.ErrUnauthorized.WithMessage(msg))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return writeError(c, apperror.ErrUnauthorized.WithMessage("invalid token claims"))
			}
			// JSON numbers decode as float64
			f, ok := claims["user_id"].(float64)
			if !ok || f < 1 || f != float64(uint64(f)) {
				return writeError(c, apperror.ErrUnauthorized.WithMessage("user_id not found in token"))
			}
			c.Set(actorKey, uint64(f))
			return next(c)
		}
	}
}

// ActorID returns the authenticated user id set by Actor.
func ActorID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(actorKey).(uint64)
	return id, ok && id != 0
}

// SignToken issues an HS256 token for userID.
func SignToken(secret []byte, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func writeError(c echo.Context, e *apperror.AppError) error {
	return c.JSON(e.HTTPStatus, map[string]any{"error": e.Message, "code": e.Code})
}

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserNameKey contextKey = "user_name"
	UserRoleKey contextKey = "user_role"
)

// Role classifies the authenticated identity. Profiles with a missing or
// unrecognized role resolve to RoleNone, which satisfies no role check.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
	RoleNone    Role = ""
)

// ParseRole maps a stored role value onto the closed role set.
func ParseRole(s string) Role {
	switch s {
	case string(RolePatient):
		return RolePatient
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleNone
	}
}

func (r Role) IsAdmin() bool   { return r == RoleAdmin }
func (r Role) IsPatient() bool { return r == RolePatient }

type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// IssueToken signs an HS256 token for the given user.
func IssueToken(cfg TokenConfig, userID, name string, role Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		Name: name,
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// JWTMiddleware validates bearer tokens issued by IssueToken and places the
// resolved identity on the request context.
func JWTMiddleware(cfg TokenConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.Secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserNameKey, claims.Name)
			ctx = context.WithValue(ctx, UserRoleKey, ParseRole(claims.Role))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// OptionalJWTMiddleware resolves the identity when a bearer token is present
// but lets anonymous requests through. Used on public read endpoints.
func OptionalJWTMiddleware(cfg TokenConfig) echo.MiddlewareFunc {
	required := JWTMiddleware(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := required(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			return withAuth(c)
		}
	}
}

// DevUserID is the fixed identity DevAuthMiddleware hands out. A stable UUID
// so downstream ownership checks and foreign keys behave.
const DevUserID = "00000000-0000-0000-0000-000000000001"

// DevAuthMiddleware is a permissive middleware for development that gives
// unauthenticated requests a fixed admin identity.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, DevUserID)
			ctx = context.WithValue(ctx, UserNameKey, "Dev Admin")
			ctx = context.WithValue(ctx, UserRoleKey, RoleAdmin)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UserIDFromContext retrieves the authenticated user ID, or "" if anonymous.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// UserNameFromContext retrieves the authenticated user's display name.
func UserNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(UserNameKey).(string)
	return name
}

// RoleFromContext retrieves the resolved role, RoleNone if anonymous.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(UserRoleKey).(Role)
	return role
}

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims is the JWT payload issued by the account service.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	HospitalID string `json:"hospital_id,omitempty"`
}

// JWTMiddleware validates HS256 bearer tokens and attaches the resulting
// Actor to the request context. Paths matched by AuthSkipper pass through
// without a token.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if AuthSkipper(c) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

func actorFromClaims(claims *Claims) (Actor, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("invalid subject")
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Actor{}, err
	}
	actor := Actor{UserID: userID, Role: role}
	if claims.HospitalID != "" {
		hid, err := uuid.Parse(claims.HospitalID)
		if err != nil {
			return Actor{}, fmt.Errorf("invalid hospital_id")
		}
		actor.HospitalID = &hid
	}
	return actor, nil
}

// DevAuthMiddleware grants admin access to unauthenticated requests. The
// identity can be shaped with X-Dev-User and X-Dev-Role headers. Development
// only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := Actor{UserID: uuid.New(), Role: RoleAdmin}
			if raw := c.Request().Header.Get("X-Dev-User"); raw != "" {
				if uid, err := uuid.Parse(raw); err == nil {
					actor.UserID = uid
				}
			}
			if raw := c.Request().Header.Get("X-Dev-Role"); raw != "" {
				if role, err := ParseRole(raw); err == nil {
					actor.Role = role
				}
			}
			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

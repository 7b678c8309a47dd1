package auth

import (
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/model"
	"clinicdesk/internal/repository"
)

// actorContextKey is the echo context key under which the acting user is stored.
const actorContextKey = "actor"

// ResolveActor loads the user behind the JWT parsed by the echo-jwt middleware
// and stores it in the request context. A valid token whose user no longer
// exists is treated as unauthenticated.
func ResolveActor(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwtv5.Token)
			if !ok {
				return unauthenticated()
			}
			claims, ok := token.Claims.(jwtv5.MapClaims)
			if !ok {
				return unauthenticated()
			}
			rawID, ok := claims["user_id"].(float64)
			if !ok {
				return unauthenticated()
			}

			actor, err := users.FindByID(c.Request().Context(), uint(rawID))
			if err != nil {
				return unauthenticated()
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the acting user resolved by ResolveActor.
func ActorFrom(c echo.Context) (*model.User, bool) {
	actor, ok := c.Get(actorContextKey).(*model.User)
	return actor, ok
}

func unauthenticated() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "invalid or expired credentials",
		Code:  string(errors.KindUnauthenticated),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicdesk/internal/auth"
	"clinicdesk/internal/errors"
	"clinicdesk/internal/model"
)

// fail renders a domain error with its kind-specific status code.
func fail(c echo.Context, err error) error {
	status, body := errors.ToResponse(err)
	return c.JSON(status, body)
}

// requireActor returns the authenticated user resolved by the auth middleware.
func requireActor(c echo.Context) (*model.User, error) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "authentication required",
			Code:  string(errors.KindUnauthenticated),
		})
	}
	return actor, nil
}

package http

import (
	"strconv"
	"time"

	"procurement-approval/internal/adapter/middleware"
	"procurement-approval/internal/shared/apperror"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// respondError writes an AppError as {error, code, details}; anything else
// is a 500 carrying the underlying text.
func respondError(c echo.Context, err error) error {
	ae, ok := apperror.As(err)
	if !ok {
		ae = apperror.Internal(err)
	}
	return c.JSON(ae.HTTPStatus, ErrorResponse{Error: ae.Message, Code: ae.Code, Details: ae.Details})
}

// bindValid binds the body into dst and validates it.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperror.ErrBadRequest
	}
	if err := c.Validate(dst); err != nil {
		return apperror.ErrValidation.WithDetails(ToFieldErrors(err))
	}
	return nil
}

func actorOf(c echo.Context) (uint64, error) {
	id, ok := middleware.ActorID(c)
	if !ok {
		return 0, apperror.ErrUnauthorized
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation(name, "must be a positive integer")
	}
	return id, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperror.Validation(field, "must be a date formatted "+dateLayout)
	}
	return t.UTC(), nil
}

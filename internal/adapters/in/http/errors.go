package http

import (
	"errors"
	"net/http"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/services"
	"storefront/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// respondError maps an application error onto the HTTP status taxonomy:
// validation failures are 400, empty-cart and zone rejections 422, missing
// objects 404, illegal transitions and rejected callbacks 409.
func respondError(ctx echo.Context, err error) error {
	return ctx.JSON(statusFor(err), Error{
		Code:    statusFor(err),
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound),
		errors.Is(err, cart.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrCallbackRejected),
		errors.Is(err, order.ErrDeliveryAlreadyConfirmed):
		return http.StatusConflict
	case errors.Is(err, services.ErrCartIsEmpty),
		errors.Is(err, services.ErrOutsideDeliveryZone):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func unauthorized(ctx echo.Context) error {
	return ctx.JSON(http.StatusUnauthorized, Error{
		Code:    http.StatusUnauthorized,
		Message: "missing or invalid credentials",
	})
}

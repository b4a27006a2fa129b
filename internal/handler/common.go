package handler

// Shared helpers for the grid handlers: operator identity extraction and the
// mapping from engine/repository sentinel errors to HTTP responses.

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-front-desk/internal/grid"
    "github.com/iliyamo/hotel-front-desk/internal/repository"
)

// getOperatorID extracts the authenticated operator's numeric ID from the
// context values stored by the JWT middleware.  Claims arrive as string or
// float64 depending on how the issuer encoded the subject.
func getOperatorID(c echo.Context) (uint64, error) {
    switch v := c.Get("operator_id").(type) {
    case string:
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil || id == 0 {
            return 0, errors.New("invalid operator id claim")
        }
        return id, nil
    case float64:
        if v <= 0 {
            return 0, errors.New("invalid operator id claim")
        }
        return uint64(v), nil
    }
    return 0, errors.New("missing operator id claim")
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// writeGridError translates the sentinel errors raised by the engine and the
// repositories into JSON error responses.  Unrecognized errors become 500s
// with a generic message; the detail went to the log already.
func writeGridError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, grid.ErrMinimumOneNight):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check-out must be after check-in"})
    case errors.Is(err, grid.ErrNoSelection):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no committed selection on this room"})
    case errors.Is(err, grid.ErrUnknownRoom), errors.Is(err, repository.ErrRoomNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
    case errors.Is(err, grid.ErrUnknownReservation), errors.Is(err, repository.ErrReservationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    case errors.Is(err, grid.ErrRangeConflict), errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "range conflicts with an existing reservation"})
    case errors.Is(err, grid.ErrRoomOutOfService):
        return c.JSON(http.StatusConflict, echo.Map{"error": "room is out of service"})
    case errors.Is(err, grid.ErrBadTransition), errors.Is(err, repository.ErrBadState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state for this operation"})
    case errors.Is(err, repository.ErrBalanceOutstanding):
        return c.JSON(http.StatusConflict, echo.Map{"error": "guest balance outstanding"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

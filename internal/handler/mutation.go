package handler

// This file defines the mutation handlers.  Every mutation goes through the
// engine, which applies the edit optimistically, confirms against the
// backing store and rolls back with a transient notice on failure.  The
// handlers therefore return the post-mutation cache state on success and a
// mapped sentinel error otherwise; they never touch the database directly.

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-front-desk/internal/grid"
    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// MutationHandler groups the reservation-lifecycle and room-status
// endpoints over one engine.
type MutationHandler struct {
    Engine *grid.Engine
}

// NewMutationHandler constructs a MutationHandler.
func NewMutationHandler(engine *grid.Engine) *MutationHandler {
    if engine == nil {
        panic("nil engine passed to NewMutationHandler")
    }
    return &MutationHandler{Engine: engine}
}

// createReservationRequest is the body of POST /v1/reservations.  When
// FromSelection is set the room's committed drag range supplies the dates
// and CheckIn/CheckOut are ignored.
type createReservationRequest struct {
    RoomID        uint64     `json:"room_id"`
    GuestID       uint64     `json:"guest_id"`
    CheckIn       model.Date `json:"check_in"`
    CheckOut      model.Date `json:"check_out"`
    RateCents     uint32     `json:"rate_cents"`
    Notes         string     `json:"notes"`
    FromSelection bool       `json:"from_selection"`
}

// CreateReservation handles POST /v1/reservations.  The range is validated
// against the cached grid first (conflict, out-of-service, minimum one
// night); only a clear verdict reaches the store.  On success the new row is
// already merged into the cache and returned.
func (h *MutationHandler) CreateReservation(c echo.Context) error {
    if _, err := getOperatorID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createReservationRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.RoomID == 0 || req.GuestID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and guest_id are required"})
    }

    ctx := c.Request().Context()
    var (
        res model.Reservation
        err error
    )
    if req.FromSelection {
        res, err = h.Engine.CreateFromSelection(ctx, req.RoomID, req.GuestID, req.RateCents, req.Notes)
    } else {
        res, err = h.Engine.CreateReservation(ctx, req.RoomID, req.GuestID, req.CheckIn, req.CheckOut, req.RateCents, req.Notes)
    }
    if err != nil {
        return writeGridError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": res})
}

// CheckIn handles POST /v1/reservations/:id/check-in.  Only RESERVED
// reservations can check in; the room flips to OCCUPIED in the same edit.
func (h *MutationHandler) CheckIn(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    if err := h.Engine.CheckIn(c.Request().Context(), id); err != nil {
        return writeGridError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// checkOutRequest carries the manager override that completes a check-out
// despite an outstanding balance.
type checkOutRequest struct {
    Force bool `json:"force"`
}

// CheckOut handles POST /v1/reservations/:id/check-out.  Only CHECKED_IN
// reservations can check out; the room is freed and flagged dirty.  A guest
// with an outstanding balance requires force=true.
func (h *MutationHandler) CheckOut(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var req checkOutRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := h.Engine.CheckOut(c.Request().Context(), id, req.Force); err != nil {
        return writeGridError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Cancel handles POST /v1/reservations/:id/cancel.  Only RESERVED
// reservations can be cancelled; in-house stays must check out.
func (h *MutationHandler) Cancel(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    if err := h.Engine.CancelReservation(c.Request().Context(), id); err != nil {
        return writeGridError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// guestPresentRequest flips the key-custody flag.
type guestPresentRequest struct {
    Present bool `json:"present"`
}

// GuestPresent handles PATCH /v1/reservations/:id/guest-present.  Valid
// only while the reservation is CHECKED_IN.
func (h *MutationHandler) GuestPresent(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var req guestPresentRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := h.Engine.SetGuestPresent(c.Request().Context(), id, req.Present); err != nil {
        return writeGridError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// cleaningRequest sets the housekeeping status.
type cleaningRequest struct {
    Status model.CleaningStatus `json:"status"`
}

// SetCleaning handles PATCH /v1/grid/rooms/:id/cleaning.  Accepts CLEAN,
// DIRTY or IN_PROGRESS.
func (h *MutationHandler) SetCleaning(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var req cleaningRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if !model.ValidCleaningStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown cleaning status"})
    }
    if err := h.Engine.ChangeRoomCleaning(c.Request().Context(), id, req.Status); err != nil {
        return writeGridError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// serviceRequest sets the service status plus an optional note shown on the
// grid cell (e.g. "boiler leak, plumber Tuesday").
type serviceRequest struct {
    Status model.ServiceStatus `json:"status"`
    Note   string              `json:"note"`
}

// SetService handles PATCH /v1/grid/rooms/:id/service.  Accepts
// OPERATIONAL, MAINTENANCE or OUT_OF_SERVICE.  An empty note clears the
// stored note.
func (h *MutationHandler) SetService(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var req serviceRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if !model.ValidServiceStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown service status"})
    }
    if err := h.Engine.ChangeRoomService(c.Request().Context(), id, req.Status, req.Note); err != nil {
        return writeGridError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

package handler

// This file defines the read-side handlers for the booking grid: the full
// cache snapshot the terminal renders from, the per-room availability
// verdicts for a candidate range, the manual refresh backstop and the
// transient notice drain.

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-front-desk/internal/grid"
    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// GridHandler serves the grid read model.  All state lives in the engine;
// the handler only translates HTTP to engine calls.
type GridHandler struct {
    Engine *grid.Engine
}

// NewGridHandler constructs a GridHandler.  The engine must be non-nil.
func NewGridHandler(engine *grid.Engine) *GridHandler {
    if engine == nil {
        panic("nil engine passed to NewGridHandler")
    }
    return &GridHandler{Engine: engine}
}

// GetGrid handles GET /v1/grid.  It returns the full cache snapshot: rooms,
// reservations in the horizon, KPI counters, pending tasks and the loading
// flags.  While the initial load is failed the snapshot carries the error
// string and empty data; the client shows the blocking error state.
func (h *GridHandler) GetGrid(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Engine.Snapshot())
}

// GetAvailability handles GET /v1/grid/availability?from=YYYY-MM-DD&to=YYYY-MM-DD.
// It evaluates the candidate range against every room and returns one
// verdict per room.  The range is half-open: `to` is the check-out day.
func (h *GridHandler) GetAvailability(c echo.Context) error {
    from, err := model.ParseDate(c.QueryParam("from"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
    }
    to, err := model.ParseDate(c.QueryParam("to"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
    }
    verdicts, err := h.Engine.CheckAvailability(from, to)
    if err != nil {
        return writeGridError(c, err)
    }
    available := 0
    for _, v := range verdicts {
        if v.Available {
            available++
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":     verdicts,
        "count":     len(verdicts),
        "available": available,
    })
}

// Refresh handles POST /v1/grid/refresh.  It synchronously re-reads the
// room list and the dynamic dataset from the backing store and returns the
// fresh snapshot.  This is the operator's correctness backstop when the feed
// is suspect, and the only path that picks up rooms added or retired by the
// admin CRUD mid-session.
func (h *GridHandler) Refresh(c echo.Context) error {
    ctx := c.Request().Context()
    if err := h.Engine.RefetchRooms(ctx); err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "refresh failed"})
    }
    if err := h.Engine.Refetch(ctx); err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "refresh failed"})
    }
    return c.JSON(http.StatusOK, h.Engine.Snapshot())
}

// Notices handles GET /v1/grid/notices.  It drains and returns the pending
// transient notices (rolled-back mutations).  Each notice is delivered once.
func (h *GridHandler) Notices(c echo.Context) error {
    notices := h.Engine.Notices()
    if notices == nil {
        notices = []grid.Notice{}
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": notices,
        "count": len(notices),
    })
}

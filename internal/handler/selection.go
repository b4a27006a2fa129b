package handler

// This file exposes the drag-select state machine over HTTP.  The terminal
// forwards raw pointer gestures (down, enter, up) and renders whatever
// selection state comes back; all the rules about claimed cells and horizon
// bounds live in the grid package.

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-front-desk/internal/grid"
)

// SelectionHandler forwards pointer gestures to the engine's per-room
// drag-select machine.
type SelectionHandler struct {
    Engine *grid.Engine
}

// NewSelectionHandler constructs a SelectionHandler.
func NewSelectionHandler(engine *grid.Engine) *SelectionHandler {
    if engine == nil {
        panic("nil engine passed to NewSelectionHandler")
    }
    return &SelectionHandler{Engine: engine}
}

// cellGesture is the body of the down/enter gestures: the day-column index
// within the horizon.
type cellGesture struct {
    Index int `json:"index"`
}

// Down handles POST /v1/grid/rooms/:id/selection/down.  A press on a free
// in-range cell starts a drag; presses on claimed or out-of-range cells are
// ignored and the current (unchanged) selection state is returned.
func (h *SelectionHandler) Down(c echo.Context) error {
    roomID, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var g cellGesture
    if err := c.Bind(&g); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    h.Engine.CellDown(roomID, g.Index)
    return c.JSON(http.StatusOK, h.Engine.RowSelection(roomID))
}

// Enter handles POST /v1/grid/rooms/:id/selection/enter.  Extends an active
// drag across free cells; entering a claimed cell leaves the cursor where it
// was.
func (h *SelectionHandler) Enter(c echo.Context) error {
    roomID, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var g cellGesture
    if err := c.Bind(&g); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    h.Engine.CellEnter(roomID, g.Index)
    return c.JSON(http.StatusOK, h.Engine.RowSelection(roomID))
}

// Up handles POST /v1/grid/rooms/:id/selection/up.  Ends the drag and
// commits the ghost range.  Releasing without an active drag is a no-op and
// reports committed=false.
func (h *SelectionHandler) Up(c echo.Context) error {
    roomID, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    ghost, committed := h.Engine.CellUp(roomID)
    resp := echo.Map{
        "committed": committed,
        "selection": h.Engine.RowSelection(roomID),
    }
    if committed {
        resp["ghost"] = ghost
        if checkIn, checkOut, ok := h.Engine.CommittedRange(roomID); ok {
            resp["check_in"] = checkIn
            resp["check_out"] = checkOut
        }
    }
    return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/grid/rooms/:id/selection.  Returns the row's current
// interaction state for rendering.
func (h *SelectionHandler) Get(c echo.Context) error {
    roomID, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    return c.JSON(http.StatusOK, h.Engine.RowSelection(roomID))
}

// Clear handles DELETE /v1/grid/rooms/:id/selection.  Drops the row's ghost
// range; called when the reservation dialog is dismissed without booking.
func (h *SelectionHandler) Clear(c echo.Context) error {
    roomID, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    h.Engine.ClearSelection(roomID)
    return c.NoContent(http.StatusNoContent)
}

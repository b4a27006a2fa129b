// Package grid implements the booking-grid availability engine: the in-memory
// mirror of rooms and reservations over a rolling horizon, the pure
// conflict-detection functions, the drag-select interaction state machine, the
// optimistic mutation layer and the change-feed reconciler.  The HTTP handlers
// and the feed consumer are thin shells around this package.
package grid

import "github.com/iliyamo/hotel-front-desk/internal/model"

// Horizon is the bounded window of calendar days the grid tracks: a few days
// of past context plus a forward range.  Cells are addressed by zero-based
// day index within the window.
type Horizon struct {
    Start model.Date `json:"start"` // first rendered day, inclusive
    Days  int        `json:"days"`  // total number of rendered days
}

// NewHorizon builds a horizon of past+forward days around the given anchor
// date (normally today).
func NewHorizon(anchor model.Date, pastDays, forwardDays int) Horizon {
    if pastDays < 0 {
        pastDays = 0
    }
    if forwardDays < 1 {
        forwardDays = 1
    }
    return Horizon{Start: anchor.AddDays(-pastDays), Days: pastDays + forwardDays}
}

// End returns the first day past the window (exclusive bound).
func (h Horizon) End() model.Date { return h.Start.AddDays(h.Days) }

// DayAt returns the calendar date of the cell at index i.  The index is not
// range-checked; callers validate with InRange first.
func (h Horizon) DayAt(i int) model.Date { return h.Start.AddDays(i) }

// IndexOf maps a date to its cell index, reporting false when the date falls
// outside the window.
func (h Horizon) IndexOf(d model.Date) (int, bool) {
    i := h.Start.DaysUntil(d)
    if i < 0 || i >= h.Days {
        return 0, false
    }
    return i, true
}

// InRange reports whether the cell index lies inside the window.
func (h Horizon) InRange(i int) bool { return i >= 0 && i < h.Days }

// Contains reports whether the date lies inside the window.
func (h Horizon) Contains(d model.Date) bool {
    _, ok := h.IndexOf(d)
    return ok
}

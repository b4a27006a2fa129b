package grid

// CellRange is an inclusive range of day indices selected on one room row.
type CellRange struct {
    From int `json:"from"`
    To   int `json:"to"`
}

// Selection is the transient drag-select interaction state of one room row.
// It tracks the pointer-down/enter/up sequence and retains the committed
// range as a "ghost" until the reservation dialog is dismissed.  It is never
// persisted and never part of the reducer-owned cache state.
type Selection struct {
    Dragging bool       `json:"dragging"`
    Anchor   int        `json:"anchor"`
    Cursor   int        `json:"cursor"`
    Ghost    *CellRange `json:"ghost,omitempty"`
}

// SelectionTracker keeps per-room-row drag state for the grid view.  Only one
// row can be mid-drag at a time in practice, but rows are independent so the
// tracker does not enforce that.
type SelectionTracker struct {
    horizon Horizon
    rows    map[uint64]*Selection
}

// NewSelectionTracker builds a tracker bounded by the given horizon.
func NewSelectionTracker(h Horizon) *SelectionTracker {
    return &SelectionTracker{horizon: h, rows: make(map[uint64]*Selection)}
}

func (t *SelectionTracker) row(roomID uint64) *Selection {
    s, ok := t.rows[roomID]
    if !ok {
        s = &Selection{}
        t.rows[roomID] = s
    }
    return s
}

// CellDown starts a drag on an unclaimed cell.  A pointer-down on a claimed
// cell or outside the horizon is a no-op (the claimed cell opens its
// reservation on click instead).  Starting a drag discards any previous
// ghost on the row.
func (t *SelectionTracker) CellDown(roomID uint64, index int, claimed bool) {
    if claimed || !t.horizon.InRange(index) {
        return
    }
    s := t.row(roomID)
    s.Dragging = true
    s.Anchor = index
    s.Cursor = index
    s.Ghost = nil
}

// CellEnter moves the drag cursor while dragging.  Claimed or out-of-horizon
// cells leave the cursor where it was, keeping the selection contiguous over
// free cells only.
func (t *SelectionTracker) CellEnter(roomID uint64, index int, claimed bool) {
    s, ok := t.rows[roomID]
    if !ok || !s.Dragging {
        return
    }
    if claimed || !t.horizon.InRange(index) {
        return
    }
    s.Cursor = index
}

// CellUp commits the drag into an ordered inclusive range and returns it.
// The range is retained as the row's ghost selection until ClearGhost is
// called.  Returns false when the row was not mid-drag.
func (t *SelectionTracker) CellUp(roomID uint64) (CellRange, bool) {
    s, ok := t.rows[roomID]
    if !ok || !s.Dragging {
        return CellRange{}, false
    }
    s.Dragging = false
    from, to := s.Anchor, s.Cursor
    if from > to {
        from, to = to, from
    }
    s.Ghost = &CellRange{From: from, To: to}
    return *s.Ghost, true
}

// Ghost returns the committed ghost range for a row, if any.
func (t *SelectionTracker) Ghost(roomID uint64) (CellRange, bool) {
    s, ok := t.rows[roomID]
    if !ok || s.Ghost == nil {
        return CellRange{}, false
    }
    return *s.Ghost, true
}

// ClearGhost drops the row's ghost selection.  Called when the creation
// dialog closes, whether or not a reservation was created.
func (t *SelectionTracker) ClearGhost(roomID uint64) {
    if s, ok := t.rows[roomID]; ok {
        s.Dragging = false
        s.Ghost = nil
    }
}

// Snapshot returns a copy of the row's full interaction state for rendering.
func (t *SelectionTracker) Snapshot(roomID uint64) Selection {
    s, ok := t.rows[roomID]
    if !ok {
        return Selection{}
    }
    out := *s
    if s.Ghost != nil {
        g := *s.Ghost
        out.Ghost = &g
    }
    return out
}

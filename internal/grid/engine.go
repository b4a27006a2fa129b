package grid

import (
    "context"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

var (
    // ErrRangeConflict rejects a candidate range overlapping an active
    // reservation.  Reported before any store call is attempted.
    ErrRangeConflict = errors.New("range conflicts with an existing reservation")
    // ErrRoomOutOfService rejects any booking attempt on a room that is
    // not OPERATIONAL.
    ErrRoomOutOfService = errors.New("room is out of service")
    // ErrBadTransition rejects lifecycle operations from the wrong state,
    // e.g. checking in a reservation that is not RESERVED.
    ErrBadTransition = errors.New("invalid reservation state for this operation")
    // ErrNoSelection is returned when a reservation is requested from a
    // row without a committed ghost range.
    ErrNoSelection = errors.New("no committed selection on this room")
)

// Store is the booking-CRUD collaborator: the authoritative backing store
// the engine confirms mutations against and refreshes from.  The engine does
// not validate business rules beyond its own conflict check; the store may
// still reject a mutation (stale state, constraint violation), which the
// engine surfaces as a rollback plus a transient notice.
type Store interface {
    FetchRooms(ctx context.Context) ([]model.Room, error)
    FetchReservations(ctx context.Context, from, to model.Date) ([]model.Reservation, error)
    FetchKPIs(ctx context.Context) (model.KPISet, error)
    FetchTodayTasks(ctx context.Context) (model.TaskList, error)

    CreateReservation(ctx context.Context, roomID, guestID uint64, checkIn, checkOut model.Date, rateCents uint32, notes string) (model.Reservation, error)
    ChangeRoomCleaning(ctx context.Context, roomID uint64, status model.CleaningStatus) error
    ChangeRoomService(ctx context.Context, roomID uint64, status model.ServiceStatus, note string) error
    SetGuestPresent(ctx context.Context, reservationID uint64, present bool) error
    CheckIn(ctx context.Context, reservationID uint64) error
    CheckOut(ctx context.Context, reservationID uint64, force bool) error
    CancelReservation(ctx context.Context, reservationID uint64) error
}

// Notice is a user-visible transient message, produced when a backing-store
// confirmation fails and the optimistic edit was rolled back.  Failures are
// never silently swallowed and never retried automatically; the operator
// re-issues the action.
type Notice struct {
    Message string    `json:"message"`
    At      time.Time `json:"at"`
}

// View is the read model handed to the rendering layer.  All slices are
// copies; the renderer can never mutate the cache through a View.
type View struct {
    Rooms        []model.Room        `json:"rooms"`
    Reservations []model.Reservation `json:"reservations"`
    KPIs         model.KPISet        `json:"kpis"`
    PendingTasks model.TaskList      `json:"pending_tasks"`
    Horizon      Horizon             `json:"horizon"`
    IsLoading    bool                `json:"is_loading"`
    IsRefreshing bool                `json:"is_refreshing"`
    Error        string              `json:"error,omitempty"`
}

// Engine owns the Local Cache and every mutation path into it.  All writes
// funnel through the reducer in state.go under one mutex: the three async
// producers (operator mutations, refresh responses, feed events) interleave
// but never interleave *inside* a mutation.  Optimistic edits are applied
// before the store round-trip begins; background refreshes and feed
// processing run on their own goroutines so they never delay an in-progress
// operator action.
type Engine struct {
    store   Store
    horizon Horizon

    mu    sync.Mutex
    state State
    sel   *SelectionTracker

    notices []Notice

    refetchInFlight bool
}

// NewEngine builds an engine over the given store and horizon.  Call Load
// before serving views.
func NewEngine(store Store, horizon Horizon) *Engine {
    return &Engine{
        store:   store,
        horizon: horizon,
        sel:     NewSelectionTracker(horizon),
    }
}

// Horizon returns the window the engine tracks.
func (e *Engine) Horizon() Horizon { return e.horizon }

// dispatch funnels one event through the reducer and schedules whatever
// follow-up work the reduction requested.
func (e *Engine) dispatch(ev event) {
    e.mu.Lock()
    next, follow := reduce(e.state, ev)
    e.state = next
    e.mu.Unlock()

    switch follow {
    case followDataset:
        e.scheduleRefetch()
    case followKPIs:
        go e.backgroundKPIRefresh()
    }
}

// Load performs the initial fetch of the full dataset.  A failure here is a
// blocking error state: the cache is left empty with LoadError set and no
// partial data is exposed.
func (e *Engine) Load(ctx context.Context) error {
    e.dispatch(evLoading{on: true})

    rooms, err := e.store.FetchRooms(ctx)
    if err != nil {
        e.dispatch(evLoadFailed{msg: err.Error()})
        return fmt.Errorf("load rooms: %w", err)
    }
    e.dispatch(evRoomsLoaded{rooms: rooms})

    if err := e.fetchDataset(ctx); err != nil {
        e.dispatch(evLoadFailed{msg: err.Error()})
        return err
    }
    return nil
}

// Refetch re-reads the dynamic dataset (reservations, KPIs, pending tasks)
// from the store.  It is the manual correctness backstop when the feed
// disconnects, and the reconciler's answer to events it cannot merge
// fine-grained.
func (e *Engine) Refetch(ctx context.Context) error {
    e.dispatch(evRefreshing{on: true})
    if err := e.fetchDataset(ctx); err != nil {
        e.dispatch(evRefreshing{on: false})
        return err
    }
    return nil
}

func (e *Engine) fetchDataset(ctx context.Context) error {
    reservations, err := e.store.FetchReservations(ctx, e.horizon.Start, e.horizon.End())
    if err != nil {
        return fmt.Errorf("load reservations: %w", err)
    }
    kpis, err := e.store.FetchKPIs(ctx)
    if err != nil {
        return fmt.Errorf("load kpis: %w", err)
    }
    tasks, err := e.store.FetchTodayTasks(ctx)
    if err != nil {
        return fmt.Errorf("load tasks: %w", err)
    }
    e.dispatch(evDatasetLoaded{reservations: reservations, kpis: kpis, tasks: tasks})
    return nil
}

// RefetchRooms re-reads the room list.  Rooms are otherwise static per
// session.
func (e *Engine) RefetchRooms(ctx context.Context) error {
    rooms, err := e.store.FetchRooms(ctx)
    if err != nil {
        return fmt.Errorf("load rooms: %w", err)
    }
    e.dispatch(evRoomsLoaded{rooms: rooms})
    return nil
}

// RefreshKPIs re-reads only the KPI counters, correcting any incremental
// drift.
func (e *Engine) RefreshKPIs(ctx context.Context) error {
    kpis, err := e.store.FetchKPIs(ctx)
    if err != nil {
        return fmt.Errorf("load kpis: %w", err)
    }
    e.dispatch(evKPIsLoaded{kpis: kpis})
    return nil
}

// RunKPIRefresh periodically refreshes the KPI counters until the context is
// cancelled.  Intended to run on its own goroutine.
func (e *Engine) RunKPIRefresh(ctx context.Context, interval time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := e.RefreshKPIs(ctx); err != nil {
                log.Printf("grid: periodic kpi refresh failed: %v", err)
            }
        }
    }
}

// scheduleRefetch kicks a background dynamic-dataset refetch, collapsing
// concurrent requests into one in-flight fetch.
func (e *Engine) scheduleRefetch() {
    e.mu.Lock()
    if e.refetchInFlight {
        e.mu.Unlock()
        return
    }
    e.refetchInFlight = true
    e.mu.Unlock()

    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
        defer cancel()
        if err := e.Refetch(ctx); err != nil {
            log.Printf("grid: background refetch failed: %v", err)
        }
        e.mu.Lock()
        e.refetchInFlight = false
        e.mu.Unlock()
    }()
}

func (e *Engine) backgroundKPIRefresh() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.RefreshKPIs(ctx); err != nil {
        log.Printf("grid: kpi refresh after rollback failed: %v", err)
    }
}

// Snapshot returns a copy of the current cache for the rendering layer.
func (e *Engine) Snapshot() View {
    e.mu.Lock()
    s := e.state.clone()
    e.mu.Unlock()
    return View{
        Rooms:        s.Rooms,
        Reservations: s.Reservations,
        KPIs:         s.KPIs,
        PendingTasks: s.Tasks,
        Horizon:      e.horizon,
        IsLoading:    s.Loading,
        IsRefreshing: s.Refreshing,
        Error:        s.LoadError,
    }
}

// Notices drains and returns the pending transient notices.
func (e *Engine) Notices() []Notice {
    e.mu.Lock()
    out := e.notices
    e.notices = nil
    e.mu.Unlock()
    return out
}

func (e *Engine) pushNotice(format string, args ...interface{}) {
    n := Notice{Message: fmt.Sprintf(format, args...), At: time.Now().UTC()}
    e.mu.Lock()
    e.notices = append(e.notices, n)
    e.mu.Unlock()
    log.Printf("grid: %s", n.Message)
}

// HandleChange feeds one change-feed event into the reconciler.  Safe to
// call from the consumer goroutine at any time.
func (e *Engine) HandleChange(ch ChangeEvent) {
    e.dispatch(evChange{change: ch})
}

// ApplyOptimistic applies a speculative field-level edit and returns the
// pre-mutation snapshot the caller must keep for Rollback.  There is no
// commit call: success is implicit, the edit stays in place until a feed
// event or refresh confirms it.
func (e *Engine) ApplyOptimistic(ref Ref, patch Patch) (Snapshot, error) {
    e.mu.Lock()
    snap, err := snapshotFor(&e.state, ref, patch)
    if err != nil {
        e.mu.Unlock()
        return Snapshot{}, err
    }
    next, _ := reduce(e.state, evPatch{ref: ref, patch: patch})
    e.state = next
    e.mu.Unlock()
    return snap, nil
}

// Rollback restores exactly the fields captured in the snapshot and
// schedules an authoritative KPI refresh.
func (e *Engine) Rollback(snap Snapshot) {
    e.dispatch(evRollback{snap: snap})
}

// confirm runs the store round-trip for an already-applied optimistic edit.
// On failure every snapshot is rolled back in reverse order and a transient
// notice is queued; the error is returned so the HTTP layer can report it.
func (e *Engine) confirm(what string, snaps []Snapshot, call func() error) error {
    if err := call(); err != nil {
        for i := len(snaps) - 1; i >= 0; i-- {
            e.Rollback(snaps[i])
        }
        e.pushNotice("%s failed: %v", what, err)
        return err
    }
    return nil
}

// ChangeRoomCleaning sets a room's housekeeping status optimistically and
// confirms against the store.
func (e *Engine) ChangeRoomCleaning(ctx context.Context, roomID uint64, status model.CleaningStatus) error {
    if !model.ValidCleaningStatus(status) {
        return fmt.Errorf("unknown cleaning status %q", status)
    }
    snap, err := e.ApplyOptimistic(RoomRef(roomID), Patch{Room: &RoomPatch{Cleaning: &status}})
    if err != nil {
        return err
    }
    return e.confirm("change room cleaning", []Snapshot{snap}, func() error {
        return e.store.ChangeRoomCleaning(ctx, roomID, status)
    })
}

// ChangeRoomService sets a room's service status plus optional note.
func (e *Engine) ChangeRoomService(ctx context.Context, roomID uint64, status model.ServiceStatus, note string) error {
    if !model.ValidServiceStatus(status) {
        return fmt.Errorf("unknown service status %q", status)
    }
    snap, err := e.ApplyOptimistic(RoomRef(roomID), Patch{Room: &RoomPatch{Service: &status, ServiceNote: &note}})
    if err != nil {
        return err
    }
    return e.confirm("change room service", []Snapshot{snap}, func() error {
        return e.store.ChangeRoomService(ctx, roomID, status, note)
    })
}

// SetGuestPresent flips the key-custody flag of a checked-in reservation.
func (e *Engine) SetGuestPresent(ctx context.Context, reservationID uint64, present bool) error {
    e.mu.Lock()
    res := e.state.reservation(reservationID)
    if res == nil {
        e.mu.Unlock()
        return ErrUnknownReservation
    }
    if res.State != model.StateCheckedIn {
        e.mu.Unlock()
        return ErrBadTransition
    }
    e.mu.Unlock()

    snap, err := e.ApplyOptimistic(ReservationRef(reservationID), Patch{Reservation: &ReservationPatch{GuestPresent: &present}})
    if err != nil {
        return err
    }
    return e.confirm("set guest present", []Snapshot{snap}, func() error {
        return e.store.SetGuestPresent(ctx, reservationID, present)
    })
}

// CheckIn transitions a RESERVED reservation to CHECKED_IN and occupies the
// room, both optimistically, then confirms against the store.
func (e *Engine) CheckIn(ctx context.Context, reservationID uint64) error {
    e.mu.Lock()
    res := e.state.reservation(reservationID)
    if res == nil {
        e.mu.Unlock()
        return ErrUnknownReservation
    }
    if res.State != model.StateReserved {
        e.mu.Unlock()
        return ErrBadTransition
    }
    roomID := res.RoomID
    e.mu.Unlock()

    checkedIn := model.StateCheckedIn
    present := true
    resSnap, err := e.ApplyOptimistic(ReservationRef(reservationID),
        Patch{Reservation: &ReservationPatch{State: &checkedIn, GuestPresent: &present}})
    if err != nil {
        return err
    }
    occupied := model.OccupancyOccupied
    roomSnap, err := e.ApplyOptimistic(RoomRef(roomID), Patch{Room: &RoomPatch{Occupancy: &occupied}})
    if err != nil {
        e.Rollback(resSnap)
        return err
    }
    return e.confirm("check-in", []Snapshot{resSnap, roomSnap}, func() error {
        return e.store.CheckIn(ctx, reservationID)
    })
}

// CheckOut transitions a CHECKED_IN reservation to CHECKED_OUT, freeing the
// room and flagging it dirty.  Eviction of the terminal reservation from the
// cache is left to the feed event, which is the canonical source of that
// side effect.
func (e *Engine) CheckOut(ctx context.Context, reservationID uint64, force bool) error {
    e.mu.Lock()
    res := e.state.reservation(reservationID)
    if res == nil {
        e.mu.Unlock()
        return ErrUnknownReservation
    }
    if res.State != model.StateCheckedIn {
        e.mu.Unlock()
        return ErrBadTransition
    }
    roomID := res.RoomID
    e.mu.Unlock()

    checkedOut := model.StateCheckedOut
    resSnap, err := e.ApplyOptimistic(ReservationRef(reservationID),
        Patch{Reservation: &ReservationPatch{State: &checkedOut}})
    if err != nil {
        return err
    }
    free := model.OccupancyFree
    dirty := model.CleaningDirty
    roomSnap, err := e.ApplyOptimistic(RoomRef(roomID),
        Patch{Room: &RoomPatch{Occupancy: &free, Cleaning: &dirty}})
    if err != nil {
        e.Rollback(resSnap)
        return err
    }
    return e.confirm("check-out", []Snapshot{resSnap, roomSnap}, func() error {
        return e.store.CheckOut(ctx, reservationID, force)
    })
}

// CancelReservation cancels a RESERVED reservation.  Checked-in stays must
// go through CheckOut instead.
func (e *Engine) CancelReservation(ctx context.Context, reservationID uint64) error {
    e.mu.Lock()
    res := e.state.reservation(reservationID)
    if res == nil {
        e.mu.Unlock()
        return ErrUnknownReservation
    }
    if res.State != model.StateReserved {
        e.mu.Unlock()
        return ErrBadTransition
    }
    e.mu.Unlock()

    cancelled := model.StateCancelled
    snap, err := e.ApplyOptimistic(ReservationRef(reservationID),
        Patch{Reservation: &ReservationPatch{State: &cancelled}})
    if err != nil {
        return err
    }
    return e.confirm("cancel reservation", []Snapshot{snap}, func() error {
        return e.store.CancelReservation(ctx, reservationID)
    })
}

// CreateReservation validates the candidate range against the conflict
// engine and, when clear, asks the store to create the reservation.  The
// returned row is merged into the cache immediately; the later feed event is
// idempotent and simply confirms it.
func (e *Engine) CreateReservation(ctx context.Context, roomID, guestID uint64, checkIn, checkOut model.Date, rateCents uint32, notes string) (model.Reservation, error) {
    if err := ValidateRange(checkIn, checkOut); err != nil {
        return model.Reservation{}, err
    }
    e.mu.Lock()
    room := e.state.room(roomID)
    if room == nil {
        e.mu.Unlock()
        return model.Reservation{}, ErrUnknownRoom
    }
    verdict := CheckRoom(room, checkIn, checkOut, e.state.Reservations)
    e.mu.Unlock()
    if !verdict.Available {
        if verdict.Reason == ReasonOutOfService {
            return model.Reservation{}, ErrRoomOutOfService
        }
        return model.Reservation{}, ErrRangeConflict
    }

    res, err := e.store.CreateReservation(ctx, roomID, guestID, checkIn, checkOut, rateCents, notes)
    if err != nil {
        e.pushNotice("create reservation failed: %v", err)
        return model.Reservation{}, err
    }
    e.dispatch(evReservationCreated{res: res})
    return res, nil
}

// CreateFromSelection turns a row's committed ghost range into a
// reservation and clears the ghost on success.
func (e *Engine) CreateFromSelection(ctx context.Context, roomID, guestID uint64, rateCents uint32, notes string) (model.Reservation, error) {
    checkIn, checkOut, ok := e.CommittedRange(roomID)
    if !ok {
        return model.Reservation{}, ErrNoSelection
    }
    res, err := e.CreateReservation(ctx, roomID, guestID, checkIn, checkOut, rateCents, notes)
    if err != nil {
        return model.Reservation{}, err
    }
    e.ClearSelection(roomID)
    return res, nil
}

// CheckAvailability evaluates the candidate range against every cached
// room, returning one verdict per room with the reason codes the UI needs.
func (e *Engine) CheckAvailability(checkIn, checkOut model.Date) ([]Verdict, error) {
    if err := ValidateRange(checkIn, checkOut); err != nil {
        return nil, err
    }
    e.mu.Lock()
    defer e.mu.Unlock()
    out := make([]Verdict, 0, len(e.state.Rooms))
    for i := range e.state.Rooms {
        out = append(out, CheckRoom(&e.state.Rooms[i], checkIn, checkOut, e.state.Reservations))
    }
    return out, nil
}

// cellClaimed reports whether the room/day cell is claimed by an active
// reservation.  Callers must hold e.mu.
func (e *Engine) cellClaimed(roomID uint64, index int) bool {
    if !e.horizon.InRange(index) {
        return true
    }
    return CellOccupant(roomID, e.horizon.DayAt(index), e.state.Reservations) != nil
}

// CellDown forwards a pointer-down to the drag-select machine.  Claimed
// cells are ignored here; the UI opens the existing reservation instead.
func (e *Engine) CellDown(roomID uint64, index int) {
    e.mu.Lock()
    defer e.mu.Unlock()
    e.sel.CellDown(roomID, index, e.cellClaimed(roomID, index))
}

// CellEnter forwards a pointer-enter to the drag-select machine.
func (e *Engine) CellEnter(roomID uint64, index int) {
    e.mu.Lock()
    defer e.mu.Unlock()
    e.sel.CellEnter(roomID, index, e.cellClaimed(roomID, index))
}

// CellUp commits the drag into a ghost range.
func (e *Engine) CellUp(roomID uint64) (CellRange, bool) {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.sel.CellUp(roomID)
}

// CommittedRange converts the row's ghost selection into a date range.  Cell
// indices map one-to-one onto days: the first selected cell is the check-in
// day and the last selected cell is the check-out day, so a drag over cells
// 5..8 yields the half-open range [day 5, day 8) of three nights.  A
// single-cell click therefore yields a zero-night range, which ValidateRange
// rejects downstream.
func (e *Engine) CommittedRange(roomID uint64) (checkIn, checkOut model.Date, ok bool) {
    e.mu.Lock()
    defer e.mu.Unlock()
    g, ok := e.sel.Ghost(roomID)
    if !ok {
        return model.Date{}, model.Date{}, false
    }
    return e.horizon.DayAt(g.From), e.horizon.DayAt(g.To), true
}

// ClearSelection drops the row's ghost; called when the creation dialog is
// dismissed.
func (e *Engine) ClearSelection(roomID uint64) {
    e.mu.Lock()
    defer e.mu.Unlock()
    e.sel.ClearGhost(roomID)
}

// RowSelection returns the row's interaction state for rendering.
func (e *Engine) RowSelection(roomID uint64) Selection {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.sel.Snapshot(roomID)
}

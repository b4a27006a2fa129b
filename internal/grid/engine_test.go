package grid

import (
    "context"
    "errors"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// fakeStore is an in-memory Store with switchable failures.  All methods are
// mutex-guarded because the engine calls FetchKPIs from background
// goroutines after rollbacks.
type fakeStore struct {
    mu           sync.Mutex
    rooms        []model.Room
    reservations []model.Reservation
    kpis         model.KPISet
    tasks        model.TaskList

    nextID       uint64
    failCreate   error
    failCheckIn  error
    failCheckOut error
    failCancel   error
    failCleaning error
    failFetch    error
}

func newFakeStore() *fakeStore {
    return &fakeStore{
        rooms: []model.Room{testRoom(7), testRoom(8)},
        reservations: []model.Reservation{
            testRes(1, 7, 5, 8, model.StateReserved),
            testRes(2, 8, 5, 8, model.StateCheckedIn),
        },
        kpis:   model.KPISet{ArrivalsToday: 2, DeparturesToday: 1},
        nextID: 100,
    }
}

func (f *fakeStore) FetchRooms(ctx context.Context) ([]model.Room, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failFetch != nil {
        return nil, f.failFetch
    }
    return append([]model.Room(nil), f.rooms...), nil
}

func (f *fakeStore) FetchReservations(ctx context.Context, from, to model.Date) ([]model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failFetch != nil {
        return nil, f.failFetch
    }
    out := make([]model.Reservation, 0, len(f.reservations))
    for _, r := range f.reservations {
        if r.Overlaps(from, to) {
            out = append(out, r)
        }
    }
    return out, nil
}

func (f *fakeStore) FetchKPIs(ctx context.Context) (model.KPISet, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failFetch != nil {
        return model.KPISet{}, f.failFetch
    }
    return f.kpis, nil
}

func (f *fakeStore) FetchTodayTasks(ctx context.Context) (model.TaskList, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.tasks, nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, roomID, guestID uint64, checkIn, checkOut model.Date, rateCents uint32, notes string) (model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failCreate != nil {
        return model.Reservation{}, f.failCreate
    }
    f.nextID++
    res := model.Reservation{
        ID: f.nextID, Code: "RES-FAKE", RoomID: roomID, GuestID: guestID,
        CheckIn: checkIn, CheckOut: checkOut, State: model.StateReserved,
        RateCents: rateCents, Notes: notes,
    }
    f.reservations = append(f.reservations, res)
    return res, nil
}

func (f *fakeStore) ChangeRoomCleaning(ctx context.Context, roomID uint64, status model.CleaningStatus) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.failCleaning
}

func (f *fakeStore) ChangeRoomService(ctx context.Context, roomID uint64, status model.ServiceStatus, note string) error {
    return nil
}

func (f *fakeStore) SetGuestPresent(ctx context.Context, reservationID uint64, present bool) error {
    return nil
}

func (f *fakeStore) CheckIn(ctx context.Context, reservationID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.failCheckIn
}

func (f *fakeStore) CheckOut(ctx context.Context, reservationID uint64, force bool) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.failCheckOut
}

func (f *fakeStore) CancelReservation(ctx context.Context, reservationID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.failCancel
}

func loadedEngine(t *testing.T, store *fakeStore) *Engine {
    t.Helper()
    e := NewEngine(store, testHorizon())
    require.NoError(t, e.Load(context.Background()))
    return e
}

func TestEngine_LoadPopulatesSnapshot(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    v := e.Snapshot()
    assert.Len(t, v.Rooms, 2)
    assert.Len(t, v.Reservations, 2)
    assert.Equal(t, 2, v.KPIs.ArrivalsToday)
    assert.False(t, v.IsLoading)
    assert.Empty(t, v.Error)
}

func TestEngine_LoadFailureIsBlocking(t *testing.T) {
    store := newFakeStore()
    store.failFetch = errors.New("db down")

    e := NewEngine(store, testHorizon())
    err := e.Load(context.Background())
    require.Error(t, err)

    v := e.Snapshot()
    assert.Empty(t, v.Rooms, "no partial data on a failed load")
    assert.False(t, v.IsLoading)
    assert.Contains(t, v.Error, "db down")
}

func TestEngine_CreateReservation(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    res, err := e.CreateReservation(context.Background(), 7, 55, day(10), day(12), 12900, "late arrival")
    require.NoError(t, err)
    assert.Equal(t, model.StateReserved, res.State)

    v := e.Snapshot()
    assert.Len(t, v.Reservations, 3, "created row merged into the cache immediately")
}

func TestEngine_CreateReservationRejectsConflict(t *testing.T) {
    store := newFakeStore()
    e := loadedEngine(t, store)

    before := len(store.reservations)
    _, err := e.CreateReservation(context.Background(), 7, 55, day(6), day(9), 12900, "")
    assert.ErrorIs(t, err, ErrRangeConflict)
    assert.Len(t, store.reservations, before, "conflicting range never reaches the store")
}

func TestEngine_CreateReservationRejectsOutOfService(t *testing.T) {
    store := newFakeStore()
    store.rooms[0].ServiceStatus = model.ServiceOutOfService
    e := loadedEngine(t, store)

    _, err := e.CreateReservation(context.Background(), 7, 55, day(20), day(22), 12900, "")
    assert.ErrorIs(t, err, ErrRoomOutOfService)
}

func TestEngine_CreateReservationRejectsZeroNights(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    _, err := e.CreateReservation(context.Background(), 7, 55, day(10), day(10), 12900, "")
    assert.ErrorIs(t, err, ErrMinimumOneNight)

    _, err = e.CreateReservation(context.Background(), 404, 55, day(10), day(12), 12900, "")
    assert.ErrorIs(t, err, ErrUnknownRoom)
}

// Drag a range, then let a competing reservation land through the feed
// before the dialog confirms.  The creation must fail with a conflict and
// the ghost must survive so the operator sees what happened.
func TestEngine_SelectionThenFeedConflict(t *testing.T) {
    store := newFakeStore()
    e := loadedEngine(t, store)

    e.CellDown(7, 10)
    e.CellEnter(7, 12)
    _, committed := e.CellUp(7)
    require.True(t, committed)

    checkIn, checkOut, ok := e.CommittedRange(7)
    require.True(t, ok)
    assert.True(t, checkIn.Equal(day(10)))
    assert.True(t, checkOut.Equal(day(12)), "last selected cell is the check-out day")

    // Competing booking lands in the store and its insert event arrives via
    // the feed; the insert rule answers with a refetch, run here
    // synchronously so the test stays deterministic.
    rival := testRes(99, 7, 11, 13, model.StateReserved)
    store.mu.Lock()
    store.reservations = append(store.reservations, rival)
    store.mu.Unlock()
    e.HandleChange(ChangeEvent{Entity: EntityReservations, Type: EventInsert, Reservation: &rival})
    require.NoError(t, e.Refetch(context.Background()))

    _, err := e.CreateFromSelection(context.Background(), 7, 55, 12900, "")
    assert.ErrorIs(t, err, ErrRangeConflict)

    _, stillCommitted := e.sel.Ghost(7)
    assert.True(t, stillCommitted, "failed creation keeps the ghost for the operator")
}

// Dragging day 5 through day 8 books exactly three nights: the first cell is
// the check-in day and the last cell is the check-out day.
func TestEngine_SelectionBooksThreeNightsForFourCellDrag(t *testing.T) {
    store := newFakeStore()
    store.reservations = nil
    e := loadedEngine(t, store)

    e.CellDown(7, 5)
    e.CellEnter(7, 6)
    e.CellEnter(7, 7)
    e.CellEnter(7, 8)
    _, committed := e.CellUp(7)
    require.True(t, committed)

    res, err := e.CreateFromSelection(context.Background(), 7, 55, 12900, "")
    require.NoError(t, err)
    assert.True(t, res.CheckIn.Equal(day(5)))
    assert.True(t, res.CheckOut.Equal(day(8)))
    assert.Equal(t, 3, res.Nights())
}

// A single-cell click commits a ghost, but confirming it selects zero nights
// and must be rejected before anything reaches the store.
func TestEngine_SelectionSingleCellYieldsZeroNights(t *testing.T) {
    store := newFakeStore()
    store.reservations = nil
    e := loadedEngine(t, store)

    e.CellDown(7, 9)
    _, committed := e.CellUp(7)
    require.True(t, committed)

    before := len(store.reservations)
    _, err := e.CreateFromSelection(context.Background(), 7, 55, 12900, "")
    assert.ErrorIs(t, err, ErrMinimumOneNight)
    assert.Len(t, store.reservations, before)
}

func TestEngine_SelectionIgnoresClaimedCells(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    // Cells 5..7 on room 7 are claimed by reservation 1.
    e.CellDown(7, 6)
    assert.False(t, e.RowSelection(7).Dragging)

    // Dragging from a free cell cannot extend into the claimed block.
    e.CellDown(7, 3)
    e.CellEnter(7, 4)
    e.CellEnter(7, 5)
    got, ok := e.CellUp(7)
    require.True(t, ok)
    assert.Equal(t, CellRange{From: 3, To: 4}, got)
}

func TestEngine_CheckInHappyPath(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    require.NoError(t, e.CheckIn(context.Background(), 1))

    v := e.Snapshot()
    var res *model.Reservation
    for i := range v.Reservations {
        if v.Reservations[i].ID == 1 {
            res = &v.Reservations[i]
        }
    }
    require.NotNil(t, res)
    assert.Equal(t, model.StateCheckedIn, res.State)
    assert.True(t, res.GuestPresent)
    for _, room := range v.Rooms {
        if room.ID == 7 {
            assert.Equal(t, model.OccupancyOccupied, room.OccupancyStatus)
        }
    }
}

func TestEngine_CheckInRollsBackOnStoreFailure(t *testing.T) {
    store := newFakeStore()
    store.failCheckIn = errors.New("lock wait timeout")
    e := loadedEngine(t, store)

    err := e.CheckIn(context.Background(), 1)
    require.Error(t, err)

    v := e.Snapshot()
    for i := range v.Reservations {
        if v.Reservations[i].ID == 1 {
            assert.Equal(t, model.StateReserved, v.Reservations[i].State, "optimistic edit rolled back")
            assert.False(t, v.Reservations[i].GuestPresent)
        }
    }
    for _, room := range v.Rooms {
        if room.ID == 7 {
            assert.Equal(t, model.OccupancyFree, room.OccupancyStatus, "room side effect rolled back too")
        }
    }

    notices := e.Notices()
    require.Len(t, notices, 1)
    assert.Contains(t, notices[0].Message, "check-in failed")
    assert.Empty(t, e.Notices(), "notices are delivered once")
}

func TestEngine_CheckInRequiresReservedState(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    assert.ErrorIs(t, e.CheckIn(context.Background(), 2), ErrBadTransition, "already checked in")
    assert.ErrorIs(t, e.CheckIn(context.Background(), 404), ErrUnknownReservation)
}

func TestEngine_CheckOut(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    require.NoError(t, e.CheckOut(context.Background(), 2, false))

    v := e.Snapshot()
    for i := range v.Reservations {
        if v.Reservations[i].ID == 2 {
            assert.Equal(t, model.StateCheckedOut, v.Reservations[i].State)
        }
    }
    for _, room := range v.Rooms {
        if room.ID == 8 {
            assert.Equal(t, model.OccupancyFree, room.OccupancyStatus)
            assert.Equal(t, model.CleaningDirty, room.CleaningStatus)
        }
    }

    assert.ErrorIs(t, e.CheckOut(context.Background(), 1, false), ErrBadTransition, "not checked in yet")
}

func TestEngine_CancelRequiresReservedState(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    require.NoError(t, e.CancelReservation(context.Background(), 1))
    assert.ErrorIs(t, e.CancelReservation(context.Background(), 2), ErrBadTransition, "in-house stays must check out")
}

func TestEngine_SetGuestPresent(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    require.NoError(t, e.SetGuestPresent(context.Background(), 2, false))
    assert.ErrorIs(t, e.SetGuestPresent(context.Background(), 1, true), ErrBadTransition, "only while checked in")
}

func TestEngine_ChangeRoomCleaningRollsBackOnFailure(t *testing.T) {
    store := newFakeStore()
    store.failCleaning = errors.New("deadlock")
    e := loadedEngine(t, store)

    err := e.ChangeRoomCleaning(context.Background(), 7, model.CleaningDirty)
    require.Error(t, err)

    v := e.Snapshot()
    for _, room := range v.Rooms {
        if room.ID == 7 {
            assert.Equal(t, model.CleaningClean, room.CleaningStatus)
        }
    }
    assert.Len(t, e.Notices(), 1)
}

func TestEngine_ChangeRoomCleaningRejectsUnknownStatus(t *testing.T) {
    e := loadedEngine(t, newFakeStore())
    assert.Error(t, e.ChangeRoomCleaning(context.Background(), 7, "SPOTLESS"))
}

// A stale feed event can overwrite a just-confirmed optimistic edit; the
// merge carries no recency information.  Known race, corrected by the next
// refresh; this test pins the behavior so a change to it is deliberate.
func TestEngine_StaleFeedEventOverwritesOptimisticEdit(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    require.NoError(t, e.ChangeRoomCleaning(context.Background(), 7, model.CleaningDirty))

    stale := roomChangeFor(testRoom(7)) // pre-mutation image: CLEAN
    e.HandleChange(ChangeEvent{Entity: EntityRooms, Type: EventUpdate, Room: stale})

    v := e.Snapshot()
    for _, room := range v.Rooms {
        if room.ID == 7 {
            assert.Equal(t, model.CleaningClean, room.CleaningStatus)
        }
    }
}

// Incremental counters drift when events race; the periodic authoritative
// refresh must converge them to the store's aggregates.
func TestEngine_KPIRefreshConverges(t *testing.T) {
    store := newFakeStore()
    e := loadedEngine(t, store)

    require.NoError(t, e.ChangeRoomCleaning(context.Background(), 7, model.CleaningDirty))
    assert.Equal(t, 1, e.Snapshot().KPIs.DirtyCount)

    store.mu.Lock()
    store.kpis = model.KPISet{ArrivalsToday: 5, DeparturesToday: 2, DirtyCount: 9, OccupiedCount: 4}
    store.mu.Unlock()

    require.NoError(t, e.RefreshKPIs(context.Background()))
    assert.Equal(t, 9, e.Snapshot().KPIs.DirtyCount, "authoritative value wins over the incremental counter")
}

// RefreshKPIs swaps only the counters; the rest of the dataset, including
// snapshots taken before the refresh, stays untouched.
func TestEngine_KPIRefreshLeavesDatasetIntact(t *testing.T) {
    store := newFakeStore()
    e := loadedEngine(t, store)
    before := e.Snapshot()

    store.mu.Lock()
    store.kpis = model.KPISet{ArrivalsToday: 7, DeparturesToday: 3, DirtyCount: 1, OccupiedCount: 2}
    store.mu.Unlock()
    require.NoError(t, e.RefreshKPIs(context.Background()))

    after := e.Snapshot()
    assert.Equal(t, model.KPISet{ArrivalsToday: 7, DeparturesToday: 3, DirtyCount: 1, OccupiedCount: 2}, after.KPIs)
    assert.Equal(t, before.Rooms, after.Rooms)
    assert.Equal(t, before.Reservations, after.Reservations)
    assert.Equal(t, model.KPISet{ArrivalsToday: 2, DeparturesToday: 1}, before.KPIs, "earlier snapshot keeps the counters it was taken with")
}

func TestEngine_RefetchReplacesDataset(t *testing.T) {
    store := newFakeStore()
    e := loadedEngine(t, store)

    store.mu.Lock()
    store.reservations = append(store.reservations, testRes(42, 8, 15, 18, model.StateReserved))
    store.mu.Unlock()

    require.NoError(t, e.Refetch(context.Background()))
    v := e.Snapshot()
    assert.Len(t, v.Reservations, 3)
    assert.False(t, v.IsRefreshing)
}

func TestEngine_SnapshotIsACopy(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    v := e.Snapshot()
    v.Rooms[0].CleaningStatus = model.CleaningDirty
    v.Reservations[0].State = model.StateCancelled

    fresh := e.Snapshot()
    assert.Equal(t, model.CleaningClean, fresh.Rooms[0].CleaningStatus, "mutating a view never reaches the cache")
    assert.Equal(t, model.StateReserved, fresh.Reservations[0].State)
}

func TestEngine_CheckAvailability(t *testing.T) {
    e := loadedEngine(t, newFakeStore())

    verdicts, err := e.CheckAvailability(day(6), day(7))
    require.NoError(t, err)
    require.Len(t, verdicts, 2)
    byRoom := map[uint64]Verdict{}
    for _, v := range verdicts {
        byRoom[v.RoomID] = v
    }
    assert.False(t, byRoom[7].Available)
    assert.Equal(t, ReasonBooked, byRoom[7].Reason)
    assert.False(t, byRoom[8].Available, "checked-in stay still claims the room")

    verdicts, err = e.CheckAvailability(day(20), day(22))
    require.NoError(t, err)
    for _, v := range verdicts {
        assert.True(t, v.Available)
    }
}

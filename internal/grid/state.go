package grid

import "github.com/iliyamo/hotel-front-desk/internal/model"

// State is the engine's in-memory mirror of the grid dataset scoped to the
// visible horizon.  Three producers write into it (operator-triggered
// optimistic mutations, background refresh responses and the change-feed
// reconciler) and every write goes through reduce() so the interleaving
// stays safe.  Readers only ever see copies.
type State struct {
    Rooms        []model.Room
    Reservations []model.Reservation
    KPIs         model.KPISet
    Tasks        model.TaskList
    Loading      bool
    Refreshing   bool
    LoadError    string
}

// followUp tells the engine what asynchronous work a reduction requires.
// The reducer itself never touches the network.
type followUp int

const (
    followNone followUp = iota
    // followDataset: refetch the dynamic dataset (reservations, KPIs,
    // pending tasks) in the background.
    followDataset
    // followKPIs: re-read only the KPI counters from the store.
    followKPIs
)

// event is the closed set of inputs to the reducer.
type event interface{ isGridEvent() }

type evLoading struct{ on bool }
type evRefreshing struct{ on bool }
type evLoadFailed struct{ msg string }
type evRoomsLoaded struct{ rooms []model.Room }
type evDatasetLoaded struct {
    reservations []model.Reservation
    kpis         model.KPISet
    tasks        model.TaskList
}
type evKPIsLoaded struct{ kpis model.KPISet }
type evPatch struct {
    ref   Ref
    patch Patch
}
type evRollback struct{ snap Snapshot }
type evReservationCreated struct{ res model.Reservation }
type evChange struct{ change ChangeEvent }

func (evLoading) isGridEvent()            {}
func (evRefreshing) isGridEvent()         {}
func (evLoadFailed) isGridEvent()         {}
func (evRoomsLoaded) isGridEvent()        {}
func (evDatasetLoaded) isGridEvent()      {}
func (evKPIsLoaded) isGridEvent()         {}
func (evPatch) isGridEvent()              {}
func (evRollback) isGridEvent()           {}
func (evReservationCreated) isGridEvent() {}
func (evChange) isGridEvent()             {}

// reduce applies one event to the cache and returns the next state plus any
// follow-up work.  It operates on a deep copy, so producers can never leak
// partial mutations to readers.
func reduce(s State, ev event) (State, followUp) {
    next := s.clone()
    switch e := ev.(type) {
    case evLoading:
        next.Loading = e.on
        if e.on {
            next.LoadError = ""
        }
    case evRefreshing:
        next.Refreshing = e.on
    case evLoadFailed:
        next.Loading = false
        next.Refreshing = false
        next.LoadError = e.msg
    case evRoomsLoaded:
        next.Rooms = e.rooms
        next.recountRoomKPIs()
    case evDatasetLoaded:
        next.Reservations = e.reservations
        next.KPIs = e.kpis
        next.Tasks = e.tasks
        next.Loading = false
        next.Refreshing = false
        next.LoadError = ""
    case evKPIsLoaded:
        next.KPIs = e.kpis
    case evPatch:
        applyPatch(&next, e.ref, e.patch)
    case evRollback:
        applyRollback(&next, e.snap)
        // KPIs are re-read from the store rather than reverse-computed;
        // the rollback may race with other concurrent changes.
        return next, followKPIs
    case evReservationCreated:
        next.upsertReservation(e.res)
    case evChange:
        return applyChange(next, e.change)
    }
    return next, followNone
}

func (s State) clone() State {
    out := s
    out.Rooms = append([]model.Room(nil), s.Rooms...)
    out.Reservations = append([]model.Reservation(nil), s.Reservations...)
    out.Tasks.Checkins = append([]model.Reservation(nil), s.Tasks.Checkins...)
    out.Tasks.Checkouts = append([]model.Reservation(nil), s.Tasks.Checkouts...)
    return out
}

func (s *State) room(id uint64) *model.Room {
    for i := range s.Rooms {
        if s.Rooms[i].ID == id {
            return &s.Rooms[i]
        }
    }
    return nil
}

func (s *State) reservation(id uint64) *model.Reservation {
    for i := range s.Reservations {
        if s.Reservations[i].ID == id {
            return &s.Reservations[i]
        }
    }
    return nil
}

func (s *State) upsertReservation(res model.Reservation) {
    if existing := s.reservation(res.ID); existing != nil {
        *existing = res
        return
    }
    s.Reservations = append(s.Reservations, res)
}

func (s *State) removeReservation(id uint64) {
    s.Reservations = dropReservation(s.Reservations, id)
    s.Tasks.Checkins = dropReservation(s.Tasks.Checkins, id)
    s.Tasks.Checkouts = dropReservation(s.Tasks.Checkouts, id)
}

func dropReservation(list []model.Reservation, id uint64) []model.Reservation {
    for i := range list {
        if list[i].ID == id {
            return append(list[:i], list[i+1:]...)
        }
    }
    return list
}

// setCleaning assigns the housekeeping status and keeps the dirty-room
// counter consistent.  The counter moves only when the value actually
// changes, so re-applying the same assignment never double-counts.
func (s *State) setCleaning(room *model.Room, status model.CleaningStatus) {
    prev := room.CleaningStatus
    if prev == status {
        return
    }
    room.CleaningStatus = status
    if prev == model.CleaningDirty {
        s.KPIs.DirtyCount--
    }
    if status == model.CleaningDirty {
        s.KPIs.DirtyCount++
    }
}

// setOccupancy assigns the occupancy status with the same guard for the
// occupied-room counter.
func (s *State) setOccupancy(room *model.Room, status model.OccupancyStatus) {
    prev := room.OccupancyStatus
    if prev == status {
        return
    }
    room.OccupancyStatus = status
    if prev == model.OccupancyOccupied {
        s.KPIs.OccupiedCount--
    }
    if status == model.OccupancyOccupied {
        s.KPIs.OccupiedCount++
    }
}

// recountRoomKPIs recomputes the room-derived counters from scratch.  Used
// when the whole room set is replaced.
func (s *State) recountRoomKPIs() {
    dirty, occupied := 0, 0
    for i := range s.Rooms {
        if s.Rooms[i].CleaningStatus == model.CleaningDirty {
            dirty++
        }
        if s.Rooms[i].OccupancyStatus == model.OccupancyOccupied {
            occupied++
        }
    }
    s.KPIs.DirtyCount = dirty
    s.KPIs.OccupiedCount = occupied
}

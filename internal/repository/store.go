package repository

import (
    "context"

    "github.com/iliyamo/hotel-front-desk/internal/feed"
    "github.com/iliyamo/hotel-front-desk/internal/grid"
    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// GridStore bundles the repositories into the backing-store interface the
// engine consumes, and publishes a change-feed notification after every
// committed write.  Publish failures are deliberately not propagated: the
// write already committed, and consumers that miss an event are corrected by
// the periodic authoritative refresh.
type GridStore struct {
    Rooms        *RoomRepo
    Reservations *ReservationRepo
    KPIs         *KPIRepo
}

// NewGridStore wires the three repositories into one store.
func NewGridStore(rooms *RoomRepo, reservations *ReservationRepo, kpis *KPIRepo) *GridStore {
    return &GridStore{Rooms: rooms, Reservations: reservations, KPIs: kpis}
}

var _ grid.Store = (*GridStore)(nil)

func roomChange(room model.Room) *grid.RoomChange {
    return &grid.RoomChange{
        ID:              room.ID,
        Number:          room.Number,
        Floor:           room.Floor,
        CleaningStatus:  room.CleaningStatus,
        OccupancyStatus: room.OccupancyStatus,
        ServiceStatus:   room.ServiceStatus,
    }
}

func (s *GridStore) publishRoom(ctx context.Context, room model.Room) {
    if msg, err := feed.EncodeRoom(grid.EventUpdate, nil, roomChange(room)); err == nil {
        _ = feed.Publish(ctx, msg)
    }
}

func (s *GridStore) publishReservation(ctx context.Context, eventType grid.EventType, res model.Reservation) {
    if msg, err := feed.EncodeReservation(eventType, nil, &res); err == nil {
        _ = feed.Publish(ctx, msg)
    }
}

// FetchRooms implements grid.Store.
func (s *GridStore) FetchRooms(ctx context.Context) ([]model.Room, error) {
    return s.Rooms.FetchAll(ctx)
}

// FetchReservations implements grid.Store.
func (s *GridStore) FetchReservations(ctx context.Context, from, to model.Date) ([]model.Reservation, error) {
    return s.Reservations.FetchRange(ctx, from, to)
}

// FetchKPIs implements grid.Store.
func (s *GridStore) FetchKPIs(ctx context.Context) (model.KPISet, error) {
    return s.KPIs.Fetch(ctx)
}

// FetchTodayTasks implements grid.Store.
func (s *GridStore) FetchTodayTasks(ctx context.Context) (model.TaskList, error) {
    return s.Reservations.FetchTodayTasks(ctx)
}

// CreateReservation implements grid.Store.
func (s *GridStore) CreateReservation(ctx context.Context, roomID, guestID uint64, checkIn, checkOut model.Date, rateCents uint32, notes string) (model.Reservation, error) {
    res, err := s.Reservations.Create(ctx, roomID, guestID, checkIn, checkOut, rateCents, notes)
    if err != nil {
        return model.Reservation{}, err
    }
    s.publishReservation(ctx, grid.EventInsert, res)
    return res, nil
}

// ChangeRoomCleaning implements grid.Store.
func (s *GridStore) ChangeRoomCleaning(ctx context.Context, roomID uint64, status model.CleaningStatus) error {
    room, err := s.Rooms.UpdateCleaning(ctx, roomID, status)
    if err != nil {
        return err
    }
    s.publishRoom(ctx, room)
    return nil
}

// ChangeRoomService implements grid.Store.
func (s *GridStore) ChangeRoomService(ctx context.Context, roomID uint64, status model.ServiceStatus, note string) error {
    room, err := s.Rooms.UpdateService(ctx, roomID, status, note)
    if err != nil {
        return err
    }
    s.publishRoom(ctx, room)
    return nil
}

// SetGuestPresent implements grid.Store.
func (s *GridStore) SetGuestPresent(ctx context.Context, reservationID uint64, present bool) error {
    res, err := s.Reservations.SetGuestPresent(ctx, reservationID, present)
    if err != nil {
        return err
    }
    s.publishReservation(ctx, grid.EventUpdate, res)
    return nil
}

// CheckIn implements grid.Store.
func (s *GridStore) CheckIn(ctx context.Context, reservationID uint64) error {
    res, room, err := s.Reservations.CheckIn(ctx, reservationID)
    if err != nil {
        return err
    }
    s.publishReservation(ctx, grid.EventUpdate, res)
    s.publishRoom(ctx, room)
    return nil
}

// CheckOut implements grid.Store.
func (s *GridStore) CheckOut(ctx context.Context, reservationID uint64, force bool) error {
    res, room, err := s.Reservations.CheckOut(ctx, reservationID, force)
    if err != nil {
        return err
    }
    // The reservation event alone is enough for consumers: the reconciler
    // forces the room FREE/DIRTY from it.  The room event is still
    // published for completeness and is idempotent on arrival.
    s.publishReservation(ctx, grid.EventUpdate, res)
    s.publishRoom(ctx, room)
    return nil
}

// CancelReservation implements grid.Store.
func (s *GridStore) CancelReservation(ctx context.Context, reservationID uint64) error {
    res, err := s.Reservations.Cancel(ctx, reservationID)
    if err != nil {
        return err
    }
    s.publishReservation(ctx, grid.EventUpdate, res)
    return nil
}

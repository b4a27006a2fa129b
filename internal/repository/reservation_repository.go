package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// ReservationRepo provides data access to the reservations table.  Lifecycle
// transitions re-validate the current state inside a transaction with the
// row locked, so a stale optimistic edit on the engine side is rejected here
// with ErrBadState rather than silently applied.  All timestamps are UTC and
// check-in/check-out are DATE columns.
type ReservationRepo struct {
    db    *sql.DB
    rooms *RoomRepo
}

// NewReservationRepo returns a new ReservationRepo.  The RoomRepo is needed
// because check-in and check-out mutate the owning room in the same
// transaction.
func NewReservationRepo(db *sql.DB, rooms *RoomRepo) *ReservationRepo {
    return &ReservationRepo{db: db, rooms: rooms}
}

const reservationColumns = `id, code, room_id, guest_id, check_in, check_out,
    state, guest_present, rate_cents, balance_cents, notes, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (model.Reservation, error) {
    var res model.Reservation
    var notes sql.NullString
    err := row.Scan(
        &res.ID, &res.Code, &res.RoomID, &res.GuestID, &res.CheckIn, &res.CheckOut,
        &res.State, &res.GuestPresent, &res.RateCents, &res.BalanceCents, &notes,
        &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return model.Reservation{}, err
    }
    res.Notes = notes.String
    return res, nil
}

// FetchRange returns the active reservations whose stay overlaps the
// half-open window [from, to).  Terminal reservations never enter the grid.
func (r *ReservationRepo) FetchRange(ctx context.Context, from, to model.Date) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + `
               FROM reservations
               WHERE state IN ('RESERVED','CHECKED_IN')
                 AND check_in < ? AND check_out > ?
               ORDER BY room_id, check_in`
    rows, err := r.db.QueryContext(ctx, q, to, from)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID returns a single reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrReservationNotFound
    }
    if err != nil {
        return model.Reservation{}, err
    }
    return res, nil
}

// newBookingCode derives a short human-readable code from a random UUID.
func newBookingCode() string {
    return "RES-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create inserts a new reservation in state RESERVED.  The owning room row
// is locked first so the overlap check and the insert are serialized against
// concurrent bookings of the same room; an overlap with an active
// reservation returns ErrConflict and a non-operational room ErrBadState.
func (r *ReservationRepo) Create(ctx context.Context, roomID, guestID uint64, checkIn, checkOut model.Date, rateCents uint32, notes string) (model.Reservation, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Reservation{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var serviceStatus model.ServiceStatus
    err = tx.QueryRowContext(ctx, `SELECT service_status FROM rooms WHERE id = ? FOR UPDATE`, roomID).Scan(&serviceStatus)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrRoomNotFound
    }
    if err != nil {
        return model.Reservation{}, err
    }
    if serviceStatus != model.ServiceOperational {
        return model.Reservation{}, ErrBadState
    }

    var overlapping int
    const overlapQ = `SELECT COUNT(*) FROM reservations
                      WHERE room_id = ? AND state IN ('RESERVED','CHECKED_IN')
                        AND check_in < ? AND check_out > ?`
    if err := tx.QueryRowContext(ctx, overlapQ, roomID, checkOut, checkIn).Scan(&overlapping); err != nil {
        return model.Reservation{}, err
    }
    if overlapping > 0 {
        return model.Reservation{}, ErrConflict
    }

    var notesArg interface{}
    if notes != "" {
        notesArg = notes
    }
    const ins = `INSERT INTO reservations
                 (code, room_id, guest_id, check_in, check_out, state, guest_present, rate_cents, balance_cents, notes)
                 VALUES (?, ?, ?, ?, ?, 'RESERVED', 0, ?, 0, ?)`
    result, err := tx.ExecContext(ctx, ins, newBookingCode(), roomID, guestID, checkIn, checkOut, rateCents, notesArg)
    if err != nil {
        return model.Reservation{}, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return model.Reservation{}, err
    }

    res, err := r.getTx(ctx, tx, uint64(id))
    if err != nil {
        return model.Reservation{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Reservation{}, err
    }
    committed = true
    return res, nil
}

func (r *ReservationRepo) getTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(tx.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

func (r *ReservationRepo) lockTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
    res, err := scanReservation(tx.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// CheckIn transitions RESERVED → CHECKED_IN and occupies the room in the
// same transaction.  Returns the updated reservation and room images for
// feed publishing.
func (r *ReservationRepo) CheckIn(ctx context.Context, id uint64) (model.Reservation, model.Room, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := r.lockTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    if res.State != model.StateReserved {
        return model.Reservation{}, model.Room{}, ErrBadState
    }

    if _, err := tx.ExecContext(ctx,
        `UPDATE reservations SET state = 'CHECKED_IN', guest_present = 1 WHERE id = ?`, id); err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    room, err := r.rooms.GetByIDTx(ctx, tx, res.RoomID)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    if err := r.rooms.UpdateStatusesTx(ctx, tx, res.RoomID, model.OccupancyOccupied, room.CleaningStatus); err != nil {
        return model.Reservation{}, model.Room{}, err
    }

    updated, err := r.getTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    room, err = r.rooms.GetByIDTx(ctx, tx, res.RoomID)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    committed = true
    return updated, room, nil
}

// CheckOut transitions CHECKED_IN → CHECKED_OUT, frees the room and flags it
// dirty, all in one transaction.  Unless force is set, an outstanding
// balance blocks the check-out with ErrBalanceOutstanding.
func (r *ReservationRepo) CheckOut(ctx context.Context, id uint64, force bool) (model.Reservation, model.Room, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := r.lockTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    if res.State != model.StateCheckedIn {
        return model.Reservation{}, model.Room{}, ErrBadState
    }
    if !force && res.BalanceCents > 0 {
        return model.Reservation{}, model.Room{}, ErrBalanceOutstanding
    }

    if _, err := tx.ExecContext(ctx,
        `UPDATE reservations SET state = 'CHECKED_OUT', guest_present = 0 WHERE id = ?`, id); err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    if err := r.rooms.UpdateStatusesTx(ctx, tx, res.RoomID, model.OccupancyFree, model.CleaningDirty); err != nil {
        return model.Reservation{}, model.Room{}, err
    }

    updated, err := r.getTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    room, err := r.rooms.GetByIDTx(ctx, tx, res.RoomID)
    if err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Reservation{}, model.Room{}, err
    }
    committed = true
    return updated, room, nil
}

// Cancel transitions RESERVED → CANCELLED.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) (model.Reservation, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Reservation{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := r.lockTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, err
    }
    if res.State != model.StateReserved {
        return model.Reservation{}, ErrBadState
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE reservations SET state = 'CANCELLED' WHERE id = ?`, id); err != nil {
        return model.Reservation{}, err
    }
    updated, err := r.getTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Reservation{}, err
    }
    committed = true
    return updated, nil
}

// SetGuestPresent flips the key-custody flag of a checked-in stay.
func (r *ReservationRepo) SetGuestPresent(ctx context.Context, id uint64, present bool) (model.Reservation, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Reservation{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := r.lockTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, err
    }
    if res.State != model.StateCheckedIn {
        return model.Reservation{}, ErrBadState
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE reservations SET guest_present = ? WHERE id = ?`, present, id); err != nil {
        return model.Reservation{}, err
    }
    updated, err := r.getTx(ctx, tx, id)
    if err != nil {
        return model.Reservation{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Reservation{}, err
    }
    committed = true
    return updated, nil
}

// FetchTodayTasks returns the reservations the desk still has to act on
// today: arrivals due (RESERVED with check-in today) and departures due
// (CHECKED_IN with check-out today or earlier, covering overstays).
func (r *ReservationRepo) FetchTodayTasks(ctx context.Context) (model.TaskList, error) {
    tasks := model.TaskList{
        Checkins:  make([]model.Reservation, 0),
        Checkouts: make([]model.Reservation, 0),
    }
    const inQ = `SELECT ` + reservationColumns + `
                 FROM reservations
                 WHERE state = 'RESERVED' AND check_in = UTC_DATE()
                 ORDER BY room_id`
    rows, err := r.db.QueryContext(ctx, inQ)
    if err != nil {
        return model.TaskList{}, err
    }
    defer rows.Close()
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return model.TaskList{}, err
        }
        tasks.Checkins = append(tasks.Checkins, res)
    }
    if err := rows.Err(); err != nil {
        return model.TaskList{}, err
    }

    const outQ = `SELECT ` + reservationColumns + `
                  FROM reservations
                  WHERE state = 'CHECKED_IN' AND check_out <= UTC_DATE()
                  ORDER BY room_id`
    orows, err := r.db.QueryContext(ctx, outQ)
    if err != nil {
        return model.TaskList{}, err
    }
    defer orows.Close()
    for orows.Next() {
        res, err := scanReservation(orows)
        if err != nil {
            return model.TaskList{}, err
        }
        tasks.Checkouts = append(tasks.Checkouts, res)
    }
    if err := orows.Err(); err != nil {
        return model.TaskList{}, err
    }
    return tasks, nil
}

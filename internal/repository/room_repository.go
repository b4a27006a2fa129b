package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// RoomRepo provides data access to the rooms table.  Rooms are created and
// retired by the admin CRUD elsewhere; this repository only reads them and
// mutates the grid-owned status fields.  All timestamps are stored in UTC.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, number, floor, room_type_id, category_id,
    cleaning_status, occupancy_status, service_status, service_note,
    created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (model.Room, error) {
    var room model.Room
    var note sql.NullString
    err := row.Scan(
        &room.ID, &room.Number, &room.Floor, &room.RoomTypeID, &room.CategoryID,
        &room.CleaningStatus, &room.OccupancyStatus, &room.ServiceStatus, &note,
        &room.CreatedAt, &room.UpdatedAt,
    )
    if err != nil {
        return model.Room{}, err
    }
    if note.Valid {
        n := note.String
        room.ServiceNote = &n
    }
    return room, nil
}

// FetchAll returns every room ordered by floor and number.  The room set is
// static per session; the engine re-reads it only on demand.
func (r *RoomRepo) FetchAll(ctx context.Context) ([]model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY floor, number`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Room, 0)
    for rows.Next() {
        room, err := scanRoom(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, room)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID returns a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
    room, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Room{}, ErrRoomNotFound
    }
    if err != nil {
        return model.Room{}, err
    }
    return room, nil
}

// UpdateCleaning sets the housekeeping status and returns the updated row.
func (r *RoomRepo) UpdateCleaning(ctx context.Context, id uint64, status model.CleaningStatus) (model.Room, error) {
    const q = `UPDATE rooms SET cleaning_status = ? WHERE id = ?`
    if _, err := r.db.ExecContext(ctx, q, status, id); err != nil {
        return model.Room{}, err
    }
    // Read the row back; a missing id surfaces here as ErrRoomNotFound.
    return r.GetByID(ctx, id)
}

// UpdateService sets the service status and note and returns the updated
// row.  An empty note clears the column.
func (r *RoomRepo) UpdateService(ctx context.Context, id uint64, status model.ServiceStatus, note string) (model.Room, error) {
    var noteArg interface{}
    if note != "" {
        noteArg = note
    }
    const q = `UPDATE rooms SET service_status = ?, service_note = ? WHERE id = ?`
    if _, err := r.db.ExecContext(ctx, q, status, noteArg, id); err != nil {
        return model.Room{}, err
    }
    return r.GetByID(ctx, id)
}

// UpdateStatusesTx sets occupancy and cleaning inside an existing
// transaction.  Used by the reservation lifecycle so the room side effect of
// check-in/check-out commits atomically with the reservation row.
func (r *RoomRepo) UpdateStatusesTx(ctx context.Context, tx *sql.Tx, id uint64, occupancy model.OccupancyStatus, cleaning model.CleaningStatus) error {
    const q = `UPDATE rooms SET occupancy_status = ?, cleaning_status = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, occupancy, cleaning, id)
    return err
}

// GetByIDTx reads a room inside an existing transaction.
func (r *RoomRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
    room, err := scanRoom(tx.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Room{}, ErrRoomNotFound
    }
    if err != nil {
        return model.Room{}, err
    }
    return room, nil
}

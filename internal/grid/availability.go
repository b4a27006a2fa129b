package grid

import (
    "errors"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// ErrMinimumOneNight rejects ranges where check-out is not strictly after
// check-in.  Zero-night stays are disallowed upstream of any store call.
var ErrMinimumOneNight = errors.New("range must span at least one night")

// UnavailableReason explains why a room cannot take a candidate range.  The
// distinction is surfaced to the UI so the operator sees "booked" and "out of
// service" as different messages.
type UnavailableReason string

const (
    ReasonBooked       UnavailableReason = "BOOKED"
    ReasonOutOfService UnavailableReason = "OUT_OF_SERVICE"
)

// Occupancy describes the reservation claiming a single grid cell.  IsStart
// is set only on the first day of the stay and Span carries the stay length
// in nights so the renderer draws one multi-day block there and nowhere else.
type Occupancy struct {
    Reservation *model.Reservation `json:"reservation"`
    IsStart     bool               `json:"is_start"`
    Span        int                `json:"span"`
}

// CellOccupant returns the active reservation claiming the given room/day
// cell, or nil when the cell is free.  A reservation claims a cell when the
// day falls inside its half-open [CheckIn, CheckOut) interval.  Terminal
// reservations never claim cells even if still present in the input.
func CellOccupant(roomID uint64, day model.Date, reservations []model.Reservation) *Occupancy {
    for i := range reservations {
        r := &reservations[i]
        if r.RoomID != roomID || !r.IsActive() {
            continue
        }
        if r.Covers(day) {
            return &Occupancy{
                Reservation: r,
                IsStart:     day.Equal(r.CheckIn),
                Span:        r.Nights(),
            }
        }
    }
    return nil
}

// HasConflict reports whether any active reservation on the room overlaps
// the candidate [checkIn, checkOut) range.
func HasConflict(roomID uint64, checkIn, checkOut model.Date, reservations []model.Reservation) bool {
    for i := range reservations {
        r := &reservations[i]
        if r.RoomID != roomID || !r.IsActive() {
            continue
        }
        if r.Overlaps(checkIn, checkOut) {
            return true
        }
    }
    return false
}

// ValidateRange enforces the minimum stay of one night.
func ValidateRange(checkIn, checkOut model.Date) error {
    if !checkOut.After(checkIn) {
        return ErrMinimumOneNight
    }
    return nil
}

// Verdict is the availability answer for one room and one candidate range.
type Verdict struct {
    RoomID    uint64            `json:"room_id"`
    Available bool              `json:"available"`
    Reason    UnavailableReason `json:"reason,omitempty"`
}

// CheckRoom evaluates a candidate range against a room.  A room whose
// service status is not OPERATIONAL is always unavailable regardless of
// reservation overlap, with its own reason code.
func CheckRoom(room *model.Room, checkIn, checkOut model.Date, reservations []model.Reservation) Verdict {
    v := Verdict{RoomID: room.ID}
    if !room.Operational() {
        v.Reason = ReasonOutOfService
        return v
    }
    if HasConflict(room.ID, checkIn, checkOut, reservations) {
        v.Reason = ReasonBooked
        return v
    }
    v.Available = true
    return v
}

package model

import "time"

// ReservationState is the lifecycle state of a reservation.
type ReservationState string

const (
    StateReserved   ReservationState = "RESERVED"
    StateCheckedIn  ReservationState = "CHECKED_IN"
    StateCheckedOut ReservationState = "CHECKED_OUT"
    StateCancelled  ReservationState = "CANCELLED"
)

// Reservation books a single room for a guest over a half-open interval of
// nights [CheckIn, CheckOut).  CheckOut must be strictly after CheckIn
// (minimum one night).  For any fixed room no two reservations that are both
// in an active state (RESERVED or CHECKED_IN) may overlap.
//
// Fields:
//  ID            – primary key identifier.
//  Code          – human-readable booking code handed to the guest.
//  RoomID        – room being booked.
//  GuestID       – titular guest reference.
//  CheckIn       – first night, inclusive.
//  CheckOut      – day of departure, exclusive.
//  State         – RESERVED, CHECKED_IN, CHECKED_OUT or CANCELLED.
//                  CHECKED_OUT and CANCELLED are terminal; terminal
//                  reservations leave the active grid but stay in the store.
//  GuestPresent  – key-custody flag; meaningful only while CHECKED_IN.
//  RateCents     – contracted nightly rate in cents.
//  BalanceCents  – outstanding balance in cents, never negative.
//  Notes         – free-text operator notes.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
    ID           uint64           `json:"id"`
    Code         string           `json:"code"`
    RoomID       uint64           `json:"room_id"`
    GuestID      uint64           `json:"guest_id"`
    CheckIn      Date             `json:"check_in"`
    CheckOut     Date             `json:"check_out"`
    State        ReservationState `json:"state"`
    GuestPresent bool             `json:"guest_present"`
    RateCents    uint32           `json:"rate_cents"`
    BalanceCents uint32           `json:"balance_cents"`
    Notes        string           `json:"notes,omitempty"`
    CreatedAt    time.Time        `json:"-"`
    UpdatedAt    time.Time        `json:"-"`
}

// Nights returns the length of the stay in nights.
func (r *Reservation) Nights() int { return r.CheckIn.DaysUntil(r.CheckOut) }

// IsActive reports whether the reservation claims its room for conflict
// detection purposes.
func (r *Reservation) IsActive() bool {
    return r.State == StateReserved || r.State == StateCheckedIn
}

// IsTerminal reports whether the reservation has left the active grid.
func (r *Reservation) IsTerminal() bool {
    return r.State == StateCheckedOut || r.State == StateCancelled
}

// Covers reports whether the given date falls inside [CheckIn, CheckOut).
func (r *Reservation) Covers(day Date) bool {
    return !day.Before(r.CheckIn) && day.Before(r.CheckOut)
}

// Overlaps applies the half-open interval test against another stay:
// a.CheckIn < b.CheckOut && b.CheckIn < a.CheckOut.
func (r *Reservation) Overlaps(checkIn, checkOut Date) bool {
    return r.CheckIn.Before(checkOut) && checkIn.Before(r.CheckOut)
}

// TerminalState reports whether s is CHECKED_OUT or CANCELLED.
func TerminalState(s ReservationState) bool {
    return s == StateCheckedOut || s == StateCancelled
}

// ValidReservationState reports whether s is a known lifecycle state.
func ValidReservationState(s ReservationState) bool {
    switch s {
    case StateReserved, StateCheckedIn, StateCheckedOut, StateCancelled:
        return true
    }
    return false
}

package model

// KPISet carries the front-desk dashboard counters derived from the grid
// dataset.  The engine maintains them incrementally on optimistic mutations
// and feed events and periodically re-reads them wholesale from the store to
// correct drift; they are never authoritative on their own.
type KPISet struct {
    ArrivalsToday   int `json:"arrivals_today"`
    DeparturesToday int `json:"departures_today"`
    DirtyCount      int `json:"dirty_count"`
    OccupiedCount   int `json:"occupied_count"`
}

// TaskList groups the reservations the desk still has to act on today:
// arrivals not yet checked in and in-house stays due to depart.
type TaskList struct {
    Checkins  []Reservation `json:"checkins"`
    Checkouts []Reservation `json:"checkouts"`
}

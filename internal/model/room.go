package model

import "time"

// CleaningStatus tracks housekeeping state of a room.
type CleaningStatus string

// OccupancyStatus tracks whether a guest currently occupies the room.
type OccupancyStatus string

// ServiceStatus tracks whether a room can be sold at all.
type ServiceStatus string

const (
    CleaningClean      CleaningStatus = "CLEAN"
    CleaningDirty      CleaningStatus = "DIRTY"
    CleaningInProgress CleaningStatus = "IN_PROGRESS"

    OccupancyFree     OccupancyStatus = "FREE"
    OccupancyOccupied OccupancyStatus = "OCCUPIED"

    ServiceOperational  ServiceStatus = "OPERATIONAL"
    ServiceMaintenance  ServiceStatus = "MAINTENANCE"
    ServiceOutOfService ServiceStatus = "OUT_OF_SERVICE"
)

// Room is a sellable hotel room as tracked by the booking grid.  Rooms are
// created and retired by the admin CRUD (out of band); the grid only ever
// mutates the three status fields plus number/floor via feed merges.
//
// Fields:
//  ID              – primary key identifier.
//  Number          – human-readable room number ("101", "P-2").
//  Floor           – floor the room sits on.
//  RoomTypeID      – reference to the room type (relational, never merged
//                    from feed payloads).
//  CategoryID      – reference to the pricing category (relational, never
//                    merged from feed payloads).
//  CleaningStatus  – CLEAN, DIRTY or IN_PROGRESS.
//  OccupancyStatus – FREE or OCCUPIED.  Invariant: OCCUPIED iff a
//                    CHECKED_IN reservation for this room covers "now".
//  ServiceStatus   – OPERATIONAL, MAINTENANCE or OUT_OF_SERVICE.  A room
//                    that is not OPERATIONAL is never offered for sale.
//  ServiceNote     – optional free-text note attached when taking the room
//                    out of service.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Room struct {
    ID              uint64          `json:"id"`
    Number          string          `json:"number"`
    Floor           uint32          `json:"floor"`
    RoomTypeID      uint64          `json:"room_type_id"`
    CategoryID      uint64          `json:"category_id"`
    CleaningStatus  CleaningStatus  `json:"cleaning_status"`
    OccupancyStatus OccupancyStatus `json:"occupancy_status"`
    ServiceStatus   ServiceStatus   `json:"service_status"`
    ServiceNote     *string         `json:"service_note,omitempty"`
    CreatedAt       time.Time       `json:"-"`
    UpdatedAt       time.Time       `json:"-"`
}

// Operational reports whether the room may be offered for sale.
func (r *Room) Operational() bool { return r.ServiceStatus == ServiceOperational }

// ValidCleaningStatus reports whether s is a known housekeeping state.
func ValidCleaningStatus(s CleaningStatus) bool {
    switch s {
    case CleaningClean, CleaningDirty, CleaningInProgress:
        return true
    }
    return false
}

// ValidServiceStatus reports whether s is a known service state.
func ValidServiceStatus(s ServiceStatus) bool {
    switch s {
    case ServiceOperational, ServiceMaintenance, ServiceOutOfService:
        return true
    }
    return false
}

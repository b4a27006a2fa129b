package grid

import (
    "log"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// EntityType names the table a change event originates from.
type EntityType string

// EventType is the row-level operation the backing store performed.
type EventType string

const (
    EntityRooms        EntityType = "rooms"
    EntityReservations EntityType = "reservations"

    EventInsert EventType = "INSERT"
    EventUpdate EventType = "UPDATE"
    EventDelete EventType = "DELETE"
)

// RoomChange is the room payload of a change event.  It deliberately carries
// only the mutable fields the reconciler is allowed to merge; relational
// references (room type, category) are never part of the payload and are
// therefore never clobbered.
type RoomChange struct {
    ID              uint64                `json:"id"`
    Number          string                `json:"number"`
    Floor           uint32                `json:"floor"`
    CleaningStatus  model.CleaningStatus  `json:"cleaning_status"`
    OccupancyStatus model.OccupancyStatus `json:"occupancy_status"`
    ServiceStatus   model.ServiceStatus   `json:"service_status"`
}

// ChangeEvent is one row-level notification from the change feed.  Delivery
// is at-least-once and arrival order is best effort; the processing rules
// below key off payload content, not event metadata, and are idempotent so
// duplicates and reordering are harmless.
type ChangeEvent struct {
    Entity      EntityType
    Type        EventType
    Room        *RoomChange
    Reservation *model.Reservation
}

// applyChange merges one feed event into the cache per the reconciliation
// rules:
//
//   - room INSERT/UPDATE: field-level merge of the known mutable fields into
//     the cached room by id.  Unknown rooms are ignored (rooms are static per
//     session and refreshed wholesale on demand).
//   - reservation update to a terminal state: evict the reservation from the
//     cache and pending-task lists and force the owning room to FREE/DIRTY
//     immediately.  Check-out is the canonical source of that side effect;
//     it must not depend on a separate room event arriving.
//   - reservation update to CHECKED_IN: patch state/guestPresent in place
//     when cached, otherwise request a full dynamic-dataset refetch (covers
//     creation plus immediate check-in in one step).  Either way the room is
//     forced to OCCUPIED.
//   - anything else (fresh inserts, deletes, unknown combinations): request
//     a dynamic-dataset refetch rather than guessing a fine-grained merge,
//     since insert ordering relative to other inserts is not guaranteed.
func applyChange(s State, ch ChangeEvent) (State, followUp) {
    switch ch.Entity {
    case EntityRooms:
        if (ch.Type == EventInsert || ch.Type == EventUpdate) && ch.Room != nil {
            s.mergeRoom(ch.Room)
            return s, followNone
        }
        // Room deletion is an admin operation outside the grid's scope;
        // the manual grid refresh re-reads the room list and drops the row.
        log.Printf("grid: ignoring room change event type=%s", ch.Type)
        return s, followNone

    case EntityReservations:
        res := ch.Reservation
        if res == nil || ch.Type == EventDelete {
            return s, followDataset
        }
        switch {
        case res.IsTerminal():
            s.removeReservation(res.ID)
            if room := s.room(res.RoomID); room != nil {
                s.setOccupancy(room, model.OccupancyFree)
                s.setCleaning(room, model.CleaningDirty)
            }
            return s, followNone
        case res.State == model.StateCheckedIn:
            follow := followNone
            if cached := s.reservation(res.ID); cached != nil {
                cached.State = res.State
                cached.GuestPresent = res.GuestPresent
            } else {
                follow = followDataset
            }
            if room := s.room(res.RoomID); room != nil {
                s.setOccupancy(room, model.OccupancyOccupied)
            }
            return s, follow
        default:
            return s, followDataset
        }
    }
    log.Printf("grid: unrecognized change event entity=%s type=%s", ch.Entity, ch.Type)
    return s, followNone
}

// mergeRoom assigns the mutable room fields from the payload.  Assignment is
// field-level so a second application of the same event is a no-op, and the
// KPI counters move through the guarded setters only when a value actually
// changes.
func (s *State) mergeRoom(p *RoomChange) {
    room := s.room(p.ID)
    if room == nil {
        log.Printf("grid: room change for unknown room id=%d ignored", p.ID)
        return
    }
    room.Number = p.Number
    room.Floor = p.Floor
    s.setCleaning(room, p.CleaningStatus)
    s.setOccupancy(room, p.OccupancyStatus)
    room.ServiceStatus = p.ServiceStatus
}

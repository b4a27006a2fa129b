package grid

import (
    "errors"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

var (
    // ErrUnknownRoom is returned when a mutation names a room that is not
    // in the cache.
    ErrUnknownRoom = errors.New("room not in cache")
    // ErrUnknownReservation is returned when a mutation names a
    // reservation that is not in the cache.
    ErrUnknownReservation = errors.New("reservation not in cache")
)

// EntityKind identifies which entity a Ref points at.
type EntityKind string

const (
    EntityRoom        EntityKind = "room"
    EntityReservation EntityKind = "reservation"
)

// Ref addresses one cached entity.
type Ref struct {
    Kind EntityKind
    ID   uint64
}

// RoomRef and ReservationRef are shorthand constructors.
func RoomRef(id uint64) Ref        { return Ref{Kind: EntityRoom, ID: id} }
func ReservationRef(id uint64) Ref { return Ref{Kind: EntityReservation, ID: id} }

// RoomPatch is a field-level speculative edit to a room.  Nil fields are
// untouched; rollback restores exactly the fields that were set and nothing
// else, so it never clobbers fields mutated by unrelated concurrent edits.
type RoomPatch struct {
    Cleaning    *model.CleaningStatus
    Occupancy   *model.OccupancyStatus
    Service     *model.ServiceStatus
    ServiceNote *string
}

// ReservationPatch is a field-level speculative edit to a reservation.
type ReservationPatch struct {
    State        *model.ReservationState
    GuestPresent *bool
}

// Patch carries the edit for whichever entity kind the Ref names.
type Patch struct {
    Room        *RoomPatch
    Reservation *ReservationPatch
}

// Snapshot is the pre-mutation image of exactly the fields a patch touched.
// Rolling a snapshot back is just applying it as a patch.
type Snapshot struct {
    Ref         Ref
    Room        *RoomPatch
    Reservation *ReservationPatch
}

// snapshotFor reads the current values of the fields the patch is about to
// overwrite.  Must be called on the same state the patch will be reduced
// into, before the reduction.
func snapshotFor(s *State, ref Ref, patch Patch) (Snapshot, error) {
    snap := Snapshot{Ref: ref}
    switch ref.Kind {
    case EntityRoom:
        room := s.room(ref.ID)
        if room == nil {
            return Snapshot{}, ErrUnknownRoom
        }
        if patch.Room == nil {
            return snap, nil
        }
        undo := &RoomPatch{}
        if patch.Room.Cleaning != nil {
            prev := room.CleaningStatus
            undo.Cleaning = &prev
        }
        if patch.Room.Occupancy != nil {
            prev := room.OccupancyStatus
            undo.Occupancy = &prev
        }
        if patch.Room.Service != nil {
            prev := room.ServiceStatus
            undo.Service = &prev
        }
        if patch.Room.ServiceNote != nil {
            prev := ""
            if room.ServiceNote != nil {
                prev = *room.ServiceNote
            }
            undo.ServiceNote = &prev
        }
        snap.Room = undo
    case EntityReservation:
        res := s.reservation(ref.ID)
        if res == nil {
            return Snapshot{}, ErrUnknownReservation
        }
        if patch.Reservation == nil {
            return snap, nil
        }
        undo := &ReservationPatch{}
        if patch.Reservation.State != nil {
            prev := res.State
            undo.State = &prev
        }
        if patch.Reservation.GuestPresent != nil {
            prev := res.GuestPresent
            undo.GuestPresent = &prev
        }
        snap.Reservation = undo
    }
    return snap, nil
}

// applyPatch writes a field-level patch into the cache.  Room status fields
// go through the guarded KPI setters; everything is plain assignment, so
// applying the same patch twice is a no-op the second time.
func applyPatch(s *State, ref Ref, patch Patch) {
    switch ref.Kind {
    case EntityRoom:
        room := s.room(ref.ID)
        if room == nil || patch.Room == nil {
            return
        }
        p := patch.Room
        if p.Cleaning != nil {
            s.setCleaning(room, *p.Cleaning)
        }
        if p.Occupancy != nil {
            s.setOccupancy(room, *p.Occupancy)
        }
        if p.Service != nil {
            room.ServiceStatus = *p.Service
        }
        if p.ServiceNote != nil {
            note := *p.ServiceNote
            if note == "" {
                room.ServiceNote = nil
            } else {
                room.ServiceNote = &note
            }
        }
    case EntityReservation:
        res := s.reservation(ref.ID)
        if res == nil || patch.Reservation == nil {
            return
        }
        p := patch.Reservation
        if p.State != nil {
            res.State = *p.State
        }
        if p.GuestPresent != nil {
            res.GuestPresent = *p.GuestPresent
        }
    }
}

// applyRollback restores the snapshot's fields.  The reducer schedules an
// authoritative KPI refresh afterwards instead of trusting the local
// counters, see reduce().
func applyRollback(s *State, snap Snapshot) {
    applyPatch(s, snap.Ref, Patch{Room: snap.Room, Reservation: snap.Reservation})
}

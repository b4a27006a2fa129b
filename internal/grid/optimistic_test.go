package grid

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

func testState() State {
    return State{
        Rooms: []model.Room{testRoom(7), testRoom(8)},
        Reservations: []model.Reservation{
            testRes(1, 7, 5, 8, model.StateReserved),
            testRes(2, 8, 5, 8, model.StateCheckedIn),
        },
    }
}

func TestSnapshotFor_UnknownEntities(t *testing.T) {
    s := testState()
    clean := model.CleaningClean

    _, err := snapshotFor(&s, RoomRef(404), Patch{Room: &RoomPatch{Cleaning: &clean}})
    assert.ErrorIs(t, err, ErrUnknownRoom)

    checkedIn := model.StateCheckedIn
    _, err = snapshotFor(&s, ReservationRef(404), Patch{Reservation: &ReservationPatch{State: &checkedIn}})
    assert.ErrorIs(t, err, ErrUnknownReservation)
}

func TestSnapshotFor_CapturesOnlyPatchedFields(t *testing.T) {
    s := testState()
    dirty := model.CleaningDirty

    snap, err := snapshotFor(&s, RoomRef(7), Patch{Room: &RoomPatch{Cleaning: &dirty}})
    require.NoError(t, err)
    require.NotNil(t, snap.Room)
    require.NotNil(t, snap.Room.Cleaning)
    assert.Equal(t, model.CleaningClean, *snap.Room.Cleaning)
    assert.Nil(t, snap.Room.Occupancy, "untouched fields are not snapshotted")
    assert.Nil(t, snap.Room.Service)
    assert.Nil(t, snap.Room.ServiceNote)
}

// Applying a patch and then rolling its snapshot back must restore the
// original state exactly, whatever combination of fields the patch touched.
func TestOptimistic_RoundTrip(t *testing.T) {
    dirty := model.CleaningDirty
    occupied := model.OccupancyOccupied
    oos := model.ServiceOutOfService
    note := "boiler leak"
    checkedOut := model.StateCheckedOut
    present := true

    cases := []struct {
        name  string
        ref   Ref
        patch Patch
    }{
        {"cleaning only", RoomRef(7), Patch{Room: &RoomPatch{Cleaning: &dirty}}},
        {"occupancy only", RoomRef(7), Patch{Room: &RoomPatch{Occupancy: &occupied}}},
        {"service with note", RoomRef(7), Patch{Room: &RoomPatch{Service: &oos, ServiceNote: &note}}},
        {"all room fields", RoomRef(7), Patch{Room: &RoomPatch{Cleaning: &dirty, Occupancy: &occupied, Service: &oos, ServiceNote: &note}}},
        {"reservation state", ReservationRef(1), Patch{Reservation: &ReservationPatch{State: &checkedOut}}},
        {"guest present", ReservationRef(2), Patch{Reservation: &ReservationPatch{GuestPresent: &present}}},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            original := testState()
            s := original.clone()

            snap, err := snapshotFor(&s, tc.ref, tc.patch)
            require.NoError(t, err)
            applyPatch(&s, tc.ref, tc.patch)
            applyRollback(&s, snap)

            assert.Equal(t, original.Rooms, s.Rooms)
            assert.Equal(t, original.Reservations, s.Reservations)
        })
    }
}

// Rollback restores only the patched fields.  A field changed by an
// unrelated concurrent edit between apply and rollback must keep the
// concurrent value.
func TestOptimistic_RollbackDoesNotClobberOtherFields(t *testing.T) {
    s := testState()
    dirty := model.CleaningDirty

    snap, err := snapshotFor(&s, RoomRef(7), Patch{Room: &RoomPatch{Cleaning: &dirty}})
    require.NoError(t, err)
    applyPatch(&s, RoomRef(7), Patch{Room: &RoomPatch{Cleaning: &dirty}})

    // A feed event flips occupancy while the store round-trip is in flight.
    s.setOccupancy(s.room(7), model.OccupancyOccupied)

    applyRollback(&s, snap)
    room := s.room(7)
    assert.Equal(t, model.CleaningClean, room.CleaningStatus, "patched field restored")
    assert.Equal(t, model.OccupancyOccupied, room.OccupancyStatus, "concurrent edit preserved")
}

func TestApplyPatch_ServiceNoteSemantics(t *testing.T) {
    s := testState()
    oos := model.ServiceOutOfService
    note := "plumber Tuesday"

    applyPatch(&s, RoomRef(7), Patch{Room: &RoomPatch{Service: &oos, ServiceNote: &note}})
    room := s.room(7)
    require.NotNil(t, room.ServiceNote)
    assert.Equal(t, "plumber Tuesday", *room.ServiceNote)

    empty := ""
    operational := model.ServiceOperational
    applyPatch(&s, RoomRef(7), Patch{Room: &RoomPatch{Service: &operational, ServiceNote: &empty}})
    assert.Nil(t, s.room(7).ServiceNote, "empty note clears the field")
}

func TestGuardedCounters_MoveOnlyOnActualChange(t *testing.T) {
    s := testState()
    assert.Equal(t, 0, s.KPIs.DirtyCount)

    room := s.room(7)
    s.setCleaning(room, model.CleaningDirty)
    assert.Equal(t, 1, s.KPIs.DirtyCount)

    s.setCleaning(room, model.CleaningDirty)
    assert.Equal(t, 1, s.KPIs.DirtyCount, "re-applying the same value never double-counts")

    s.setCleaning(room, model.CleaningClean)
    assert.Equal(t, 0, s.KPIs.DirtyCount)

    s.setOccupancy(room, model.OccupancyOccupied)
    s.setOccupancy(room, model.OccupancyOccupied)
    assert.Equal(t, 1, s.KPIs.OccupiedCount)
    s.setOccupancy(room, model.OccupancyFree)
    assert.Equal(t, 0, s.KPIs.OccupiedCount)
}

package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func stay(checkIn, checkOut Date) Reservation {
    return Reservation{ID: 1, RoomID: 7, CheckIn: checkIn, CheckOut: checkOut, State: StateReserved}
}

func TestReservation_Overlaps(t *testing.T) {
    d := func(day int) Date { return NewDate(2026, time.June, day) }
    r := stay(d(10), d(13)) // nights 10, 11, 12

    cases := []struct {
        name     string
        from, to Date
        want     bool
    }{
        {"identical range", d(10), d(13), true},
        {"contained range", d(11), d(12), true},
        {"containing range", d(8), d(15), true},
        {"overlap at start", d(8), d(11), true},
        {"overlap at end", d(12), d(15), true},
        {"back to back before", d(7), d(10), false},
        {"back to back after", d(13), d(16), false},
        {"disjoint before", d(1), d(5), false},
        {"disjoint after", d(20), d(25), false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, r.Overlaps(tc.from, tc.to))
        })
    }
}

// Overlap is symmetric: r.Overlaps(s) must agree with s.Overlaps(r) for
// every pair of ranges.
func TestReservation_OverlapSymmetry(t *testing.T) {
    base := NewDate(2026, time.June, 1)
    for aFrom := 0; aFrom < 8; aFrom++ {
        for aLen := 1; aLen <= 4; aLen++ {
            for bFrom := 0; bFrom < 8; bFrom++ {
                for bLen := 1; bLen <= 4; bLen++ {
                    a := stay(base.AddDays(aFrom), base.AddDays(aFrom+aLen))
                    b := stay(base.AddDays(bFrom), base.AddDays(bFrom+bLen))
                    assert.Equal(t,
                        a.Overlaps(b.CheckIn, b.CheckOut),
                        b.Overlaps(a.CheckIn, a.CheckOut),
                        "a=[%s,%s) b=[%s,%s)", a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut)
                }
            }
        }
    }
}

func TestReservation_Covers(t *testing.T) {
    d := func(day int) Date { return NewDate(2026, time.June, day) }
    r := stay(d(10), d(13))

    assert.False(t, r.Covers(d(9)))
    assert.True(t, r.Covers(d(10)), "check-in day is covered")
    assert.True(t, r.Covers(d(12)), "last night is covered")
    assert.False(t, r.Covers(d(13)), "check-out day is not covered")
}

func TestReservation_Lifecycle(t *testing.T) {
    r := stay(NewDate(2026, time.June, 10), NewDate(2026, time.June, 13))
    assert.Equal(t, 3, r.Nights())
    assert.True(t, r.IsActive())
    assert.False(t, r.IsTerminal())

    r.State = StateCheckedIn
    assert.True(t, r.IsActive())

    r.State = StateCheckedOut
    assert.False(t, r.IsActive())
    assert.True(t, r.IsTerminal())

    r.State = StateCancelled
    assert.False(t, r.IsActive())
    assert.True(t, r.IsTerminal())

    assert.True(t, TerminalState(StateCancelled))
    assert.False(t, TerminalState(StateReserved))
    assert.True(t, ValidReservationState(StateCheckedIn))
    assert.False(t, ValidReservationState("NO_SHOW"))
}

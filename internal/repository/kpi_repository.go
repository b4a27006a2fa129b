package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/hotel-front-desk/internal/model"
)

// KPIRepo computes the dashboard counters straight from the tables.  These
// aggregates are the authoritative values the engine's incremental counters
// are periodically corrected against.
type KPIRepo struct {
    db *sql.DB
}

// NewKPIRepo returns a new KPIRepo bound to the given database.
func NewKPIRepo(db *sql.DB) *KPIRepo { return &KPIRepo{db: db} }

// Fetch returns the current KPI set.  Arrivals counts active reservations
// due to start today, departures counts in-house stays due to end today.
func (r *KPIRepo) Fetch(ctx context.Context) (model.KPISet, error) {
    var kpis model.KPISet
    const q = `SELECT
        (SELECT COUNT(*) FROM reservations
          WHERE state IN ('RESERVED','CHECKED_IN') AND check_in = UTC_DATE()),
        (SELECT COUNT(*) FROM reservations
          WHERE state = 'CHECKED_IN' AND check_out = UTC_DATE()),
        (SELECT COUNT(*) FROM rooms WHERE cleaning_status = 'DIRTY'),
        (SELECT COUNT(*) FROM rooms WHERE occupancy_status = 'OCCUPIED')`
    err := r.db.QueryRowContext(ctx, q).Scan(
        &kpis.ArrivalsToday, &kpis.DeparturesToday, &kpis.DirtyCount, &kpis.OccupiedCount,
    )
    if err != nil {
        return model.KPISet{}, err
    }
    return kpis, nil
}

package main // Entry point package

import (
    "context" // Context for the background workers
    "log"     // Logging library

    "github.com/joho/godotenv"    // Loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/hotel-front-desk/internal/config"     // Internal config loader
    "github.com/iliyamo/hotel-front-desk/internal/database"   // MySQL connection helper
    "github.com/iliyamo/hotel-front-desk/internal/feed"       // Change-feed consumer
    "github.com/iliyamo/hotel-front-desk/internal/grid"       // Booking-grid engine
    "github.com/iliyamo/hotel-front-desk/internal/handler"    // HTTP handlers
    "github.com/iliyamo/hotel-front-desk/internal/model"      // Domain types
    "github.com/iliyamo/hotel-front-desk/internal/repository" // Data access layer
    "github.com/iliyamo/hotel-front-desk/internal/router"     // Route registration
)

func main() {
    // Load .env when present; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: a nil client disables response caching and rate
    // limiting but never blocks startup.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; caching and rate limiting disabled")
    }

    // Repositories and the grid store they compose into.
    rooms := repository.NewRoomRepo(db)
    reservations := repository.NewReservationRepo(db, rooms)
    kpis := repository.NewKPIRepo(db)
    store := repository.NewGridStore(rooms, reservations, kpis)

    // The engine owns the in-memory grid.  The initial load is blocking by
    // design: a failure leaves the cache in its error state and the
    // snapshot endpoint reports it, but the server still starts so the
    // operator can retry via POST /v1/grid/refresh.
    horizon := grid.NewHorizon(model.Today(), cfg.GridPastDays, cfg.GridForwardDays)
    engine := grid.NewEngine(store, horizon)
    if err := engine.Load(context.Background()); err != nil {
        log.Printf("initial load failed: %v", err)
    }

    // Background workers: the change-feed consumer keeps the cache in sync
    // with writes from other instances, the ticker corrects KPI drift.
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go feed.StartConsumer(ctx, engine)
    go engine.RunKPIRefresh(ctx, cfg.KPIRefreshEvery)

    e := echo.New() // Create Echo instance
    router.RegisterRoutes(e)
    router.RegisterGrid(e,
        handler.NewGridHandler(engine),
        handler.NewSelectionHandler(engine),
        handler.NewMutationHandler(engine),
        cfg.JWTSecret, rdb)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err) // Log and exit if server fails
    }
}

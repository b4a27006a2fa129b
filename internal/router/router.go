package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-front-desk/internal/config"
    "github.com/iliyamo/hotel-front-desk/internal/handler"
    "github.com/iliyamo/hotel-front-desk/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterGrid registers the booking-grid API under /v1.  Every route
// requires a valid operator JWT; the mutation endpoints additionally pass
// through the Redis token bucket, and the availability lookup sits behind
// the short-TTL response cache.  rdb may be nil, in which case caching and
// rate limiting silently disable themselves.
func RegisterGrid(e *echo.Echo, gh *handler.GridHandler, sh *handler.SelectionHandler, mh *handler.MutationHandler, jwtSecret string, rdb *redis.Client) {
    v1 := e.Group("/v1")
    v1.Use(middleware.JWTAuth(jwtSecret))
    v1.Use(middleware.RequireRole("frontdesk", "manager", "housekeeping"))

    limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    // Read side: snapshot, availability verdicts, manual refresh, notices.
    v1.GET("/grid", gh.GetGrid)
    v1.GET("/grid/availability", gh.GetAvailability, cached)
    v1.POST("/grid/refresh", gh.Refresh)
    v1.GET("/grid/notices", gh.Notices)

    // Drag-select gestures.  These mutate only in-memory interaction state,
    // so they skip the rate limiter.
    v1.GET("/grid/rooms/:id/selection", sh.Get)
    v1.POST("/grid/rooms/:id/selection/down", sh.Down)
    v1.POST("/grid/rooms/:id/selection/enter", sh.Enter)
    v1.POST("/grid/rooms/:id/selection/up", sh.Up)
    v1.DELETE("/grid/rooms/:id/selection", sh.Clear)

    // Room status mutations.  Housekeeping may flip cleaning; service
    // status is a management decision.
    v1.PATCH("/grid/rooms/:id/cleaning", mh.SetCleaning, limited)
    v1.PATCH("/grid/rooms/:id/service", mh.SetService, limited, middleware.RequireRole("manager"))

    // Reservation lifecycle.
    v1.POST("/reservations", mh.CreateReservation, limited)
    v1.POST("/reservations/:id/check-in", mh.CheckIn, limited)
    v1.POST("/reservations/:id/check-out", mh.CheckOut, limited)
    v1.POST("/reservations/:id/cancel", mh.Cancel, limited)
    v1.PATCH("/reservations/:id/guest-present", mh.GuestPresent, limited)
}

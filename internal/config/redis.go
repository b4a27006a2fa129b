package config

// Redis backs two optional concerns of the grid API: the token bucket on the
// mutation endpoints and the short-TTL response cache on the availability
// lookup.  Both degrade gracefully, so a missing or unreachable Redis must
// never keep the desk from booking; the constructor reports failure by
// returning nil and the middleware disables itself on a nil client.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the environment and verifies it
// with a short ping.  Recognized variables:
//   REDIS_ADDR     – host:port (overridden by REDIS_HOST/REDIS_PORT when both set)
//   REDIS_HOST     – hostname of the Redis server
//   REDIS_PORT     – port of the Redis server
//   REDIS_PASSWORD – optional password
//   REDIS_DB       – database number, default 0
//   REDIS_TLS      – enable TLS when "true" or "1"
// Returns nil when the server cannot be reached; callers treat nil as
// "run without rate limiting and caching".
func NewRedisClient() *redis.Client {
    addr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }

    dbNum := 0
    if raw := os.Getenv("REDIS_DB"); raw != "" {
        if n, err := strconv.Atoi(raw); err == nil {
            dbNum = n
        }
    }

    var tlsConf *tls.Config
    if raw := os.Getenv("REDIS_TLS"); strings.EqualFold(raw, "true") || raw == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }

    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}

package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time parses refresh intervals
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required variables abort startup when missing;
// grid sizing and refresh cadence fall back to sensible defaults so a bare
// deployment only has to provide the database and JWT settings.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    DBUser          string        // database username
    DBPass          string        // database password (optional)
    DBHost          string        // database host address
    DBPort          string        // database port number
    DBName          string        // database name
    JWTSecret       string        // secret used to verify operator JWTs
    GridPastDays    int           // days of past context rendered on the grid
    GridForwardDays int           // forward days rendered on the grid
    KPIRefreshEvery time.Duration // cadence of the authoritative KPI refresh
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),      // environment (dev/test/prod)
        Port:            must("APP_PORT"),     // port to bind the HTTP server
        DBUser:          must("DB_USER"),      // database user
        DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:          must("DB_HOST"),      // database host
        DBPort:          must("DB_PORT"),      // database port
        DBName:          must("DB_NAME"),      // database name
        JWTSecret:       must("JWT_SECRET"),   // secret for verifying operator tokens
        GridPastDays:    intDefault("GRID_PAST_DAYS", 3),
        GridForwardDays: intDefault("GRID_FORWARD_DAYS", 27),
        KPIRefreshEvery: durDefault("KPI_REFRESH_EVERY", 5*time.Minute),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// intDefault reads an optional integer variable, falling back to def when
// unset or malformed.
func intDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// durDefault reads an optional duration variable ("30s", "5m").
func durDefault(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        log.Fatalf("invalid duration for %s: %q", key, s)
    }
    return d
}

package middleware

// identity.go holds helpers shared across middleware files.  Rate-limit keys
// need a stable per-operator identifier; this pulls the value JWTAuth stored
// in the context, or "anon" when the request is unauthenticated.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// operatorID extracts the operator identifier placed in the context by
// JWTAuth.  Claims decode as strings or float64 depending on how the issuer
// encoded the subject, so both shapes are handled.
func operatorID(c echo.Context) string {
    switch v := c.Get("operator_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        if v > 0 {
            return strconv.FormatUint(uint64(v), 10)
        }
    }
    return "anon"
}

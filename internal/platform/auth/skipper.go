package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication. These are
// infrastructure endpoints (health check) and the WebSocket upgrade, which
// browser clients cannot attach an Authorization header to.
var publicPaths = map[string]bool{
	"/health": true,
	"/ws":     true,
}

// AuthSkipper returns true for requests whose path should skip
// authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

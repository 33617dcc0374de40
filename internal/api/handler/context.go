package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/fleetops/transport-fleet/internal/core/ports"
)

// clientInfo extracts the request metadata that ends up in the security audit
// trail. RealIP honours X-Forwarded-For/X-Real-IP when set by the proxy.
func clientInfo(c echo.Context) ports.ClientInfo {
	return ports.ClientInfo{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

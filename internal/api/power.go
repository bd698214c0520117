package api

import (
	"net/http"

	"github.com/clusterhack/argononed/internal/daemon"
	"github.com/labstack/echo/v4"
)

func registerPowerEndpoints(rest *echo.Echo, d *daemon.Daemon) {
	group := rest.Group("/power")

	group.GET("/control/", getPowerControl(d))
	group.POST("/control/", setPowerControl(d))
}

func getPowerControl(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, ControlDto{Enabled: d.PowerControlEnabled()}, indentationChar)
	}
}

func setPowerControl(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		var dto ControlDto
		if err := c.Bind(&dto); err != nil {
			return returnBadRequest(c, err)
		}
		d.SetPowerControlEnabled(dto.Enabled)
		return c.NoContent(http.StatusOK)
	}
}

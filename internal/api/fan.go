package api

import (
	"errors"
	"net/http"

	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/daemon"
	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

type (
	FanSpeedDto struct {
		// Speed is nil until the first successful fan speed write
		Speed *int `json:"speed"`
	}

	SetFanSpeedDto struct {
		Speed int `json:"speed"`
	}

	ControlDto struct {
		Enabled bool `json:"enabled"`
	}
)

func registerFanEndpoints(rest *echo.Echo, d *daemon.Daemon) {
	group := rest.Group("/fan")

	group.GET("/speed/", getFanSpeed(d))
	group.POST("/speed/", setFanSpeed(d))

	group.GET("/lut/", getSpeedLUT(d))
	group.PUT("/lut/", setSpeedLUT(d))
	group.DELETE("/lut/", resetSpeedLUT(d))

	group.GET("/control/", getFanControl(d))
	group.POST("/control/", setFanControl(d))
}

func getFanSpeed(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		dto := FanSpeedDto{}
		if speed, ok := d.FanSpeed(); ok {
			dto.Speed = &speed
		}
		return c.JSONPretty(http.StatusOK, dto, indentationChar)
	}
}

func setFanSpeed(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		var dto SetFanSpeedDto
		if err := c.Bind(&dto); err != nil {
			return returnBadRequest(c, err)
		}
		if dto.Speed < 0 || dto.Speed > 100 {
			return returnBadRequest(c, errors.New("speed must be within [0, 100]"))
		}
		d.SetFanSpeed(dto.Speed)
		return c.NoContent(http.StatusOK)
	}
}

func getSpeedLUT(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		data := reprint.This(d.SpeedLUT())
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	}
}

func setSpeedLUT(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		var items []curves.LUTEntry
		if err := c.Bind(&items); err != nil {
			return returnBadRequest(c, err)
		}
		if err := d.SetSpeedLUT(items); err != nil {
			if errors.Is(err, curves.ErrInvalidLUT) {
				return returnBadRequest(c, err)
			}
			return returnError(c, err)
		}
		return c.NoContent(http.StatusOK)
	}
}

func resetSpeedLUT(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := d.ResetSpeedLUT(); err != nil {
			return returnError(c, err)
		}
		return c.NoContent(http.StatusOK)
	}
}

func getFanControl(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, ControlDto{Enabled: d.FanControlEnabled()}, indentationChar)
	}
}

func setFanControl(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		var dto ControlDto
		if err := c.Bind(&dto); err != nil {
			return returnBadRequest(c, err)
		}
		d.SetFanControlEnabled(dto.Enabled)
		return c.NoContent(http.StatusOK)
	}
}

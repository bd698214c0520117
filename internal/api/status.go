package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/clusterhack/argononed/internal/daemon"
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

type (
	TemperatureDto struct {
		// Temperature is nil until the first successful sensor read
		Temperature *float64 `json:"temperature"`
		MovingAvg   float64  `json:"movingAvg"`
	}
)

var streamCounter uint64

func registerStatusEndpoints(rest *echo.Echo, d *daemon.Daemon) {
	rest.GET("/status/", getStatus(d))
	rest.GET("/temperature/", getTemperature(d))
	rest.POST("/shutdown/", postShutdown(d))
	rest.GET("/notifications/", streamNotifications(d))
}

func getStatus(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		data := reprint.This(d.Status())
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	}
}

func getTemperature(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		dto := TemperatureDto{
			MovingAvg: d.TemperatureMovingAvg(),
		}
		if temperature, ok := d.Temperature(); ok {
			dto.Temperature = &temperature
		}
		return c.JSONPretty(http.StatusOK, dto, indentationChar)
	}
}

// postShutdown stops the daemon gracefully. It does not power off the host.
func postShutdown(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		d.Shutdown()
		return c.NoContent(http.StatusOK)
	}
}

// streamNotifications serves the notification feed as server-sent events
// until the client disconnects.
func streamNotifications(d *daemon.Daemon) echo.HandlerFunc {
	return func(c echo.Context) error {
		sink := notify.NewChanSink(64)
		id := fmt.Sprintf("api-stream-%d", atomic.AddUint64(&streamCounter, 1))
		d.Hub().Attach(id, sink)
		defer d.Hub().Detach(id)

		response := c.Response()
		response.Header().Set(echo.HeaderContentType, "text/event-stream")
		response.Header().Set(echo.HeaderCacheControl, "no-cache")
		response.Header().Set(echo.HeaderConnection, "keep-alive")
		response.WriteHeader(http.StatusOK)
		response.Flush()

		ctx := c.Request().Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case message := <-sink.C:
				data, err := json.Marshal(message)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(response, "data: %s\n\n", data); err != nil {
					return nil
				}
				response.Flush()
			}
		}
	}
}

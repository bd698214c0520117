// Package client is a thin HTTP client for the daemon's REST api, used by
// the operator subcommands of the CLI.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clusterhack/argononed/internal/api"
	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/daemon"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Alive() error {
	return c.request(http.MethodGet, "/alive/", nil, nil)
}

func (c *Client) Status() (daemon.Status, error) {
	var status daemon.Status
	err := c.request(http.MethodGet, "/status/", nil, &status)
	return status, err
}

func (c *Client) Temperature() (api.TemperatureDto, error) {
	var dto api.TemperatureDto
	err := c.request(http.MethodGet, "/temperature/", nil, &dto)
	return dto, err
}

// FanSpeed returns nil before the daemon has successfully written a speed.
func (c *Client) FanSpeed() (*int, error) {
	var dto api.FanSpeedDto
	err := c.request(http.MethodGet, "/fan/speed/", nil, &dto)
	return dto.Speed, err
}

func (c *Client) SetFanSpeed(speed int) error {
	return c.request(http.MethodPost, "/fan/speed/", api.SetFanSpeedDto{Speed: speed}, nil)
}

func (c *Client) FanControlEnabled() (bool, error) {
	var dto api.ControlDto
	err := c.request(http.MethodGet, "/fan/control/", nil, &dto)
	return dto.Enabled, err
}

func (c *Client) SetFanControlEnabled(enabled bool) error {
	return c.request(http.MethodPost, "/fan/control/", api.ControlDto{Enabled: enabled}, nil)
}

func (c *Client) PowerControlEnabled() (bool, error) {
	var dto api.ControlDto
	err := c.request(http.MethodGet, "/power/control/", nil, &dto)
	return dto.Enabled, err
}

func (c *Client) SetPowerControlEnabled(enabled bool) error {
	return c.request(http.MethodPost, "/power/control/", api.ControlDto{Enabled: enabled}, nil)
}

func (c *Client) SpeedLUT() ([]curves.LUTEntry, error) {
	var items []curves.LUTEntry
	err := c.request(http.MethodGet, "/fan/lut/", nil, &items)
	return items, err
}

func (c *Client) SetSpeedLUT(items []curves.LUTEntry) error {
	return c.request(http.MethodPut, "/fan/lut/", items, nil)
}

func (c *Client) ResetSpeedLUT() error {
	return c.request(http.MethodDelete, "/fan/lut/", nil, nil)
}

func (c *Client) Shutdown() error {
	return c.request(http.MethodPost, "/shutdown/", nil, nil)
}

func (c *Client) request(method string, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("cannot reach daemon at %s, is it running? (%w)", c.baseURL, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return decodeError(response)
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(result)
}

func decodeError(response *http.Response) error {
	var apiResult api.Result
	if err := json.NewDecoder(response.Body).Decode(&apiResult); err == nil && apiResult.Message != "" {
		return fmt.Errorf("%s: %s", strings.ToLower(apiResult.Name), apiResult.Message)
	}
	return fmt.Errorf("daemon answered %s", response.Status)
}

package client

import (
	"bufio"
	"encoding/json"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/UCSIG/attiny85-time-switch/pkg/events"
	"github.com/UCSIG/attiny85-time-switch/pkg/types"
)

func (c *Client) GetState() (*types.ControllerState, error) {
	ret, err := c.Get("/state")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get controller state")
	}
	st := &types.ControllerState{}
	if err := json.Unmarshal([]byte(ret), st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal controller state")
	}
	return st, nil
}

func (c *Client) GetConfig() (*types.OperatingInfo, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get operating configuration")
	}
	cfg := &types.OperatingInfo{}
	if err := json.Unmarshal([]byte(ret), cfg); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal operating configuration")
	}
	return cfg, nil
}

func (c *Client) GetCalibration() (*types.CalibrationInfo, error) {
	ret, err := c.Get("/calibration")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration info")
	}
	cal := &types.CalibrationInfo{}
	if err := json.Unmarshal([]byte(ret), cal); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration info")
	}
	return cal, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get daemon version")
	}
	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal daemon version")
	}
	return v, nil
}

// Events subscribes to the daemon event stream and calls handler for every
// event until the stream closes or handler returns false.
func (c *Client) Events(handler func(events.Event) bool) error {
	body, err := c.Stream("/events")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open event stream")
	}
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	var name string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			// gin's SSEvent JSON-quotes the pre-marshalled payload.
			var payload string
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				payload = data
			}
			if !handler(events.Event{Name: name, Data: json.RawMessage(payload)}) {
				return nil
			}
			name = ""
		}
	}
	return scanner.Err()
}

// Package homa is a client for the Snap Hutao statistics API.
package homa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/upstream"
)

// BaseURL is the public statistics endpoint.
const BaseURL = "https://homa.snapgenshin.com"

// API paths.
const (
	PathUtilizationRate = "/Statistics/Avatar/UtilizationRate"
	PathOverview        = "/Statistics/Overview"
)

// Client is an HTTP client for the statistics API.
type Client struct {
	BaseURL string
	Getter  *upstream.Getter
}

// NewClient creates a client for baseURL. An empty baseURL uses BaseURL.
func NewClient(baseURL string, getter *upstream.Getter) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if getter == nil {
		getter = upstream.NewGetter(upstream.DefaultTimeout)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Getter:  getter,
	}
}

// ItemRate is the utilization rate of one character on one floor.
type ItemRate struct {
	Item int     `json:"item"`
	Rate float64 `json:"rate"`
}

// FloorRanks holds the rates of every character used on a floor.
type FloorRanks struct {
	Floor int        `json:"floor"`
	Ranks []ItemRate `json:"ranks"`
}

// Overview is the summary of the current schedule.
type Overview struct {
	ScheduleID          int   `json:"scheduleId"`
	RecordTotal         int   `json:"recordTotal"`
	SpiralAbyssTotal    int   `json:"spiralAbyssTotal"`
	SpiralAbyssFullStar int   `json:"spiralAbyssFullStar"`
	SpiralAbyssPassed   int   `json:"spiralAbyssPassed"`
	Timestamp           int64 `json:"timestamp"`
}

// Stat converts the overview to the schedule summary used by the reports.
func (o Overview) Stat() domain.OverviewStat {
	return domain.OverviewStat{
		ScheduleID:          o.ScheduleID,
		SpiralAbyssTotal:    o.SpiralAbyssTotal,
		SpiralAbyssFullStar: o.SpiralAbyssFullStar,
	}
}

// APIError is a non-zero retcode in a response envelope.
type APIError struct {
	Code    int
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("homa api error %d: %s", e.Code, e.Message)
}

type envelope struct {
	Retcode int             `json:"retcode"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchUtilizationRate fetches per-floor character utilization for the current schedule.
func (c *Client) FetchUtilizationRate(ctx context.Context) ([]FloorRanks, error) {
	var floors []FloorRanks
	if err := c.get(ctx, domain.SourceUtilization, PathUtilizationRate, &floors); err != nil {
		return nil, err
	}
	return floors, nil
}

// FetchOverview fetches the summary of the current schedule.
func (c *Client) FetchOverview(ctx context.Context) (Overview, error) {
	var overview Overview
	if err := c.get(ctx, domain.SourceOverview, PathOverview, &overview); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

func (c *Client) get(ctx context.Context, source, path string, out any) error {
	err := c.Getter.Fetch(ctx, source, c.BaseURL+path, func(body []byte) error {
		return decodeEnvelope(source, body, out)
	})
	if err != nil {
		var apiErr APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("fetch %s: %w", source, err)
	}
	return nil
}

// decodeEnvelope unwraps a response envelope into out.
func decodeEnvelope(source string, body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse %s envelope: %w", source, err)
	}
	if env.Retcode != 0 {
		return APIError{Code: env.Retcode, Message: env.Message}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s response has no data", source)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", source, err)
	}
	return nil
}

package esi

import (
	"context"
	"time"
)

// ServerStatus is the Tranquility status report.
type ServerStatus struct {
	Players       int       `json:"players"`
	ServerVersion string    `json:"server_version"`
	StartTime     time.Time `json:"start_time"`
	VIP           bool      `json:"vip,omitempty"`
}

// ServerStatus fetches the EVE Online server status. Public endpoint.
func (c *Client) ServerStatus(ctx context.Context) (*ServerStatus, error) {
	resp, err := c.Get(ctx, "/status/")
	if err != nil {
		return nil, err
	}
	var status ServerStatus
	if err := resp.UnmarshalData(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

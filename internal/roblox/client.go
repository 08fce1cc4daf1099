// Package roblox wraps the external place-ban API. Roblox exposes no public
// ban endpoint, so with no endpoint configured the client runs in placeholder
// mode, matching how the ban integration has always behaved.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type banRequest struct {
	Username string `json:"username"`
	PlaceID  string `json:"place_id"`
	Reason   string `json:"reason"`
}

// Client calls the place-ban endpoint with a bearer API key.
type Client struct {
	apiKey     string
	banURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a Client. An empty banURL enables placeholder mode: calls
// are logged and reported as confirmed without touching the network.
func NewClient(apiKey, banURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		banURL:     banURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Ban requests a ban of username from placeID. The caller bounds ctx; any
// failure here is reported by the workflow as "ban not confirmed".
func (c *Client) Ban(ctx context.Context, username, placeID, reason string) error {
	if c.banURL == "" {
		c.logger.Info("no ban endpoint configured; simulating ban",
			"roblox_username", username, "place_id", placeID, "reason", reason)
		return nil
	}

	body, err := json.Marshal(banRequest{Username: username, PlaceID: placeID, Reason: reason})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.banURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ban endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

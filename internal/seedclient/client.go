// Package seedclient fetches the one-time bootstrap dataset used only when
// no persisted state exists yet.
package seedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"quantum/internal/models"
	"quantum/internal/observability"
)

// Document is the seed data schema: exactly two top-level keys.
type Document struct {
	Users []models.User `json:"users"`
	Chats []models.Chat `json:"chats"`
}

// Source supplies the seed document. Stores depend on this interface so
// tests can substitute a fixture.
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
}

// Client fetches the seed document from an HTTP URL or, when the location
// has no scheme, from a local file (the original served it as a relative
// path next to the app).
type Client struct {
	location string
	http     *http.Client
}

// New creates a Client for the given location.
func New(location string) *Client {
	return &Client{
		location: location,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch implements Source. It is called at most once per store, only when
// the persisted collection is absent.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	ctx, span := observability.Tracer.Start(ctx, "seed.fetch")
	defer span.End()

	doc, err := c.fetch(ctx)
	if err != nil {
		observability.SeedFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.SeedFetches.WithLabelValues("ok").Inc()
	return doc, nil
}

func (c *Client) fetch(ctx context.Context) (*Document, error) {
	if c.location == "" {
		return nil, fmt.Errorf("no seed location configured")
	}

	var doc Document
	if strings.Contains(c.location, "://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.location, nil)
		if err != nil {
			return nil, fmt.Errorf("build seed request: %w", err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed data: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch seed data: unexpected status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode seed data: %w", err)
		}
		return &doc, nil
	}

	raw, err := os.ReadFile(c.location)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &doc, nil
}

package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// EventURIPrefix is the uri prefix under which event detail hits are recorded.
const EventURIPrefix = "/events/"

// serviceTokenTTL is the lifetime of the token presented to the stats server.
const serviceTokenTTL = time.Minute

// Client talks to one of several stats server instances, picked at random per call.
type Client struct {
	client   *http.Client
	baseURLs []string
	app      string
	issuer   domain.TokenIssuer
}

// NewClient returns a stats client. issuer may be nil when the stats server is unauthenticated.
func NewClient(client *http.Client, baseURLs []string, app string, issuer domain.TokenIssuer) (*Client, error) {
	if len(baseURLs) == 0 {
		return nil, errors.New("at least one stats server url is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	urls := make([]string, len(baseURLs))
	for i, u := range baseURLs {
		urls[i] = strings.TrimSuffix(strings.TrimSpace(u), "/")
	}
	return &Client{client: client, baseURLs: urls, app: app, issuer: issuer}, nil
}

// EventURI returns the uri that hits on the detail page of event id are recorded under.
func EventURI(id int64) string {
	return EventURIPrefix + strconv.FormatInt(id, 10)
}

// RecordHit posts a hit. An empty App is filled with the client's app name.
func (c *Client) RecordHit(ctx context.Context, hit *domain.Hit) error {
	h := *hit
	if h.App == "" {
		h.App = c.app
	}
	body, err := json.Marshal(&h)
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/hit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post hit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats server returned status: %d", resp.StatusCode)
	}
	return nil
}

// Stats fetches the raw per-uri statistics.
func (c *Client) Stats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	params := url.Values{}
	params.Set("start", q.Start.UTC().Format(time.DateTime))
	params.Set("end", q.End.UTC().Format(time.DateTime))
	params.Set("unique", strconv.FormatBool(q.Unique))
	for _, u := range q.URIs {
		params.Add("uris", u)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats server returned status: %d", resp.StatusCode)
	}
	var envelope struct {
		Data []*domain.ViewStats `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	return envelope.Data, nil
}

// CountViews implements domain.ViewCounter over the event detail uris.
func (c *Client) CountViews(ctx context.Context, eventIDs []int64, start, end time.Time, unique bool) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	uris := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		uris[i] = EventURI(id)
	}
	stats, err := c.Stats(ctx, domain.StatsQuery{Start: start, End: end, URIs: uris, Unique: unique})
	if err != nil {
		return nil, err
	}
	for _, s := range stats {
		raw, ok := strings.CutPrefix(s.URI, EventURIPrefix)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[id] += s.Hits
	}
	return counts, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	base := c.baseURLs[rand.IntN(len(c.baseURLs))]
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, base+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, base+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.issuer != nil {
		token, err := c.issuer.Issue(c.app, []string{domain.RoleService}, serviceTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to issue service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

package pocketcasts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	apperrors "shufflepod/internal/errors"
	"shufflepod/internal/media"
)

const baseURL = "https://api.pocketcasts.com"

// Client talks to the Pocket Casts REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an API client with the given http.Client.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// post sends a JSON POST request and returns the raw response body.
// A non-empty token is sent as a bearer Authorization header.
func (c *Client) post(ctx context.Context, endpoint, token string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s (%d): %w", endpoint, resp.StatusCode, apperrors.ErrInvalidCredentials)
	}

	if resp.StatusCode != http.StatusOK {
		// The API reports failures with a message field in the body.
		msg := gjson.GetBytes(respBody, "errorMessage").Str
		if msg == "" {
			msg = gjson.GetBytes(respBody, "message").Str
		}
		if msg != "" {
			return nil, fmt.Errorf("%s (%d) %s: %w", endpoint, resp.StatusCode, msg, apperrors.ErrAPIRequest)
		}

		return nil, fmt.Errorf("%s returned status %d: %w", endpoint, resp.StatusCode, apperrors.ErrAPIRequest)
	}

	return respBody, nil
}

// Login authenticates with email and password, returning a bearer token
// for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.post(ctx, "/user/login", "", loginRequest{
		Email:    email,
		Password: password,
		Scope:    "webplayer",
	})
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding login response: %w", apperrors.ErrAPIResponse)
	}

	if resp.Token == "" {
		return "", fmt.Errorf("login response missing token: %w", apperrors.ErrAPIResponse)
	}

	return resp.Token, nil
}

// UpNext returns the current Up Next queue in play order. Each episode's
// Order is its position in the returned list.
func (c *Client) UpNext(ctx context.Context, token string) ([]media.Episode, error) {
	body, err := c.post(ctx, "/up_next/list", token, upNextRequest{Version: 2})
	if err != nil {
		return nil, fmt.Errorf("listing up next: %w", err)
	}

	var resp upNextResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding up next response: %w", apperrors.ErrAPIResponse)
	}

	episodes := make([]media.Episode, 0, len(resp.Episodes))
	for i, rec := range resp.Episodes {
		episodes = append(episodes, media.Episode{
			UUID:    rec.UUID,
			Order:   i,
			URL:     rec.URL,
			Title:   rec.Title,
			Podcast: rec.Podcast,
		})
	}

	return episodes, nil
}

// Podcasts returns a podcast UUID to title mapping for the account's
// subscriptions. The full payload carries far more per-podcast fields
// than we need, so the two interesting ones are picked out directly.
func (c *Client) Podcasts(ctx context.Context, token string) (map[string]string, error) {
	body, err := c.post(ctx, "/user/podcast/list", token, podcastListRequest{V: 1})
	if err != nil {
		return nil, fmt.Errorf("listing podcasts: %w", err)
	}

	podcasts := gjson.GetBytes(body, "podcasts")
	if !podcasts.IsArray() {
		return nil, fmt.Errorf("podcast list response missing podcasts array: %w", apperrors.ErrAPIResponse)
	}

	titles := make(map[string]string)
	podcasts.ForEach(func(_, p gjson.Result) bool {
		uuid := p.Get("uuid").Str
		if uuid != "" {
			titles[uuid] = p.Get("title").Str
		}

		return true
	})

	return titles, nil
}

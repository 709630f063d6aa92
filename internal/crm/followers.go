package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"leadbridge/platform/config"
	"leadbridge/platform/logger"
)

// FollowerRelay proxies follower additions through the automation relay.
// The v1 CRM API has no follower endpoint, so the relay forwards the call
// under its own v2 credentials.
type FollowerRelay struct {
	httpClient *http.Client
	relayURL   string
	log        *logger.Logger
}

// NewFollowerRelay creates a relay client.
func NewFollowerRelay(cfg config.FollowerRelayConfig, log *logger.Logger) *FollowerRelay {
	return &FollowerRelay{
		httpClient: &http.Client{Timeout: requestTimeout},
		relayURL:   cfg.GetFollowerRelayURL(),
		log:        log,
	}
}

// Enabled reports whether a relay URL is configured.
func (r *FollowerRelay) Enabled() bool {
	return r.relayURL != ""
}

// followerRelayRequest mirrors the relay's expected envelope: the target
// CRM path, the JSON body as a string, and the raw follower list.
type followerRelayRequest struct {
	URL       string   `json:"url"`
	Body      string   `json:"body"`
	Followers []string `json:"followers"`
}

// AddFollowers attaches followers to a contact via the relay and returns the
// relay response.
func (r *FollowerRelay) AddFollowers(ctx context.Context, contactID string, followers []string) (map[string]interface{}, error) {
	inner, err := json.Marshal(map[string][]string{"followers": followers})
	if err != nil {
		return nil, fmt.Errorf("encode followers: %w", err)
	}

	payload := followerRelayRequest{
		URL:       fmt.Sprintf("/contacts/%s/followers", contactID),
		Body:      string(inner),
		Followers: followers,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.relayURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.UpstreamError("follower-relay", "add followers", err)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.log.UpstreamError("follower-relay", "add followers", fmt.Errorf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// Package assign decides which agent a new lead belongs to: an explicit
// manual selection, a recommendation from the auto-assign oracle, or the
// constant backup agent when neither applies.
package assign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadbridge/platform/config"
	"leadbridge/platform/logger"
)

const oracleTimeout = 15 * time.Second

// Query carries the listing and buyer attributes the oracle routes on.
type Query struct {
	ListingMLS      string `json:"listing_mls"`
	ListingZip      string `json:"listing_zip"`
	ListingCity     string `json:"listing_city"`
	ListingProvince string `json:"listing_province"`
	BuyerEmail      string `json:"buyer_email"`
	BuyerCity       string `json:"buyer_city"`
	BuyerProvince   string `json:"buyer_province"`
	ColdLead        int    `json:"cold_lead"`
	BuyerName       string `json:"buyer_name"`
}

// Recommendation is the oracle's ranked answer: a primary candidate email
// plus ordered alternates.
type Recommendation struct {
	AssignedRealtor  string   `json:"assigned_realtor"`
	PossibleRealtors []string `json:"possible_realtors"`
}

// OracleClient is the HTTP client for the auto-assign oracle.
type OracleClient struct {
	httpClient *http.Client
	assignURL  string
	log        *logger.Logger
}

// NewOracleClient creates an oracle client.
func NewOracleClient(cfg config.AssignConfig, log *logger.Logger) *OracleClient {
	return &OracleClient{
		httpClient: &http.Client{Timeout: oracleTimeout},
		assignURL:  cfg.GetAssignURL(),
		log:        log,
	}
}

// Recommend submits the query and returns the oracle's candidate ranking.
func (c *OracleClient) Recommend(ctx context.Context, q Query) (Recommendation, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return Recommendation{}, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.assignURL, bytes.NewReader(encoded))
	if err != nil {
		return Recommendation{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("auto-assign", "recommend", err)
		return Recommendation{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.UpstreamError("auto-assign", "recommend", fmt.Errorf("status %d", resp.StatusCode))
		return Recommendation{}, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var rec Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		c.log.UpstreamError("auto-assign", "recommend", err)
		return Recommendation{}, fmt.Errorf("decode response: %w", err)
	}
	return rec, nil
}

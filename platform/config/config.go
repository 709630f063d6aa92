// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// InboundAuthConfig provides the shared-secret key for inbound requests.
type InboundAuthConfig interface {
	GetInboundAPIKey() string
}

// CRMConfig provides settings for the CRM REST API client.
type CRMConfig interface {
	GetCRMBaseURL() string
	GetCRMAPIKey() string
}

// AssignConfig provides settings for the auto-assign oracle.
type AssignConfig interface {
	GetAssignURL() string
	IsAutoAssignEnabled() bool
}

// FollowerRelayConfig provides settings for the follower relay endpoint.
type FollowerRelayConfig interface {
	GetFollowerRelayURL() string
}

// SlackConfig provides settings for Slack failure notifications.
type SlackConfig interface {
	GetSlackWebhookURL() string
	IsSlackEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values. It is constructed once
// at startup and treated as immutable thereafter.
type Config struct {
	Env              string
	HTTPAddr         string
	InboundAPIKey    string
	CRMBaseURL       string
	CRMAPIKey        string
	AssignURL        string
	FollowerRelayURL string
	SlackWebhookPath string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// InboundAuthConfig implementation
func (c *Config) GetInboundAPIKey() string { return c.InboundAPIKey }

// CRMConfig implementation
func (c *Config) GetCRMBaseURL() string { return c.CRMBaseURL }
func (c *Config) GetCRMAPIKey() string  { return c.CRMAPIKey }

// AssignConfig implementation
func (c *Config) GetAssignURL() string      { return c.AssignURL }
func (c *Config) IsAutoAssignEnabled() bool { return c.AssignURL != "" }

// FollowerRelayConfig implementation
func (c *Config) GetFollowerRelayURL() string { return c.FollowerRelayURL }

// SlackConfig implementation
func (c *Config) GetSlackWebhookURL() string {
	if c.SlackWebhookPath == "" {
		return ""
	}
	return "https://hooks.slack.com/services/" + c.SlackWebhookPath
}
func (c *Config) IsSlackEnabled() bool { return c.SlackWebhookPath != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		InboundAPIKey:    getEnv("API_KEY", ""),
		CRMBaseURL:       getEnv("CRM_BASE_URL", "https://rest.gohighlevel.com/v1"),
		CRMAPIKey:        getEnv("CRM_API_KEY", ""),
		AssignURL:        getEnv("AUTO_ASSIGN_URL", ""),
		FollowerRelayURL: getEnv("FOLLOWER_RELAY_URL", ""),
		SlackWebhookPath: getEnv("SLACK_WEBHOOK_URL", ""),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if cfg.InboundAPIKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}
	if cfg.CRMAPIKey == "" {
		return nil, fmt.Errorf("CRM_API_KEY is required")
	}
	if cfg.CRMBaseURL == "" {
		return nil, fmt.Errorf("CRM_BASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

// Package crm provides the HTTP client for the CRM REST API. The CRM is the
// system of record for contacts and agents; this package performs no
// branching beyond transport concerns.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"leadbridge/platform/config"
	"leadbridge/platform/logger"
)

const requestTimeout = 15 * time.Second

// Client is the HTTP client for the CRM REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a new CRM API client.
func New(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    cfg.GetCRMBaseURL(),
		apiKey:     cfg.GetCRMAPIKey(),
		log:        log,
	}
}

// LookupContactByEmail queries the contact directory by email equality.
// A miss is a valid outcome and returns (nil, nil); any transport or
// upstream failure returns a non-nil error so callers can distinguish
// "does not exist" from "could not determine".
func (c *Client) LookupContactByEmail(ctx context.Context, email string) (*Contact, error) {
	reqURL := fmt.Sprintf("%s/contacts/lookup?email=%s", c.baseURL, url.QueryEscape(email))

	var env contactsEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &env); err != nil {
		return nil, err
	}

	if len(env.Contacts) == 0 {
		return nil, nil
	}
	// The CRM may itself deduplicate; the first match is authoritative.
	return &env.Contacts[0], nil
}

// GetContact fetches a contact by id.
func (c *Client) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	reqURL := fmt.Sprintf("%s/contacts/%s", c.baseURL, url.PathEscape(contactID))

	var env contactEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &env); err != nil {
		return nil, err
	}
	if env.Contact == nil {
		return nil, fmt.Errorf("contact %s: empty response", contactID)
	}
	return env.Contact, nil
}

// CreateContact submits a new contact and returns the created record.
func (c *Client) CreateContact(ctx context.Context, payload ContactCreate) (*Contact, error) {
	reqURL := c.baseURL + "/contacts/"

	var env contactEnvelope
	if err := c.do(ctx, http.MethodPost, reqURL, payload, &env); err != nil {
		return nil, err
	}
	if env.Contact == nil {
		return nil, fmt.Errorf("create contact: response contains no contact")
	}
	return env.Contact, nil
}

// UpdateContact applies a sparse patch to an existing contact. The CRM
// collapses create-vs-noop outcomes; a response without a contact object
// is reported as (nil, nil).
func (c *Client) UpdateContact(ctx context.Context, contactID string, patch ContactPatch) (*Contact, error) {
	reqURL := fmt.Sprintf("%s/contacts/%s", c.baseURL, url.PathEscape(contactID))

	var env contactEnvelope
	if err := c.do(ctx, http.MethodPut, reqURL, patch, &env); err != nil {
		return nil, err
	}
	return env.Contact, nil
}

// DeleteRejectedError is returned when the CRM refuses a delete with 422.
type DeleteRejectedError struct {
	Payload map[string]interface{}
}

func (e *DeleteRejectedError) Error() string {
	return "crm rejected contact delete"
}

// DeleteContact removes a contact. A 422 response is surfaced as a
// *DeleteRejectedError carrying the CRM's payload verbatim.
func (c *Client) DeleteContact(ctx context.Context, contactID string) error {
	reqURL := fmt.Sprintf("%s/contacts/%s", c.baseURL, url.PathEscape(contactID))

	req, err := c.newRequest(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("crm", "delete contact", err)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnprocessableEntity:
		var payload map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &DeleteRejectedError{Payload: payload}
	default:
		c.log.UpstreamError("crm", "delete contact", fmt.Errorf("status %d", resp.StatusCode))
		return fmt.Errorf("delete contact: status %d", resp.StatusCode)
	}
}

// CreateNote attaches a free-text note to a contact.
func (c *Client) CreateNote(ctx context.Context, contactID, body string) error {
	reqURL := fmt.Sprintf("%s/contacts/%s/notes", c.baseURL, url.PathEscape(contactID))
	return c.do(ctx, http.MethodPost, reqURL, map[string]string{"body": body}, nil)
}

// CreateTask creates a task on a contact and returns the CRM response.
func (c *Client) CreateTask(ctx context.Context, contactID string, task TaskCreate) (map[string]interface{}, error) {
	reqURL := fmt.Sprintf("%s/contacts/%s/tasks", c.baseURL, url.PathEscape(contactID))

	var result map[string]interface{}
	if err := c.do(ctx, http.MethodPost, reqURL, task, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListUsers fetches the full team directory. Callers must not cache the
// result: every assignment decision reflects directory state at call time.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	reqURL := c.baseURL + "/users/"

	var env usersEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

func (c *Client) newRequest(ctx context.Context, method, reqURL string, body interface{}) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, reqURL, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("crm", method+" "+reqURL, err)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		// Success - continue to decode
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.UpstreamError("crm", method+" "+reqURL, fmt.Errorf("status %d", resp.StatusCode))
		return fmt.Errorf("unauthorized: invalid API key")
	default:
		c.log.UpstreamError("crm", method+" "+reqURL, fmt.Errorf("status %d", resp.StatusCode))
		return fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.UpstreamError("crm", method+" "+reqURL, err)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

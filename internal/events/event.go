// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadbridge/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadIngested is published when a new contact is created in the CRM.
type LeadIngested struct {
	BaseEvent
	ContactID  string `json:"contactId"`
	Email      string `json:"email"`
	AssignedTo string `json:"assignedTo"`
	Source     string `json:"source,omitempty"`
	HasNote    bool   `json:"hasNote"`
}

func (e LeadIngested) EventName() string { return "leads.ingested" }

// InquiryNoted is published when a property inquiry is recorded against an
// already existing contact instead of creating a duplicate.
type InquiryNoted struct {
	BaseEvent
	ContactID string `json:"contactId"`
	Email     string `json:"email"`
	MLSNumber string `json:"mlsNumber,omitempty"`
}

func (e InquiryNoted) EventName() string { return "leads.inquiry_noted" }

// LeadUpdated is published when a sparse patch is applied to a contact.
type LeadUpdated struct {
	BaseEvent
	ContactID  string `json:"contactId"`
	Reassigned bool   `json:"reassigned"`
}

func (e LeadUpdated) EventName() string { return "leads.updated" }

// OperationFailed is published whenever a handler-level operation fails; the
// notification module forwards these to the operational Slack channel.
type OperationFailed struct {
	BaseEvent
	Operation string `json:"operation"`
	RequestID string `json:"requestId,omitempty"`
	Reason    string `json:"reason"`
}

func (e OperationFailed) EventName() string { return "ops.operation_failed" }

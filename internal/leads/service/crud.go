package service

import (
	"context"
	"fmt"

	"leadbridge/internal/crm"
	"leadbridge/internal/leads/mapping"
	"leadbridge/internal/leads/transport"
	"leadbridge/platform/apperr"
)

// Single-call CRM proxy operations. Each issues exactly one logical outbound
// call (tag merge reads then writes) with no branching policy of its own.

// LookupContact finds a contact by email. A miss returns (nil, nil).
func (s *Service) LookupContact(ctx context.Context, email string) (*crm.Contact, error) {
	contact, err := s.crm.LookupContactByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "contact lookup failed", err).WithOp("leads.LookupContact")
	}
	return contact, nil
}

// LookupUser finds a team member by email. A miss returns (nil, nil).
func (s *Service) LookupUser(ctx context.Context, email string) (*crm.User, error) {
	member, err := s.crm.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "team directory lookup failed", err).WithOp("leads.LookupUser")
	}
	return member, nil
}

// AddTags merges new tags into the contact's existing tag list and writes the
// combined set back.
func (s *Service) AddTags(ctx context.Context, contactID string, tags []string) (*crm.Contact, error) {
	contact, err := s.crm.GetContact(ctx, contactID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "contact fetch failed", err).WithOp("leads.AddTags")
	}

	merged := append(append([]string{}, contact.Tags...), tags...)
	updated, err := s.crm.UpdateContact(ctx, contactID, crm.ContactPatch{"tags": merged})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "tag update failed", err).WithOp("leads.AddTags")
	}
	return updated, nil
}

// AddNote attaches a property-inquiry note to an existing contact.
func (s *Service) AddNote(ctx context.Context, contactID string, req transport.NoteRequest) error {
	note := mapping.ComposeInquiryNote(req.Property, req.Message, req.Description)
	if err := s.crm.CreateNote(ctx, contactID, note); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "note create failed", err).WithOp("leads.AddNote")
	}
	return nil
}

// AddTask creates a task on a contact, assigned to whoever owns the contact.
func (s *Service) AddTask(ctx context.Context, contactID string, req transport.TaskRequest) (map[string]interface{}, error) {
	contact, err := s.crm.GetContact(ctx, contactID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "contact fetch failed", err).WithOp("leads.AddTask")
	}

	task := crm.TaskCreate{
		Title:       req.Title,
		DueDate:     req.DueDate,
		Description: req.Description,
		AssignedTo:  contact.AssignedTo,
		Status:      "incompleted",
	}

	result, err := s.crm.CreateTask(ctx, contactID, task)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "task create failed", err).WithOp("leads.AddTask")
	}
	return result, nil
}

// AddFollowers forwards a follower addition through the relay.
func (s *Service) AddFollowers(ctx context.Context, contactID string, followers []string) (map[string]interface{}, error) {
	if s.relay == nil || !s.relay.Enabled() {
		return nil, apperr.BadRequest("follower relay is not configured")
	}
	result, err := s.relay.AddFollowers(ctx, contactID, followers)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "follower relay call failed", err).WithOp("leads.AddFollowers")
	}
	return result, nil
}

// Delete removes a contact. A CRM 422 rejection surfaces as a bad request
// with the CRM payload as details.
func (s *Service) Delete(ctx context.Context, contactID string) error {
	err := s.crm.DeleteContact(ctx, contactID)
	if err == nil {
		return nil
	}
	if rejected, ok := err.(*crm.DeleteRejectedError); ok {
		return apperr.BadRequest(fmt.Sprintf("contact %s cannot be deleted", contactID)).WithDetails(rejected.Payload)
	}
	return apperr.Wrap(apperr.KindUpstream, "contact delete failed", err).WithOp("leads.Delete")
}

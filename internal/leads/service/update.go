package service

import (
	"context"

	"leadbridge/internal/crm"
	"leadbridge/internal/events"
	"leadbridge/internal/leads/mapping"
	"leadbridge/internal/leads/transport"
	"leadbridge/platform/apperr"
	"leadbridge/platform/phone"
)

// UpdateResult is the tagged outcome of Update. Updated is false when the
// CRM response contained no contact object (the CRM collapses ambiguous
// create-vs-noop outcomes into that single signal).
type UpdateResult struct {
	Updated bool
	Contact *crm.Contact
}

// Update builds a sparse patch from the partial payload and applies it to
// the contact. A field is included only if its value is meaningful; missing
// keys mean "leave untouched". An explicit realtor selection is resolved
// through the team directory and must not silently fall back.
func (s *Service) Update(ctx context.Context, lead transport.InboundLead, contactID string) (UpdateResult, error) {
	patch, reassigned, err := s.buildPatch(ctx, lead)
	if err != nil {
		return UpdateResult{}, err
	}

	updated, err := s.crm.UpdateContact(ctx, contactID, patch)
	if err != nil {
		return UpdateResult{}, apperr.Wrap(apperr.KindUpstream, "contact update failed", err).WithOp("leads.Update")
	}
	if updated == nil {
		s.log.WithContext(ctx).Warn("contact update returned no contact", "contact_id", contactID)
		return UpdateResult{Updated: false}, nil
	}

	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent:  events.NewBaseEvent(),
		ContactID:  updated.ID,
		Reassigned: reassigned,
	})

	return UpdateResult{Updated: true, Contact: updated}, nil
}

// buildPatch applies the meaningful-value predicate uniformly to identity
// fields, source/tags, and every custom field.
func (s *Service) buildPatch(ctx context.Context, lead transport.InboundLead) (crm.ContactPatch, bool, error) {
	patch := crm.ContactPatch{}
	reassigned := false

	if sel := lead.Person.SelectedRealtorEmail; sel != nil && mapping.Meaningful(*sel) {
		agentID, err := s.assigner.ResolveManual(ctx, *sel)
		if err != nil {
			return nil, false, err
		}
		patch["assignedTo"] = agentID
		reassigned = true
	}

	putIf(patch, "email", lead.CanonicalEmail())
	if p := lead.CanonicalPhone(); mapping.Meaningful(p) {
		patch["phone"] = phone.NormalizeE164(p)
	}
	putIf(patch, "firstName", lead.Person.FirstName)
	putIf(patch, "lastName", lead.Person.LastName)

	address := lead.CanonicalAddress()
	putIf(patch, "city", address.City)
	putIf(patch, "state", address.State)
	putIf(patch, "source", lead.Source)

	if mapping.Meaningful(lead.Person.Tags) {
		patch["tags"] = lead.Person.Tags
	}

	if custom := mapping.FilterMeaningful(mapping.MapCustomFields(lead.Person, lead.Property)); custom != nil {
		patch["customField"] = custom
	}

	return patch, reassigned, nil
}

func putIf(patch crm.ContactPatch, key, value string) {
	if mapping.Meaningful(value) {
		patch[key] = value
	}
}

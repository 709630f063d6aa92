// Package service implements the lead ingestion and update engines on top of
// the CRM client, the assignment resolver, and the custom-field mapper.
package service

import (
	"context"

	"leadbridge/internal/assign"
	"leadbridge/internal/crm"
	"leadbridge/internal/events"
	"leadbridge/internal/leads/mapping"
	"leadbridge/internal/leads/transport"
	"leadbridge/platform/apperr"
	"leadbridge/platform/logger"
	"leadbridge/platform/phone"
)

// CRM is the surface of the CRM client the engines use. Satisfied by
// *crm.Client; tests substitute a fake.
type CRM interface {
	LookupContactByEmail(ctx context.Context, email string) (*crm.Contact, error)
	GetContact(ctx context.Context, contactID string) (*crm.Contact, error)
	CreateContact(ctx context.Context, payload crm.ContactCreate) (*crm.Contact, error)
	UpdateContact(ctx context.Context, contactID string, patch crm.ContactPatch) (*crm.Contact, error)
	DeleteContact(ctx context.Context, contactID string) error
	CreateNote(ctx context.Context, contactID, body string) error
	CreateTask(ctx context.Context, contactID string, task crm.TaskCreate) (map[string]interface{}, error)
	ListUsers(ctx context.Context) ([]crm.User, error)
	FindUserByEmail(ctx context.Context, email string) (*crm.User, error)
}

// Assigner decides which agent owns a new lead. Satisfied by *assign.Resolver.
type Assigner interface {
	ResolveManual(ctx context.Context, email string) (string, error)
	ResolveAuto(ctx context.Context, q assign.Query) (string, error)
}

// Relay proxies follower additions. Satisfied by *crm.FollowerRelay.
type Relay interface {
	Enabled() bool
	AddFollowers(ctx context.Context, contactID string, followers []string) (map[string]interface{}, error)
}

// Service orchestrates lead ingestion, updates, and the thin CRM proxy
// operations. All outbound calls are issued strictly in sequence: each
// step's result gates the next, and side effects are not transactional (a
// created contact whose note-post fails stays behind without a note).
// Concurrent submissions for the same email race at the CRM, which is the
// only deduplication authority.
type Service struct {
	crm      CRM
	assigner Assigner
	relay    Relay
	bus      events.Bus
	log      *logger.Logger
}

// New creates the leads service.
func New(crmClient CRM, assigner Assigner, relay Relay, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		crm:      crmClient,
		assigner: assigner,
		relay:    relay,
		bus:      bus,
		log:      log,
	}
}

// IngestOutcome tags the result of an ingestion call.
type IngestOutcome int

const (
	// OutcomeCreated means a new contact was written to the CRM.
	OutcomeCreated IngestOutcome = iota
	// OutcomeAlreadyExists means the email matched an existing contact; no
	// contact was created (an inquiry note may still have been posted).
	OutcomeAlreadyExists
)

// IngestResult is the tagged outcome of Ingest.
type IngestResult struct {
	Outcome    IngestOutcome
	Contact    *crm.Contact // set only when Outcome == OutcomeCreated
	NotePosted bool
}

// Ingest deduplicates the lead by its canonical email, then either records a
// property inquiry on the existing contact or creates a new contact with a
// resolved assignee and the full custom-field schema.
func (s *Service) Ingest(ctx context.Context, lead transport.InboundLead) (IngestResult, error) {
	log := s.log.WithContext(ctx)
	email := lead.CanonicalEmail()
	hasProperty := lead.HasProperty()

	// The email is the deduplication key; updates may omit it, creation
	// cannot.
	if email == "" {
		return IngestResult{}, apperr.Validation("person must include at least one email").WithOp("leads.Ingest")
	}

	existing, err := s.crm.LookupContactByEmail(ctx, email)
	if err != nil {
		return IngestResult{}, apperr.Wrap(apperr.KindUpstream, "contact lookup failed", err).WithOp("leads.Ingest")
	}

	if existing != nil {
		log.Info("lead already exists", "contact_id", existing.ID, "has_property", hasProperty)
		result := IngestResult{Outcome: OutcomeAlreadyExists}
		if hasProperty {
			note := mapping.ComposeInquiryNote(lead.Property, lead.Message, lead.Description)
			if err := s.crm.CreateNote(ctx, existing.ID, note); err != nil {
				return IngestResult{}, apperr.Wrap(apperr.KindUpstream, "inquiry note failed", err).WithOp("leads.Ingest")
			}
			result.NotePosted = true
			s.bus.Publish(ctx, events.InquiryNoted{
				BaseEvent: events.NewBaseEvent(),
				ContactID: existing.ID,
				Email:     email,
				MLSNumber: lead.Property.MLSNumber,
			})
		}
		return result, nil
	}

	assignedTo, err := s.resolveAssignee(ctx, lead)
	if err != nil {
		return IngestResult{}, err
	}

	address := lead.CanonicalAddress()
	payload := crm.ContactCreate{
		Email:       email,
		Phone:       phone.NormalizeE164(lead.CanonicalPhone()),
		FirstName:   lead.Person.FirstName,
		LastName:    lead.Person.LastName,
		City:        address.City,
		State:       address.State,
		Source:      lead.Source,
		AssignedTo:  assignedTo,
		Tags:        lead.Person.Tags,
		CustomField: mapping.MapCustomFields(lead.Person, lead.Property),
	}

	created, err := s.crm.CreateContact(ctx, payload)
	if err != nil {
		return IngestResult{}, apperr.Wrap(apperr.KindUpstream, "contact create failed", err).WithOp("leads.Ingest")
	}
	log.Info("lead created", "contact_id", created.ID, "assigned_to", assignedTo)

	result := IngestResult{Outcome: OutcomeCreated, Contact: created}
	if hasProperty {
		note := mapping.ComposeInquiryNote(lead.Property, lead.Message, lead.Description)
		if err := s.crm.CreateNote(ctx, created.ID, note); err != nil {
			// The contact stays behind without its note; accepted, not compensated.
			return IngestResult{}, apperr.Wrap(apperr.KindUpstream, "inquiry note failed after create", err).WithOp("leads.Ingest")
		}
		result.NotePosted = true
	}

	s.bus.Publish(ctx, events.LeadIngested{
		BaseEvent:  events.NewBaseEvent(),
		ContactID:  created.ID,
		Email:      email,
		AssignedTo: assignedTo,
		Source:     lead.Source,
		HasNote:    result.NotePosted,
	})

	return result, nil
}

// resolveAssignee applies the decision order: explicit selection wins, only
// listings are auto-routed, and the backup agent catches everything else.
// The oracle must not be consulted for note-only or selection-carrying leads.
func (s *Service) resolveAssignee(ctx context.Context, lead transport.InboundLead) (string, error) {
	if sel := lead.Person.SelectedRealtorEmail; sel != nil && *sel != "" {
		return s.assigner.ResolveManual(ctx, *sel)
	}
	if lead.HasProperty() {
		return s.assigner.ResolveAuto(ctx, buildOracleQuery(lead))
	}
	return assign.BackupAgentID, nil
}

func buildOracleQuery(lead transport.InboundLead) assign.Query {
	address := lead.CanonicalAddress()
	q := assign.Query{
		BuyerEmail:    lead.CanonicalEmail(),
		BuyerCity:     address.City,
		BuyerProvince: address.State,
		BuyerName:     lead.DisplayName(),
		ColdLead:      0,
	}
	if lead.Property != nil {
		q.ListingMLS = lead.Property.MLSNumber
		q.ListingZip = lead.Property.Code
		q.ListingCity = lead.Property.City
		q.ListingProvince = lead.Property.State
	}
	return q
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadbridge/internal/assign"
	"leadbridge/internal/crm"
	"leadbridge/internal/events"
	"leadbridge/internal/leads/mapping"
	"leadbridge/internal/leads/transport"
	"leadbridge/platform/apperr"
	"leadbridge/platform/logger"
)

type fakeCRM struct {
	contactsByEmail map[string]*crm.Contact
	contactsByID    map[string]*crm.Contact
	lookupErr       error
	createErr       error
	noteErr         error
	updateResult    *crm.Contact
	updateErr       error
	deleteErr       error
	taskResult      map[string]interface{}

	created []crm.ContactCreate
	notes   []string // "contactID|body"
	patches []crm.ContactPatch
}

func (f *fakeCRM) LookupContactByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.contactsByEmail[email], nil
}

func (f *fakeCRM) GetContact(ctx context.Context, contactID string) (*crm.Contact, error) {
	c, ok := f.contactsByID[contactID]
	if !ok {
		return nil, errors.New("contact not found")
	}
	return c, nil
}

func (f *fakeCRM) CreateContact(ctx context.Context, payload crm.ContactCreate) (*crm.Contact, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, payload)
	return &crm.Contact{
		ID:         "new-contact",
		Email:      payload.Email,
		AssignedTo: payload.AssignedTo,
		Tags:       payload.Tags,
	}, nil
}

func (f *fakeCRM) UpdateContact(ctx context.Context, contactID string, patch crm.ContactPatch) (*crm.Contact, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.patches = append(f.patches, patch)
	return f.updateResult, nil
}

func (f *fakeCRM) DeleteContact(ctx context.Context, contactID string) error {
	return f.deleteErr
}

func (f *fakeCRM) CreateNote(ctx context.Context, contactID, body string) error {
	if f.noteErr != nil {
		return f.noteErr
	}
	f.notes = append(f.notes, contactID+"|"+body)
	return nil
}

func (f *fakeCRM) CreateTask(ctx context.Context, contactID string, task crm.TaskCreate) (map[string]interface{}, error) {
	return f.taskResult, nil
}

func (f *fakeCRM) ListUsers(ctx context.Context) ([]crm.User, error) {
	return nil, nil
}

func (f *fakeCRM) FindUserByEmail(ctx context.Context, email string) (*crm.User, error) {
	return nil, nil
}

type fakeAssigner struct {
	manualID    string
	manualErr   error
	autoID      string
	autoErr     error
	manualCalls []string
	autoCalls   []assign.Query
}

func (f *fakeAssigner) ResolveManual(ctx context.Context, email string) (string, error) {
	f.manualCalls = append(f.manualCalls, email)
	return f.manualID, f.manualErr
}

func (f *fakeAssigner) ResolveAuto(ctx context.Context, q assign.Query) (string, error) {
	f.autoCalls = append(f.autoCalls, q)
	return f.autoID, f.autoErr
}

type fakeRelay struct {
	enabled bool
	result  map[string]interface{}
	err     error
	calls   int
}

func (f *fakeRelay) Enabled() bool { return f.enabled }

func (f *fakeRelay) AddFollowers(ctx context.Context, contactID string, followers []string) (map[string]interface{}, error) {
	f.calls++
	return f.result, f.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event)            { b.published = append(b.published, event) }
func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error { b.published = append(b.published, event); return nil }
func (b *recordingBus) Subscribe(eventName string, handler events.Handler)        {}

func newTestService(crmFake *fakeCRM, assigner *fakeAssigner, relay *fakeRelay) (*Service, *recordingBus) {
	bus := &recordingBus{}
	return New(crmFake, assigner, relay, bus, logger.New("development")), bus
}

func inboundLead(email string, property *transport.Property) transport.InboundLead {
	return transport.InboundLead{
		Person: transport.Person{
			FirstName: "Jane",
			LastName:  "Doe",
			Emails:    []transport.Email{{Value: email}},
		},
		Property: property,
		Source:   "fb4s",
	}
}

func TestIngestWithoutEmailIsRejected(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{}}
	assigner := &fakeAssigner{}
	svc, bus := newTestService(crmFake, assigner, &fakeRelay{})

	stage := "Offer"
	lead := transport.InboundLead{
		Person: transport.Person{FirstName: "Jane", CustomStage: &stage},
	}

	_, err := svc.Ingest(context.Background(), lead)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(crmFake.created) != 0 || len(crmFake.notes) != 0 {
		t.Fatal("no CRM writes may happen for an email-less lead")
	}
	if len(assigner.manualCalls)+len(assigner.autoCalls) != 0 {
		t.Fatal("assignment must not run for an email-less lead")
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no events, got %d", len(bus.published))
	}
}

func TestIngestExistingContactWithoutPropertyWritesNothing(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{
		"jane@example.com": {ID: "existing-1"},
	}}
	assigner := &fakeAssigner{}
	svc, _ := newTestService(crmFake, assigner, &fakeRelay{})

	result, err := svc.Ingest(context.Background(), inboundLead("jane@example.com", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeAlreadyExists {
		t.Fatalf("expected already-exists outcome, got %v", result.Outcome)
	}
	if result.NotePosted {
		t.Fatal("no note should be posted without a property block")
	}
	if len(crmFake.created) != 0 || len(crmFake.notes) != 0 {
		t.Fatalf("expected zero writes, got creates=%d notes=%d", len(crmFake.created), len(crmFake.notes))
	}
	if len(assigner.manualCalls)+len(assigner.autoCalls) != 0 {
		t.Fatal("assignment must not run for an existing contact")
	}
}

func TestIngestExistingContactWithPropertyPostsExactlyOneNote(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{
		"jane@example.com": {ID: "existing-1"},
	}}
	svc, bus := newTestService(crmFake, &fakeAssigner{}, &fakeRelay{})

	property := &transport.Property{URL: "http://x", MLSNumber: "M1"}
	result, err := svc.Ingest(context.Background(), inboundLead("jane@example.com", property))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeAlreadyExists || !result.NotePosted {
		t.Fatalf("expected already-exists with note, got %+v", result)
	}
	if len(crmFake.created) != 0 {
		t.Fatal("existing contact must not be recreated")
	}
	if len(crmFake.notes) != 1 {
		t.Fatalf("expected exactly one note, got %d", len(crmFake.notes))
	}
	note := crmFake.notes[0]
	if !strings.HasPrefix(note, "existing-1|") {
		t.Fatalf("note attached to wrong contact: %s", note)
	}
	if !strings.Contains(note, "http://x") || !strings.Contains(note, "MLS#M1") {
		t.Fatalf("note missing listing reference: %s", note)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.InquiryNoted); !ok {
		t.Fatalf("expected InquiryNoted event, got %T", bus.published[0])
	}
}

func TestIngestNewListingLeadRoutesThroughOracle(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{}}
	assigner := &fakeAssigner{autoID: "agent-7"}
	svc, bus := newTestService(crmFake, assigner, &fakeRelay{})

	property := &transport.Property{
		City:      "Calgary",
		State:     "AB",
		Code:      "T2P",
		MLSNumber: "C555",
		URL:       "https://listings.example.com/555",
	}
	result, err := svc.Ingest(context.Background(), inboundLead("new@example.com", property))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeCreated || result.Contact == nil {
		t.Fatalf("expected created outcome with contact, got %+v", result)
	}
	if len(assigner.autoCalls) != 1 {
		t.Fatalf("expected one oracle resolution, got %d", len(assigner.autoCalls))
	}
	q := assigner.autoCalls[0]
	if q.ListingMLS != "C555" || q.ListingCity != "Calgary" || q.BuyerEmail != "new@example.com" {
		t.Fatalf("oracle query not built from payload: %+v", q)
	}
	if q.BuyerName != "Jane Doe" {
		t.Fatalf("expected joined buyer name, got %q", q.BuyerName)
	}

	if len(crmFake.created) != 1 {
		t.Fatalf("expected one contact create, got %d", len(crmFake.created))
	}
	payload := crmFake.created[0]
	if payload.AssignedTo != "agent-7" {
		t.Fatalf("expected oracle agent on create, got %s", payload.AssignedTo)
	}
	if payload.CustomField[mapping.FieldListingURL] != "https://listings.example.com/555" {
		t.Fatalf("listing url not mapped: %v", payload.CustomField[mapping.FieldListingURL])
	}
	if len(payload.CustomField) != 27 {
		t.Fatalf("create must carry the full custom-field key set, got %d keys", len(payload.CustomField))
	}

	if len(crmFake.notes) != 1 {
		t.Fatalf("expected inquiry note after create, got %d", len(crmFake.notes))
	}
	if !result.NotePosted {
		t.Fatal("result should report the posted note")
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(bus.published))
	}
	ingested, ok := bus.published[0].(events.LeadIngested)
	if !ok {
		t.Fatalf("expected LeadIngested event, got %T", bus.published[0])
	}
	if ingested.AssignedTo != "agent-7" || !ingested.HasNote {
		t.Fatalf("event payload mismatch: %+v", ingested)
	}
}

func TestIngestNewLeadLandsOnBackupWithInquiryNote(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{}}
	assigner := &fakeAssigner{autoID: assign.BackupAgentID}
	svc, _ := newTestService(crmFake, assigner, &fakeRelay{})

	property := &transport.Property{MLSNumber: "M1", URL: "http://x"}
	result, err := svc.Ingest(context.Background(), inboundLead("fresh@example.com", property))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeCreated {
		t.Fatalf("expected created outcome, got %v", result.Outcome)
	}
	if crmFake.created[0].AssignedTo != assign.BackupAgentID {
		t.Fatalf("expected backup agent, got %s", crmFake.created[0].AssignedTo)
	}
	if len(crmFake.notes) != 1 {
		t.Fatalf("expected one inquiry note, got %d", len(crmFake.notes))
	}
	note := crmFake.notes[0]
	if !strings.Contains(note, "MLS#M1") || !strings.Contains(note, "http://x") {
		t.Fatalf("note must reference the listing: %s", note)
	}
}

func TestIngestNoteOnlyLeadGoesToBackupWithoutOracle(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{}}
	assigner := &fakeAssigner{}
	svc, _ := newTestService(crmFake, assigner, &fakeRelay{})

	result, err := svc.Ingest(context.Background(), inboundLead("new@example.com", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeCreated {
		t.Fatalf("expected created outcome, got %v", result.Outcome)
	}
	if len(assigner.autoCalls) != 0 {
		t.Fatal("oracle must not be consulted for a note-only lead")
	}
	if crmFake.created[0].AssignedTo != assign.BackupAgentID {
		t.Fatalf("expected backup agent, got %s", crmFake.created[0].AssignedTo)
	}
	if result.NotePosted || len(crmFake.notes) != 0 {
		t.Fatal("no note should be posted without a property block")
	}
}

func TestIngestManualSelectionWins(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{}}
	assigner := &fakeAssigner{manualID: "agent-m"}
	svc, _ := newTestService(crmFake, assigner, &fakeRelay{})

	lead := inboundLead("new@example.com", &transport.Property{MLSNumber: "C9"})
	selected := "chosen@example.com"
	lead.Person.SelectedRealtorEmail = &selected

	if _, err := svc.Ingest(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assigner.manualCalls) != 1 || assigner.manualCalls[0] != "chosen@example.com" {
		t.Fatalf("expected manual resolution for selection, got %v", assigner.manualCalls)
	}
	if len(assigner.autoCalls) != 0 {
		t.Fatal("oracle must not run when a selection is present")
	}
	if crmFake.created[0].AssignedTo != "agent-m" {
		t.Fatalf("expected manually selected agent, got %s", crmFake.created[0].AssignedTo)
	}
}

func TestIngestManualSelectionMissAbortsCreate(t *testing.T) {
	crmFake := &fakeCRM{contactsByEmail: map[string]*crm.Contact{}}
	assigner := &fakeAssigner{manualErr: apperr.Assignment("selected realtor ghost@example.com not found in team directory")}
	svc, bus := newTestService(crmFake, assigner, &fakeRelay{})

	lead := inboundLead("new@example.com", nil)
	selected := "ghost@example.com"
	lead.Person.SelectedRealtorEmail = &selected

	_, err := svc.Ingest(context.Background(), lead)
	if !apperr.Is(err, apperr.KindAssignment) {
		t.Fatalf("expected assignment error, got %v", err)
	}
	if len(crmFake.created) != 0 {
		t.Fatal("no contact may be created when selection resolution fails")
	}
	if len(bus.published) != 0 {
		t.Fatal("no event may be published on failure")
	}
}

func TestIngestNoteFailureAfterCreateSurfacesButKeepsContact(t *testing.T) {
	crmFake := &fakeCRM{
		contactsByEmail: map[string]*crm.Contact{},
		noteErr:         errors.New("notes endpoint down"),
	}
	svc, bus := newTestService(crmFake, &fakeAssigner{autoID: "agent-1"}, &fakeRelay{})

	_, err := svc.Ingest(context.Background(), inboundLead("new@example.com", &transport.Property{MLSNumber: "C1"}))
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(crmFake.created) != 1 {
		t.Fatal("created contact must stay behind when the note fails")
	}
	if len(bus.published) != 0 {
		t.Fatal("ingest event must not be published on failure")
	}
}

func TestIngestLookupFailureIsUpstream(t *testing.T) {
	crmFake := &fakeCRM{lookupErr: errors.New("dial tcp: timeout")}
	svc, _ := newTestService(crmFake, &fakeAssigner{}, &fakeRelay{})

	_, err := svc.Ingest(context.Background(), inboundLead("new@example.com", nil))
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestAddTagsMergesWithExisting(t *testing.T) {
	crmFake := &fakeCRM{
		contactsByID: map[string]*crm.Contact{
			"c-1": {ID: "c-1", Tags: []string{"buyer", "hot"}},
		},
		updateResult: &crm.Contact{ID: "c-1"},
	}
	svc, _ := newTestService(crmFake, &fakeAssigner{}, &fakeRelay{})

	if _, err := svc.AddTags(context.Background(), "c-1", []string{"open-house"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(crmFake.patches) != 1 {
		t.Fatalf("expected one patch, got %d", len(crmFake.patches))
	}
	tags, ok := crmFake.patches[0]["tags"].([]string)
	if !ok {
		t.Fatalf("patch has no tags list: %v", crmFake.patches[0])
	}
	want := []string{"buyer", "hot", "open-house"}
	if len(tags) != len(want) {
		t.Fatalf("merged tags mismatch: got %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("merged tags mismatch at %d: got %v, want %v", i, tags, want)
		}
	}
}

func TestAddTaskAssignsToContactOwner(t *testing.T) {
	crmFake := &fakeCRM{
		contactsByID: map[string]*crm.Contact{
			"c-1": {ID: "c-1", AssignedTo: "agent-9"},
		},
		taskResult: map[string]interface{}{"id": "task-1"},
	}
	svc, _ := newTestService(crmFake, &fakeAssigner{}, &fakeRelay{})

	result, err := svc.AddTask(context.Background(), "c-1", transport.TaskRequest{
		Title:   "Call back",
		DueDate: "2026-09-15T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["id"] != "task-1" {
		t.Fatalf("unexpected task result: %v", result)
	}
}

func TestAddFollowersRequiresConfiguredRelay(t *testing.T) {
	svc, _ := newTestService(&fakeCRM{}, &fakeAssigner{}, &fakeRelay{enabled: false})

	_, err := svc.AddFollowers(context.Background(), "c-1", []string{"u-1"})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for unconfigured relay, got %v", err)
	}
}

func TestAddFollowersForwardsThroughRelay(t *testing.T) {
	relay := &fakeRelay{enabled: true, result: map[string]interface{}{"succeded": true}}
	svc, _ := newTestService(&fakeCRM{}, &fakeAssigner{}, relay)

	result, err := svc.AddFollowers(context.Background(), "c-1", []string{"u-1", "u-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relay.calls != 1 {
		t.Fatalf("expected one relay call, got %d", relay.calls)
	}
	if result["succeded"] != true {
		t.Fatalf("relay result not passed through: %v", result)
	}
}

func TestDeleteRejectionBecomesBadRequest(t *testing.T) {
	crmFake := &fakeCRM{deleteErr: &crm.DeleteRejectedError{
		Payload: map[string]interface{}{"msg": "contact has open opportunities"},
	}}
	svc, _ := newTestService(crmFake, &fakeAssigner{}, &fakeRelay{})

	err := svc.Delete(context.Background(), "c-1")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for rejected delete, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details == nil {
		t.Fatal("expected rejection payload in error details")
	}
}

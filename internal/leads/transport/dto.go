// Package transport defines the inbound payload shapes for the leads module.
// The shapes mirror the contract of the upstream form/extension: a nested
// person record with named custom attributes, an optional property block, and
// free-form classification strings.
package transport

// Email is a single email entry. The first entry is the canonical address and
// the deduplication key.
type Email struct {
	Value string `json:"value" validate:"required,email"`
}

// Phone is a single phone entry.
type Phone struct {
	Value string `json:"value"`
}

// Address is a single postal address entry; only city/state are consumed.
type Address struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// Person is the contact identity block. Custom attributes are pointers so the
// update path can distinguish "absent" from a meaningful zero value. Emails
// are optional at the transport layer because partial updates may omit them;
// ingestion enforces the at-least-one-email rule itself.
type Person struct {
	ID        int       `json:"id,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Emails    []Email   `json:"emails" validate:"omitempty,dive"`
	Phones    []Phone   `json:"phones" validate:"dive"`
	Addresses []Address `json:"addresses"`
	Tags      []string  `json:"tags"`

	SelectedRealtorEmail *string `json:"selected_realtor_email,omitempty" validate:"omitempty,email"`

	CustomMLSNumber              *string `json:"customMLSNumber,omitempty"`
	CustomListingType            *string `json:"customListingType,omitempty"`
	CustomAddress                *string `json:"customAddress,omitempty"`
	CustomCity                   *string `json:"customCity,omitempty"`
	CustomProvince               *string `json:"customProvince,omitempty"`
	CustomLeadID                 *string `json:"customFB4SLeadID,omitempty"`
	CustomRCAURL                 *string `json:"customFB4SRCAURL,omitempty" validate:"omitempty,url"`
	CustomListingURL             *string `json:"customListingURL,omitempty" validate:"omitempty,url"`
	CustomListingURLPath         *string `json:"customListingURLPath,omitempty"`
	CustomParentCategory         *string `json:"customParentCategory,omitempty"`
	CustomAbandonedPondReason    *string `json:"customAbandonedPondReason,omitempty"`
	CustomChromeExtensionLink    *string `json:"customChromeExtensionLink,omitempty" validate:"omitempty,url"`
	CustomInquiriesCounter       *int    `json:"customFB4SInquiriesCounter,omitempty"`
	CustomBuyerProfile           *string `json:"customBuyerProfileFB4S,omitempty" validate:"omitempty,url"`
	CustomAssignedNotFromBackup  *string `json:"customAssignedNotFromWillowAt,omitempty"`
	CustomStage                  *string `json:"customStage,omitempty"`
	CustomPond                   *string `json:"pond,omitempty"`
	CustomPrice                  *string `json:"customPrice,omitempty"`
	CustomClosingAnniversary     *string `json:"customClosingAnniversary,omitempty"`
	CustomYlopoSellerReport      *string `json:"customYlopoSellerReport,omitempty"`
	CustomWhoAreYou              *string `json:"customWhoareyou,omitempty"`
	CustomLastActivity           *string `json:"customLastActivity,omitempty"`
	CustomCloseDate              *string `json:"customCloseDate,omitempty"`
	CustomListingPushesSent      *string `json:"customLisitngPushesSent,omitempty"`
	CustomYlopoStarsLink         *string `json:"customYlopoStarsLink,omitempty"`
	CustomExpectedPriceRange     *string `json:"customExpectedPriceRange,omitempty"`
	CustomOldID                  *string `json:"customOldID,omitempty"`
}

// Property is the listing reference block. Its presence is the sole signal
// distinguishing a full lead from a note-only inquiry.
type Property struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Code      string `json:"code"`
	MLSNumber string `json:"mlsNumber"`
	URL       string `json:"url" validate:"omitempty,url"`
	Price     int    `json:"price"`
}

// InboundLead is the payload received from the form/extension.
type InboundLead struct {
	Person      Person    `json:"person" validate:"required"`
	Property    *Property `json:"property,omitempty"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	System      string    `json:"system"`
	Description string    `json:"description"`
	Message     string    `json:"message"`
}

// HasProperty reports whether the payload carried a property block.
func (l *InboundLead) HasProperty() bool {
	return l.Property != nil
}

// CanonicalEmail returns the deduplication key: the first email value.
func (l *InboundLead) CanonicalEmail() string {
	if len(l.Person.Emails) == 0 {
		return ""
	}
	return l.Person.Emails[0].Value
}

// CanonicalPhone returns the first phone value, if any.
func (l *InboundLead) CanonicalPhone() string {
	if len(l.Person.Phones) == 0 {
		return ""
	}
	return l.Person.Phones[0].Value
}

// CanonicalAddress returns the first address entry, if any.
func (l *InboundLead) CanonicalAddress() Address {
	if len(l.Person.Addresses) == 0 {
		return Address{}
	}
	return l.Person.Addresses[0]
}

// DisplayName joins first and last name for oracle queries.
func (l *InboundLead) DisplayName() string {
	if l.Person.FirstName == "" {
		return l.Person.LastName
	}
	if l.Person.LastName == "" {
		return l.Person.FirstName
	}
	return l.Person.FirstName + " " + l.Person.LastName
}

// LookupRequest is the body for contact lookup by email.
type LookupRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserLookupRequest is the body for team member lookup by email.
type UserLookupRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TagsRequest is the body for merge-adding tags to a contact.
type TagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1"`
}

// NoteRequest is the body for attaching a property-inquiry note.
type NoteRequest struct {
	Property    *Property `json:"property" validate:"required"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	System      string    `json:"system"`
	Description string    `json:"description"`
	Message     string    `json:"message"`
}

// TaskRequest is the body for creating a task on a contact.
type TaskRequest struct {
	Title       string `json:"title" validate:"required"`
	DueDate     string `json:"dueDate" validate:"required"`
	Description string `json:"description"`
}

// FollowersRequest is the body for adding followers to a contact.
type FollowersRequest struct {
	Followers []string `json:"followers" validate:"required,min=1"`
}

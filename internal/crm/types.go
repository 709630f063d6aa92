package crm

// Contact is the CRM-side representation of a lead.
type Contact struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email,omitempty"`
	Phone       string                 `json:"phone,omitempty"`
	FirstName   string                 `json:"firstName,omitempty"`
	LastName    string                 `json:"lastName,omitempty"`
	City        string                 `json:"city,omitempty"`
	State       string                 `json:"state,omitempty"`
	Source      string                 `json:"source,omitempty"`
	AssignedTo  string                 `json:"assignedTo,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	CustomField map[string]interface{} `json:"customField,omitempty"`
}

// User is a CRM team member (an agent eligible to own a lead).
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContactCreate is the flat payload for contact creation. CustomField always
// carries the full field-id key set; absent attributes are explicit nulls
// because the CRM treats a missing key as "clear field".
type ContactCreate struct {
	Email       string                 `json:"email"`
	Phone       string                 `json:"phone,omitempty"`
	FirstName   string                 `json:"firstName,omitempty"`
	LastName    string                 `json:"lastName,omitempty"`
	City        string                 `json:"city,omitempty"`
	State       string                 `json:"state,omitempty"`
	Source      string                 `json:"source,omitempty"`
	AssignedTo  string                 `json:"assignedTo,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	CustomField map[string]interface{} `json:"customField"`
}

// ContactPatch is a sparse update payload. Keys absent from the map are left
// untouched by the CRM, so callers must only include meaningful values.
type ContactPatch map[string]interface{}

// TaskCreate is the payload for creating a task on a contact.
type TaskCreate struct {
	Title       string `json:"title"`
	DueDate     string `json:"dueDate"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Status      string `json:"status"`
}

// Response envelopes used by the CRM REST API.

type contactEnvelope struct {
	Contact *Contact `json:"contact"`
}

type contactsEnvelope struct {
	Contacts []Contact `json:"contacts"`
}

type usersEnvelope struct {
	Users []User `json:"users"`
}

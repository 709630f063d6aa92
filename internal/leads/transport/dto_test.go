package transport

import (
	"testing"

	"leadbridge/platform/validator"
)

func TestPartialUpdateWithoutEmailsPassesValidation(t *testing.T) {
	val := validator.New()

	stage := "Offer"
	lead := InboundLead{
		Person: Person{CustomStage: &stage},
	}

	if err := val.Struct(lead); err != nil {
		t.Fatalf("email-less partial payload must pass validation, got: %v", err)
	}
}

func TestEmailEntriesAreStillValidated(t *testing.T) {
	val := validator.New()

	lead := InboundLead{
		Person: Person{
			Emails: []Email{{Value: "not-an-email"}},
		},
	}

	if err := val.Struct(lead); err == nil {
		t.Fatal("malformed email entries must still fail validation")
	}
}

func TestFullLeadPassesValidation(t *testing.T) {
	val := validator.New()

	lead := InboundLead{
		Person: Person{
			FirstName: "Jane",
			Emails:    []Email{{Value: "jane@example.com"}},
			Phones:    []Phone{{Value: "4165550199"}},
		},
		Property: &Property{URL: "https://listings.example.com/1", MLSNumber: "C1"},
	}

	if err := val.Struct(lead); err != nil {
		t.Fatalf("complete lead must pass validation, got: %v", err)
	}
}

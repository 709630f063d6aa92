package mapping

import (
	"fmt"

	"leadbridge/internal/leads/transport"
)

// sourceTag identifies the upstream inquiry system inside note bodies.
const sourceTag = "FB4S"

// ComposeInquiryNote builds the property-inquiry note body: listing URL, MLS
// number, source tag, then the inquirer's message and description. The CRM
// renders notes as HTML, hence the <br> separators.
func ComposeInquiryNote(property *transport.Property, message, description string) string {
	var url, mls string
	if property != nil {
		url = property.URL
		mls = property.MLSNumber
	}
	return fmt.Sprintf("Property Inquiry<br>%s<br>MLS#%s<br><br>via: %s<br><br>%s<br><br>%s",
		url, mls, sourceTag, message, description)
}

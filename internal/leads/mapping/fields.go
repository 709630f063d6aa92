// Package mapping translates the nested inbound payload into the CRM's
// flat schema: the fixed custom-field identifiers, the meaningful-value
// predicate, and the property-inquiry note template.
package mapping

import (
	"leadbridge/internal/leads/transport"
)

// CRM custom-field identifiers. The CRM addresses contact attributes by
// these opaque fixed ids, one per semantic attribute.
const (
	FieldListingType             = "R3CCQhYeG4kZ5NSTW5vk"
	FieldRCAURL                  = "F4Bkzj3AXKtBiri6S3Xe"
	FieldLeadID                  = "tTqAgy8mKjYaoAWdEqm5"
	FieldBuyerProfile            = "t7EBTF8Ub1JgdGl7N5mE"
	FieldInquiriesCounter        = "5k6Sn4LgOC109kGbPKXA"
	FieldMLSNumber               = "3kOQc4txrHj7dledzdNJ"
	FieldListingURL              = "ULUCaQYI9uurYn8mfpu9"
	FieldProvince                = "EcWFyMMhEZuLm5hz9wpP"
	FieldAddress                 = "fNUZTAUpB0BiA3ff5nSG"
	FieldCity                    = "yIiyCWtlHAkfKrWwin3H"
	FieldStage                   = "WfBlGcyHtMZIy885bv2q"
	FieldPond                    = "qe4zFdjyWpWlKjUkJ1Oz"
	FieldPrice                   = "zkkxcKSBxGG0AwKg7zb9"
	FieldClosingAnniversary      = "kN2l6aNW601zksRV5L0D"
	FieldChromeExtensionLink     = "KUpiQ32dAm11q4gu9MB1"
	FieldListingURLPath          = "2C3PcAa0JdOHRu95mWzp"
	FieldYlopoSellerReport       = "xNiTcYOSPKyG6UK9PHEn"
	FieldWhoAreYou               = "fkIooCxVyocAQeMlwWAo"
	FieldParentCategory          = "uvG7VhHmPyqjD976RNoW"
	FieldLastActivity            = "BWFdoHapnpo04EHpG5F0"
	FieldCloseDate               = "SBQ7tdjkwFMumNkfGrHw"
	FieldListingPushesSent       = "SujDeGnOKJXlifbU7fLo"
	FieldYlopoStarsLink          = "gpGUaXRBHdURtrh7nmlF"
	FieldAssignedNotFromBackupAt = "pwwHyq93djePQzzMECFI"
	FieldExpectedPriceRange      = "01MYfI09Z919mFibcZNG"
	FieldAbandonedPondReason     = "Cv7kNq7m8CBVDh7n9XEj"
	FieldOldID                   = "LzbUJkxo7kRClIomCc0U"
)

// MapCustomFields translates the nested inbound record into the CRM's flat
// custom-field map. It is pure and total: every known field id is present in
// the result, and attributes absent from the input map to an explicit null.
// Creation always submits this full key set; the update path filters it down
// to meaningful values afterwards.
func MapCustomFields(person transport.Person, property *transport.Property) map[string]interface{} {
	// The property block is authoritative for the listing URL; the person
	// attribute covers payloads without one.
	var listingURL interface{}
	if property != nil && property.URL != "" {
		listingURL = property.URL
	} else if person.CustomListingURL != nil {
		listingURL = *person.CustomListingURL
	}

	return map[string]interface{}{
		FieldListingType:             strValue(person.CustomListingType),
		FieldRCAURL:                  strValue(person.CustomRCAURL),
		FieldLeadID:                  strValue(person.CustomLeadID),
		FieldBuyerProfile:            strValue(person.CustomBuyerProfile),
		FieldInquiriesCounter:        intValue(person.CustomInquiriesCounter),
		FieldMLSNumber:               strValue(person.CustomMLSNumber),
		FieldListingURL:              listingURL,
		FieldProvince:                strValue(person.CustomProvince),
		FieldAddress:                 strValue(person.CustomAddress),
		FieldCity:                    strValue(person.CustomCity),
		FieldStage:                   strValue(person.CustomStage),
		FieldPond:                    strValue(person.CustomPond),
		FieldPrice:                   strValue(person.CustomPrice),
		FieldClosingAnniversary:      strValue(person.CustomClosingAnniversary),
		FieldChromeExtensionLink:     strValue(person.CustomChromeExtensionLink),
		FieldListingURLPath:          strValue(person.CustomListingURLPath),
		FieldYlopoSellerReport:       strValue(person.CustomYlopoSellerReport),
		FieldWhoAreYou:               strValue(person.CustomWhoAreYou),
		FieldParentCategory:          strValue(person.CustomParentCategory),
		FieldLastActivity:            strValue(person.CustomLastActivity),
		FieldCloseDate:               strValue(person.CustomCloseDate),
		FieldListingPushesSent:       strValue(person.CustomListingPushesSent),
		FieldYlopoStarsLink:          strValue(person.CustomYlopoStarsLink),
		FieldAssignedNotFromBackupAt: strValue(person.CustomAssignedNotFromBackup),
		FieldExpectedPriceRange:      strValue(person.CustomExpectedPriceRange),
		FieldAbandonedPondReason:     strValue(person.CustomAbandonedPondReason),
		FieldOldID:                   strValue(person.CustomOldID),
	}
}

// Meaningful reports whether a value carries information worth patching.
// Exactly nil, the literal sentinel "N/A", the empty string, and the empty
// list are rejected; everything else, including 0 and false, is accepted.
func Meaningful(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != "" && v != "N/A"
	case []string:
		return len(v) > 0
	case []interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// FilterMeaningful returns a copy of fields containing only meaningful
// values. An empty result is returned as nil so callers can drop the key
// entirely from a sparse patch.
func FilterMeaningful(fields map[string]interface{}) map[string]interface{} {
	filtered := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if Meaningful(v) {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// strValue lifts an optional string into interface{}, keeping absence as an
// untyped nil so it marshals as an explicit JSON null.
func strValue(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func intValue(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

package notify

import (
	"fmt"
	"strings"
)

// Kind selects the message template for an applicant notification.
type Kind string

const (
	KindReceived     Kind = "application_received"
	KindApproved     Kind = "application_approved"
	KindDeclined     Kind = "application_declined"
	KindWelcome      Kind = "welcome"
	KindMaintenance  Kind = "system_maintenance"
	KindPolicyUpdate Kind = "policy_update"
)

// ChannelKind is a logical audit channel name, mapped to a concrete channel
// by the platform adapter.
type ChannelKind string

const (
	ChannelCitizenshipLog    ChannelKind = "citizenship_log"
	ChannelCitizenshipStatus ChannelKind = "citizenship_status"
	ChannelModLog            ChannelKind = "mod_log"
	ChannelAnnouncements     ChannelKind = "announcements"
)

// Details carries the substituted fields for a rendered notification.
// Unused fields are simply omitted from the output.
type Details struct {
	Reason     string
	ReviewedBy string
	Message    string
}

type template struct {
	title  string
	body   string
	footer string
}

var templates = map[Kind]template{
	KindReceived: {
		title:  "✅ Application Received",
		body:   "Your citizenship application has been successfully submitted and is now under review. You will receive a DM once it has been reviewed.",
		footer: "Expected processing time: 2-5 business days",
	},
	KindApproved: {
		title:  "🎉 Citizenship Approved!",
		body:   "Congratulations! Your application for British Virgin Islands citizenship has been APPROVED. Your citizenship role will be assigned shortly.",
		footer: "Welcome to the British Virgin Islands!",
	},
	KindDeclined: {
		title:  "❌ Application Not Approved",
		body:   "Unfortunately, your citizenship application has been declined after careful review.",
		footer: "You may reapply in the future if circumstances change.",
	},
	KindWelcome: {
		title:  "🏝️ Welcome to the British Virgin Islands!",
		body:   "Welcome to our official community! Use /citizenship to apply for citizenship.",
		footer: "Government of the British Virgin Islands",
	},
	KindMaintenance: {
		title:  "🔧 System Maintenance Notice",
		body:   "The citizenship application system will undergo scheduled maintenance.",
		footer: "We apologize for any inconvenience.",
	},
	KindPolicyUpdate: {
		title:  "📋 Policy Update",
		body:   "Important updates have been made to our citizenship policies and procedures.",
		footer: "Please review the updated requirements.",
	},
}

// Render produces the plain-text message for a kind. The adapter may re-wrap
// this into platform embeds; the core only deals in text.
func Render(kind Kind, details Details) string {
	t, ok := templates[kind]
	if !ok {
		return string(kind)
	}
	var b strings.Builder
	b.WriteString("**" + t.title + "**\n")
	b.WriteString(t.body)
	if details.Message != "" {
		b.WriteString("\n\n" + details.Message)
	}
	if kind == KindDeclined && details.Reason != "" {
		b.WriteString("\n\nReason: " + details.Reason)
	}
	if details.ReviewedBy != "" {
		b.WriteString("\nReviewed by: " + details.ReviewedBy)
	}
	b.WriteString("\n_" + t.footer + "_")
	return b.String()
}

// AuditEntry is a formatted audit line for a logical channel. Fields left
// empty are omitted.
type AuditEntry struct {
	Event          string
	ApplicantID    string
	DisplayName    string
	RobloxUsername string
	Reviewer       string
	Reason         string
	PlaceID        string
}

func (e AuditEntry) String() string {
	parts := []string{"**" + e.Event + "**"}
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", label, value))
		}
	}
	add("Applicant", e.DisplayName)
	add("Applicant ID", e.ApplicantID)
	add("Roblox Username", e.RobloxUsername)
	add("Reviewed by", e.Reviewer)
	add("Reason", e.Reason)
	add("Place ID", e.PlaceID)
	return strings.Join(parts, "\n")
}

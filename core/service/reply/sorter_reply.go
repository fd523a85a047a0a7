// Package reply maps folders to canned reply suggestions.
package reply

import "sorter_server/core/domain"

// Fallback is returned for labels without templates.
var Fallback = []string{"No suggestions available."}

var templates = map[domain.Label][]string{
	domain.LabelUrgent: {
		"Thanks — I’ll prioritize this and get back to you shortly.",
		"Acknowledged. I’ll handle it immediately and update you.",
		"Received. I’ll escalate this and follow up soon.",
	},
	domain.LabelRoutine: {
		"Thanks for the update — I’ll review it soon.",
		"Noted. I’ll follow up as needed.",
		"Appreciate the information. I’ll take a look.",
	},
	domain.LabelSpam: {
		"Marking this as spam — no action needed.",
		"This looks like spam. Ignoring it.",
		"No response required — moving to spam.",
	},
	domain.LabelCustom: {
		"Thanks for reaching out — I will respond shortly.",
		"Appreciate the message. Let’s discuss soon.",
		"I’ll review this and get back to you with details.",
	},
}

// Suggestions returns a copy of the replies for label, or Fallback.
func Suggestions(label domain.Label) []string {
	src, ok := templates[label]
	if !ok {
		src = Fallback
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

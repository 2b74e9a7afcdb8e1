package parser

import "strings"

// detectPriority maps urgency keywords to a level. Default is low.
func detectPriority(message string) string {
	if rePriorityHigh.MatchString(message) {
		return "high"
	}
	if rePriorityMedium.MatchString(message) {
		return "medium"
	}
	return "low"
}

// detectRecurrence tests the recurrence table in order; the first matching
// pattern wins. Empty means no recurrence.
func detectRecurrence(message string) string {
	for _, r := range recurrenceTable {
		if r.re.MatchString(message) {
			return r.name
		}
	}
	return ""
}

// detectAssignee resolves person mentions against the roster. Partner aliases
// are checked before the "me"/"my" fallback; all checks are plain substring
// containment, matching how the pattern tables behave elsewhere.
func (p *Parser) detectAssignee(message string) string {
	for _, alias := range p.roster.PartnerAliases {
		if strings.Contains(message, alias) {
			return p.roster.Partner
		}
	}
	if strings.Contains(message, "me") || strings.Contains(message, "my") {
		return p.roster.Primary
	}
	return ""
}

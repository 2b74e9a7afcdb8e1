// Package parser turns free-form household messages ("Add eggs, milk, and
// bread to groceries", "Remind me about dentist tomorrow") into structured
// commands using layered keyword and regex heuristics. There is no grammar:
// action, category, dates, priority, recurrence, and assignee are each
// extracted independently from the lowercased message.
package parser

import (
	"strings"
	"time"
)

// Actions a message can classify to. Only add, complete, list, and delete are
// directly dispatchable; remind and schedule are treated as add at dispatch.
const (
	ActionAdd      = "add"
	ActionComplete = "complete"
	ActionDelete   = "delete"
	ActionList     = "list"
	ActionRemind   = "remind"
	ActionSchedule = "schedule"
)

// ParsedCommand is the structured intent extracted from one message. It is
// produced fresh per input and never mutated afterwards.
type ParsedCommand struct {
	Action     string    `json:"action"`
	Category   string    `json:"category"`
	Title      string    `json:"title"`
	Priority   string    `json:"priority"`
	DueDate    string    `json:"due_date,omitempty"` // YYYY-MM-DD
	DueTime    string    `json:"due_time,omitempty"` // HH:MM
	Recurrence string    `json:"recurrence,omitempty"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	RawMessage string    `json:"raw_message"`
	ParsedAt   time.Time `json:"parsed_at"`
}

// Roster names the people assignee detection can resolve to.
type Roster struct {
	Primary        string   // label returned for "me"/"my" mentions
	Partner        string   // label returned for any partner alias hit
	PartnerAliases []string // literal substrings that map to Partner
}

// DefaultRoster mirrors the household this was originally built for.
func DefaultRoster() Roster {
	return Roster{
		Primary:        "jesse",
		Partner:        "wife",
		PartnerAliases: []string{"wife", "sarah", "jessica", "kate", "lisa", "marie", "ann"},
	}
}

// Parser classifies messages against the static pattern tables. The zero
// value is not usable; construct with New.
type Parser struct {
	roster Roster
}

func New(roster Roster) *Parser {
	if roster.Primary == "" && roster.Partner == "" && len(roster.PartnerAliases) == 0 {
		roster = DefaultRoster()
	}
	return &Parser{roster: roster}
}

// Parse extracts a ParsedCommand from message. The reference time `now`
// anchors relative dates; parsing the same message with the same reference
// time always yields the same result.
func (p *Parser) Parse(message string, now time.Time) ParsedCommand {
	lower := strings.ToLower(message)

	date, clock := extractDates(lower, now)

	return ParsedCommand{
		Action:     detectAction(lower),
		Category:   detectCategory(lower),
		Title:      extractTitle(message),
		Priority:   detectPriority(lower),
		DueDate:    date,
		DueTime:    clock,
		Recurrence: detectRecurrence(lower),
		AssignedTo: p.detectAssignee(lower),
		RawMessage: message,
		ParsedAt:   now,
	}
}

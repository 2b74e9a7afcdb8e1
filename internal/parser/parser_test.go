package parser

import (
	"reflect"
	"testing"
	"time"
)

func TestParseGroceryMessage(t *testing.T) {
	p := New(DefaultRoster())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	got := p.Parse("Add eggs, milk, and bread to groceries", now)

	want := ParsedCommand{
		Action:     ActionAdd,
		Category:   "groceries",
		Title:      "eggs, milk, and bread to groceries",
		Priority:   "low",
		RawMessage: "Add eggs, milk, and bread to groceries",
		ParsedAt:   now,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseRemindMessage(t *testing.T) {
	p := New(DefaultRoster())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	got := p.Parse("Remind me to call the dentist tomorrow", now)

	if got.Action != ActionRemind {
		t.Errorf("Action = %q, want %q", got.Action, ActionRemind)
	}
	if got.Category != "appointments" {
		t.Errorf("Category = %q, want appointments", got.Category)
	}
	if got.Title != "call the dentist" {
		t.Errorf("Title = %q, want %q", got.Title, "call the dentist")
	}
	if got.DueDate != "2025-03-11" {
		t.Errorf("DueDate = %q, want 2025-03-11", got.DueDate)
	}
	if got.AssignedTo != "jesse" {
		t.Errorf("AssignedTo = %q, want jesse", got.AssignedTo)
	}
}

func TestParseScheduleMessage(t *testing.T) {
	p := New(DefaultRoster())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	got := p.Parse("Schedule oil change next week", now)

	if got.Action != ActionSchedule {
		t.Errorf("Action = %q, want %q", got.Action, ActionSchedule)
	}
	if got.DueDate != "2025-03-17" {
		t.Errorf("DueDate = %q, want 2025-03-17", got.DueDate)
	}
}

func TestParseUrgentRecurring(t *testing.T) {
	p := New(DefaultRoster())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	got := p.Parse("urgent: water the plants every day", now)

	if got.Priority != "high" {
		t.Errorf("Priority = %q, want high", got.Priority)
	}
	if got.Recurrence != "daily" {
		t.Errorf("Recurrence = %q, want daily", got.Recurrence)
	}
}

// Parsing is pure: the same message and reference time must produce
// identical output no matter how often it runs.
func TestParseDeterministic(t *testing.T) {
	p := New(DefaultRoster())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	msg := "Remind me to pay the water bill tomorrow at 9am"

	first := p.Parse(msg, now)
	for i := 0; i < 5; i++ {
		if got := p.Parse(msg, now); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

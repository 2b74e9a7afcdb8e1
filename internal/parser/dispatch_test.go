package parser

import (
	"testing"
	"time"

	"github.com/jhenrym/famlife/internal/storage"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, storage.Store) {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewDispatcher(New(DefaultRoster()), store, nil), store
}

func TestDispatchGroceryFanOut(t *testing.T) {
	d, store := newTestDispatcher(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, res, err := d.Process("Add eggs, milk, and bread to groceries", now)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != ResultAddedGroceries {
		t.Fatalf("Kind = %q, want %q", res.Kind, ResultAddedGroceries)
	}
	if len(res.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(res.Items))
	}

	want := []string{"eggs", "milk", "bread"}
	for i, item := range res.Items {
		if item.Item != want[i] {
			t.Errorf("item %d = %q, want %q", i, item.Item, want[i])
		}
		if item.Status != storage.GroceryNeeded {
			t.Errorf("item %d status = %q, want needed", i, item.Status)
		}
	}

	stored, err := store.ListGroceries(storage.GroceryNeeded)
	if err != nil {
		t.Fatalf("ListGroceries: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("stored %d items, want 3", len(stored))
	}
}

func TestDispatchAddTask(t *testing.T) {
	d, _ := newTestDispatcher(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, res, err := d.Process("Remind me to call the dentist tomorrow", now)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != ResultAddedTask {
		t.Fatalf("Kind = %q, want %q", res.Kind, ResultAddedTask)
	}
	if res.Task == nil {
		t.Fatal("Task is nil")
	}
	if res.Task.Title != "call the dentist" {
		t.Errorf("Title = %q", res.Task.Title)
	}
	if res.Task.DueDate != "2025-03-11" {
		t.Errorf("DueDate = %q, want 2025-03-11", res.Task.DueDate)
	}
	if res.Task.Status != storage.TaskActive {
		t.Errorf("Status = %q, want active", res.Task.Status)
	}
}

func TestDispatchComplete(t *testing.T) {
	d, store := newTestDispatcher(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	created, err := store.CreateTask(storage.Task{Category: "home", Title: "laundry", Priority: "low"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	// The parsed title "finished the laundry" contains the stored "laundry",
	// so the containment policy finds it.
	_, res, err := d.Process("finished the laundry", now)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != ResultCompletedTask {
		t.Fatalf("Kind = %q, want %q", res.Kind, ResultCompletedTask)
	}
	if res.Task.ID != created.ID {
		t.Errorf("completed ID = %q, want %q", res.Task.ID, created.ID)
	}
	if res.Task.Status != storage.TaskCompleted {
		t.Errorf("Status = %q, want completed", res.Task.Status)
	}
	if res.Task.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
}

func TestDispatchCompleteNoMatch(t *testing.T) {
	d, _ := newTestDispatcher(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, res, err := d.Process("finished the laundry", now)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != ResultNoMatch {
		t.Errorf("Kind = %q, want %q", res.Kind, ResultNoMatch)
	}
}

func TestDispatchDelete(t *testing.T) {
	d, store := newTestDispatcher(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	created, err := store.CreateTask(storage.Task{Category: "home", Title: "paint the fence", Priority: "low"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, res, err := d.Process("cancel paint the fence", now)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != ResultDeletedTask {
		t.Fatalf("Kind = %q, want %q", res.Kind, ResultDeletedTask)
	}
	if res.Task.ID != created.ID {
		t.Errorf("deleted ID = %q, want %q", res.Task.ID, created.ID)
	}

	// The row survives as completed rather than being removed.
	got, err := store.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Status != storage.TaskCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
}

func TestDispatchListGroceries(t *testing.T) {
	d, store := newTestDispatcher(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if _, err := store.CreateGrocery("milk", "groceries", ""); err != nil {
		t.Fatalf("CreateGrocery: %v", err)
	}

	_, res, err := d.Process("show the grocery list", now)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != ResultListGroceries {
		t.Fatalf("Kind = %q, want %q", res.Kind, ResultListGroceries)
	}
	if len(res.Items) != 1 || res.Items[0].Item != "milk" {
		t.Errorf("Items = %+v", res.Items)
	}
}

func TestContainsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"milk", "Buy milk", true},
		{"Buy milk", "milk", true},
		{"laundry", "laundry", true},
		{"milk", "eggs", false},
	}
	for _, tt := range tests {
		if got := ContainsMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("ContainsMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

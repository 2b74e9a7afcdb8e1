package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsApplied(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 {
		t.Fatal("no migrations applied")
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("versions not ascending: %v", versions)
		}
	}

	// Running migrate again must be a no-op.
	before := len(versions)
	if err := s.migrate(); err != nil {
		t.Fatalf("re-running migrate: %v", err)
	}
	after, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(after) != before {
		t.Errorf("migration count changed from %d to %d", before, len(after))
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := openTestStore(t)

	created, err := s.CreateTask(Task{
		Category:   "home",
		Title:      "fix the gate",
		Priority:   "high",
		DueDate:    "2025-03-15",
		AssignedTo: "jesse",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == "" {
		t.Fatal("no ID assigned")
	}
	if created.Status != TaskActive {
		t.Errorf("Status = %q, want active", created.Status)
	}

	got, err := s.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "fix the gate" || got.Priority != "high" || got.DueDate != "2025-03-15" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CompletedAt.IsZero() {
		t.Errorf("CompletedAt = %v, want zero", got.CompletedAt)
	}

	completed, err := s.CompleteTask(created.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if completed.Status != TaskCompleted {
		t.Errorf("Status = %q, want completed", completed.Status)
	}
	if completed.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}

	active, err := s.ListTasks(TaskFilter{Status: TaskActive})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("got %d active tasks, want 0", len(active))
	}
}

func TestTaskFilters(t *testing.T) {
	s := openTestStore(t)

	mustCreateTask(t, s, Task{Category: "home", Title: "mow lawn", AssignedTo: "jesse"})
	mustCreateTask(t, s, Task{Category: "home", Title: "clean gutters", AssignedTo: "wife"})
	mustCreateTask(t, s, Task{Category: "automotive", Title: "oil change", AssignedTo: "jesse"})

	byCategory, err := s.ListTasks(TaskFilter{Category: "home"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("category filter: got %d, want 2", len(byCategory))
	}

	byAssignee, err := s.ListTasks(TaskFilter{AssignedTo: "jesse"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(byAssignee) != 2 {
		t.Errorf("assignee filter: got %d, want 2", len(byAssignee))
	}

	both, err := s.ListTasks(TaskFilter{Category: "home", AssignedTo: "jesse"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(both) != 1 || both[0].Title != "mow lawn" {
		t.Errorf("combined filter: %+v", both)
	}
}

func TestTaskNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetTask("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask err = %v, want ErrNotFound", err)
	}
	if _, err := s.CompleteTask("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CompleteTask err = %v, want ErrNotFound", err)
	}
}

func TestGroceryLifecycle(t *testing.T) {
	s := openTestStore(t)

	g, err := s.CreateGrocery("milk", "groceries", "")
	if err != nil {
		t.Fatalf("CreateGrocery: %v", err)
	}
	if g.Quantity != "1" {
		t.Errorf("Quantity = %q, want default 1", g.Quantity)
	}
	if g.Status != GroceryNeeded {
		t.Errorf("Status = %q, want needed", g.Status)
	}

	purchased, err := s.PurchaseGrocery(g.ID)
	if err != nil {
		t.Fatalf("PurchaseGrocery: %v", err)
	}
	if purchased.Status != GroceryPurchased {
		t.Errorf("Status = %q, want purchased", purchased.Status)
	}
	if purchased.PurchasedAt.IsZero() {
		t.Error("PurchasedAt not set")
	}

	needed, err := s.ListGroceries(GroceryNeeded)
	if err != nil {
		t.Fatalf("ListGroceries: %v", err)
	}
	if len(needed) != 0 {
		t.Errorf("got %d needed items, want 0", len(needed))
	}

	if _, err := s.PurchaseGrocery("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("PurchaseGrocery err = %v, want ErrNotFound", err)
	}
}

func TestAppointments(t *testing.T) {
	s := openTestStore(t)

	a, err := s.CreateAppointment(Appointment{
		Title:      "dentist",
		Date:       "2025-03-20",
		Time:       "14:00",
		PersonTags: "jesse,liam",
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if a.Category != "appointments" {
		t.Errorf("Category = %q, want default appointments", a.Category)
	}

	if _, err := s.CreateAppointment(Appointment{Title: "checkup", Date: "2025-04-02"}); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	march, err := s.ListAppointmentsByMonth(2025, 3)
	if err != nil {
		t.Fatalf("ListAppointmentsByMonth: %v", err)
	}
	if len(march) != 1 || march[0].Title != "dentist" {
		t.Errorf("march = %+v", march)
	}

	byPerson, err := s.ListAppointments(AppointmentFilter{Person: "liam"})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(byPerson) != 1 {
		t.Errorf("person filter: got %d, want 1", len(byPerson))
	}

	if err := s.DeleteAppointment(a.ID); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if err := s.DeleteAppointment(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestReceiptsAndBudget(t *testing.T) {
	s := openTestStore(t)

	receipts := []Receipt{
		{Amount: 54.20, Merchant: "Walmart", Date: "2025-03-02", Category: "Groceries", AddedBy: "email"},
		{Amount: 18.75, Merchant: "Starbucks", Date: "2025-03-05", Category: "Dining Out", AddedBy: "email"},
		{Amount: 32.00, Merchant: "Loblaws", Date: "2025-03-12", Category: "Groceries", AddedBy: "email"},
		{Amount: 99.99, Merchant: "Shell", Date: "2025-04-01", Category: "Gas/Transport", AddedBy: "email"},
	}
	for _, r := range receipts {
		if _, err := s.CreateReceipt(r); err != nil {
			t.Fatalf("CreateReceipt: %v", err)
		}
	}

	march, err := s.ListReceipts(ReceiptFilter{Month: "2025-03"})
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(march) != 3 {
		t.Errorf("march receipts: got %d, want 3", len(march))
	}

	spend, err := s.BudgetSummary("2025-03")
	if err != nil {
		t.Fatalf("BudgetSummary: %v", err)
	}
	if len(spend) != 2 {
		t.Fatalf("spend rows: got %d, want 2", len(spend))
	}
	// Ordered by category: Dining Out before Groceries.
	if spend[0].Category != "Dining Out" || spend[0].Count != 1 {
		t.Errorf("spend[0] = %+v", spend[0])
	}
	if spend[1].Category != "Groceries" || spend[1].Count != 2 {
		t.Errorf("spend[1] = %+v", spend[1])
	}
	if diff := spend[1].Spent - 86.20; diff > 0.001 || diff < -0.001 {
		t.Errorf("groceries total = %v, want 86.20", spend[1].Spent)
	}
}

func TestDailySummary(t *testing.T) {
	s := openTestStore(t)
	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	mustCreateTask(t, s, Task{Category: "home", Title: "due today", DueDate: today})
	mustCreateTask(t, s, Task{Category: "home", Title: "overdue", DueDate: yesterday})
	mustCreateTask(t, s, Task{Category: "home", Title: "no due date"})
	if _, err := s.CreateGrocery("milk", "groceries", ""); err != nil {
		t.Fatalf("CreateGrocery: %v", err)
	}
	if _, err := s.CreateAppointment(Appointment{Title: "checkup", Date: today}); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	sum, err := s.DailySummary()
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if sum.TasksToday != 1 {
		t.Errorf("TasksToday = %d, want 1", sum.TasksToday)
	}
	if sum.OverdueTasks != 1 {
		t.Errorf("OverdueTasks = %d, want 1", sum.OverdueTasks)
	}
	if sum.GroceriesNeeded != 1 {
		t.Errorf("GroceriesNeeded = %d, want 1", sum.GroceriesNeeded)
	}
	if sum.AppointmentsToday != 1 {
		t.Errorf("AppointmentsToday = %d, want 1", sum.AppointmentsToday)
	}
}

func TestLogMessage(t *testing.T) {
	s := openTestStore(t)
	if err := s.LogMessage("add milk", "groceries", "add"); err != nil {
		t.Fatalf("LogMessage: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM message_log").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("message_log rows = %d, want 1", count)
	}
}

func mustCreateTask(t *testing.T, s *SQLiteStore, task Task) Task {
	t.Helper()
	created, err := s.CreateTask(task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return created
}

package storage

// Store is the persistence contract shared by every surface (CLI, web,
// email scraper, bot, MCP). Identifiers are assigned by the implementation
// at creation time and never change afterwards.
type Store interface {
	// Tasks. Tasks are never deleted; completion is a status transition.
	CreateTask(t Task) (Task, error)
	GetTask(id string) (Task, error)
	ListTasks(f TaskFilter) ([]Task, error)
	CompleteTask(id string) (Task, error)

	// Groceries.
	CreateGrocery(item, category, quantity string) (GroceryItem, error)
	ListGroceries(status string) ([]GroceryItem, error)
	PurchaseGrocery(id string) (GroceryItem, error)

	// Appointments. Unlike tasks these support hard delete.
	CreateAppointment(a Appointment) (Appointment, error)
	ListAppointments(f AppointmentFilter) ([]Appointment, error)
	ListAppointmentsByMonth(year, month int) ([]Appointment, error)
	DeleteAppointment(id string) error

	// Receipts (email scraper and dashboard spending card).
	CreateReceipt(r Receipt) (Receipt, error)
	ListReceipts(f ReceiptFilter) ([]Receipt, error)
	BudgetSummary(month string) ([]CategorySpend, error)

	// Message log: one row per parsed inbound message.
	LogMessage(raw, category, action string) error

	DailySummary() (Summary, error)

	Close() error
}

package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Task statuses.
const (
	TaskActive    = "active"
	TaskCompleted = "completed"
)

// Grocery statuses.
const (
	GroceryNeeded    = "needed"
	GroceryPurchased = "purchased"
)

type Task struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"due_date,omitempty"` // YYYY-MM-DD
	DueTime     string    `json:"due_time,omitempty"` // HH:MM
	AssignedTo  string    `json:"assigned_to,omitempty"`
	Recurrence  string    `json:"recurrence,omitempty"`
	Tags        string    `json:"tags,omitempty"` // comma-separated
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

type GroceryItem struct {
	ID          string    `json:"id"`
	Item        string    `json:"item"`
	Category    string    `json:"category,omitempty"`
	Quantity    string    `json:"quantity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	PurchasedAt time.Time `json:"purchased_at,omitzero"`
}

type Appointment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"appointment_date"` // YYYY-MM-DD
	Time        string    `json:"appointment_time,omitempty"`
	Location    string    `json:"location,omitempty"`
	PersonTags  string    `json:"person_tags,omitempty"` // comma-separated
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

type Receipt struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Merchant      string    `json:"merchant"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Category      string    `json:"category"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ProcessedBy   string    `json:"processed_by"`
	EmailID       string    `json:"email_id,omitempty"`
	AddedBy       string    `json:"added_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summary holds the counters shown on the dashboard and by the CLI --summary flag.
type Summary struct {
	TasksToday        int `json:"tasks_today"`
	AppointmentsToday int `json:"appointments_today"`
	GroceriesNeeded   int `json:"groceries_needed"`
	OverdueTasks      int `json:"overdue_tasks"`
}

// CategorySpend is one row of the monthly spending summary.
type CategorySpend struct {
	Category string  `json:"category"`
	Spent    float64 `json:"spent"`
	Count    int     `json:"count"`
}

type TaskFilter struct {
	Category   string
	Status     string
	AssignedTo string
}

type AppointmentFilter struct {
	DateFrom string
	DateTo   string
	Person   string
}

type ReceiptFilter struct {
	Month    string // YYYY-MM
	Category string
}

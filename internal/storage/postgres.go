package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore implements Store on top of PostgreSQL. It is the backend for
// shared deployments; single-host installs use SQLiteStore.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects using a lib/pq DSN and bootstraps the schema.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// --- Tasks ---

func (s *PostgresStore) CreateTask(t Task) (Task, error) {
	t.ID = uuid.New().String()
	if t.Priority == "" {
		t.Priority = "medium"
	}
	t.Status = TaskActive
	t.CreatedAt = time.Now().UTC()
	t.CompletedAt = time.Time{}

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, category, title, description, priority, due_date, due_time, assigned_to, recurrence, tags, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL)`,
		t.ID, t.Category, t.Title, t.Description, t.Priority, t.DueDate, t.DueTime,
		t.AssignedTo, t.Recurrence, t.Tags, t.Status, t.CreatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *PostgresStore) GetTask(id string) (Task, error) {
	row := s.db.QueryRow(`
		SELECT id, category, title, description, priority, due_date, due_time, assigned_to, recurrence, tags, status, created_at, completed_at
		FROM tasks WHERE id = $1`, id)
	t, err := scanTaskPG(row)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *PostgresStore) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT id, category, title, description, priority, due_date, due_time, assigned_to, recurrence, tags, status, created_at, completed_at
		FROM tasks WHERE 1=1`
	var args []any

	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.AssignedTo != "" {
		args = append(args, f.AssignedTo)
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTaskPG(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) CompleteTask(id string) (Task, error) {
	res, err := s.db.Exec(`UPDATE tasks SET status = $1, completed_at = $2 WHERE id = $3`,
		TaskCompleted, time.Now().UTC(), id)
	if err != nil {
		return Task{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Task{}, err
	}
	if n == 0 {
		return Task{}, ErrNotFound
	}
	return s.GetTask(id)
}

// --- Groceries ---

func (s *PostgresStore) CreateGrocery(item, category, quantity string) (GroceryItem, error) {
	if quantity == "" {
		quantity = "1"
	}
	g := GroceryItem{
		ID:        uuid.New().String(),
		Item:      item,
		Category:  category,
		Quantity:  quantity,
		Status:    GroceryNeeded,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO groceries (id, item, category, quantity, status, created_at, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)`,
		g.ID, g.Item, g.Category, g.Quantity, g.Status, g.CreatedAt,
	)
	if err != nil {
		return GroceryItem{}, err
	}
	return g, nil
}

func (s *PostgresStore) ListGroceries(status string) ([]GroceryItem, error) {
	rows, err := s.db.Query(`
		SELECT id, item, category, quantity, status, created_at, purchased_at
		FROM groceries WHERE status = $1 ORDER BY category, item`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GroceryItem
	for rows.Next() {
		var g GroceryItem
		var purchasedAt sql.NullTime
		if err := rows.Scan(&g.ID, &g.Item, &g.Category, &g.Quantity, &g.Status, &g.CreatedAt, &purchasedAt); err != nil {
			return nil, err
		}
		if purchasedAt.Valid {
			g.PurchasedAt = purchasedAt.Time
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (s *PostgresStore) PurchaseGrocery(id string) (GroceryItem, error) {
	res, err := s.db.Exec(`UPDATE groceries SET status = $1, purchased_at = $2 WHERE id = $3`,
		GroceryPurchased, time.Now().UTC(), id)
	if err != nil {
		return GroceryItem{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return GroceryItem{}, err
	}
	if n == 0 {
		return GroceryItem{}, ErrNotFound
	}

	var g GroceryItem
	var purchasedAt sql.NullTime
	err = s.db.QueryRow(`SELECT id, item, category, quantity, status, created_at, purchased_at FROM groceries WHERE id = $1`, id).
		Scan(&g.ID, &g.Item, &g.Category, &g.Quantity, &g.Status, &g.CreatedAt, &purchasedAt)
	if err != nil {
		return GroceryItem{}, err
	}
	if purchasedAt.Valid {
		g.PurchasedAt = purchasedAt.Time
	}
	return g, nil
}

// --- Appointments ---

func (s *PostgresStore) CreateAppointment(a Appointment) (Appointment, error) {
	a.ID = uuid.New().String()
	if a.Category == "" {
		a.Category = "appointments"
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO appointments (id, title, description, appointment_date, appointment_time, location, person_tags, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Title, a.Description, a.Date, a.Time, a.Location, a.PersonTags, a.Category, a.CreatedAt,
	)
	if err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *PostgresStore) ListAppointments(f AppointmentFilter) ([]Appointment, error) {
	query := `SELECT id, title, description, appointment_date, appointment_time, location, person_tags, category, created_at
		FROM appointments WHERE 1=1`
	var args []any

	if f.DateFrom != "" {
		args = append(args, f.DateFrom)
		query += fmt.Sprintf(" AND appointment_date >= $%d", len(args))
	}
	if f.DateTo != "" {
		args = append(args, f.DateTo)
		query += fmt.Sprintf(" AND appointment_date <= $%d", len(args))
	}
	if f.Person != "" {
		args = append(args, "%"+f.Person+"%")
		query += fmt.Sprintf(" AND person_tags LIKE $%d", len(args))
	}
	query += " ORDER BY appointment_date, appointment_time"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Date, &a.Time, &a.Location, &a.PersonTags, &a.Category, &a.CreatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (s *PostgresStore) ListAppointmentsByMonth(year, month int) ([]Appointment, error) {
	return s.ListAppointments(AppointmentFilter{
		DateFrom: monthStart(year, month),
		DateTo:   monthEnd(year, month),
	})
}

func (s *PostgresStore) DeleteAppointment(id string) error {
	res, err := s.db.Exec(`DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Receipts ---

func (s *PostgresStore) CreateReceipt(r Receipt) (Receipt, error) {
	r.ID = uuid.New().String()
	if r.Category == "" {
		r.Category = "Other"
	}
	if r.ProcessedBy == "" {
		r.ProcessedBy = "manual"
	}
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO receipts (id, amount, merchant, date, category, payment_method, notes, processed_by, email_id, added_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.Amount, r.Merchant, r.Date, r.Category, r.PaymentMethod, r.Notes,
		r.ProcessedBy, r.EmailID, r.AddedBy, r.CreatedAt,
	)
	if err != nil {
		return Receipt{}, err
	}
	return r, nil
}

func (s *PostgresStore) ListReceipts(f ReceiptFilter) ([]Receipt, error) {
	query := `SELECT id, amount, merchant, date, category, payment_method, notes, processed_by, email_id, added_by, created_at
		FROM receipts WHERE 1=1`
	var args []any

	if f.Month != "" {
		args = append(args, f.Month)
		query += fmt.Sprintf(" AND substr(date, 1, 7) = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		var r Receipt
		if err := rows.Scan(&r.ID, &r.Amount, &r.Merchant, &r.Date, &r.Category, &r.PaymentMethod, &r.Notes, &r.ProcessedBy, &r.EmailID, &r.AddedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func (s *PostgresStore) BudgetSummary(month string) ([]CategorySpend, error) {
	rows, err := s.db.Query(`
		SELECT category, COALESCE(SUM(amount), 0), COUNT(*)
		FROM receipts WHERE substr(date, 1, 7) = $1
		GROUP BY category ORDER BY category`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spend []CategorySpend
	for rows.Next() {
		var c CategorySpend
		if err := rows.Scan(&c.Category, &c.Spent, &c.Count); err != nil {
			return nil, err
		}
		spend = append(spend, c)
	}
	return spend, rows.Err()
}

// --- Message log ---

func (s *PostgresStore) LogMessage(raw, category, action string) error {
	_, err := s.db.Exec(`
		INSERT INTO message_log (id, raw_message, parsed_category, parsed_action, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), raw, category, action, time.Now().UTC(),
	)
	return err
}

// --- Daily summary ---

func (s *PostgresStore) DailySummary() (Summary, error) {
	today := time.Now().UTC().Format("2006-01-02")

	var sum Summary
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM tasks WHERE status = 'active' AND due_date = $1),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = $1),
			(SELECT COUNT(*) FROM groceries WHERE status = 'needed'),
			(SELECT COUNT(*) FROM tasks WHERE status = 'active' AND due_date != '' AND due_date < $1)`,
		today,
	).Scan(&sum.TasksToday, &sum.AppointmentsToday, &sum.GroceriesNeeded, &sum.OverdueTasks)
	return sum, err
}

func scanTaskPG(row rowScanner) (Task, error) {
	var t Task
	var completedAt sql.NullTime
	err := row.Scan(&t.ID, &t.Category, &t.Title, &t.Description, &t.Priority, &t.DueDate,
		&t.DueTime, &t.AssignedTo, &t.Recurrence, &t.Tags, &t.Status, &t.CreatedAt, &completedAt)
	if err != nil {
		return Task{}, err
	}
	if completedAt.Valid {
		t.CompletedAt = completedAt.Time
	}
	return t, nil
}

package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on top of a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by tests).
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "famlife.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *SQLiteStore) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Tasks ---

func (s *SQLiteStore) CreateTask(t Task) (Task, error) {
	t.ID = uuid.New().String()
	if t.Priority == "" {
		t.Priority = "medium"
	}
	t.Status = TaskActive
	t.CreatedAt = time.Now().UTC()
	t.CompletedAt = time.Time{}

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, category, title, description, priority, due_date, due_time, assigned_to, recurrence, tags, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		t.ID, t.Category, t.Title, t.Description, t.Priority, t.DueDate, t.DueTime,
		t.AssignedTo, t.Recurrence, t.Tags, t.Status, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *SQLiteStore) GetTask(id string) (Task, error) {
	row := s.db.QueryRow(`
		SELECT id, category, title, description, priority, due_date, due_time, assigned_to, recurrence, tags, status, created_at, completed_at
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT id, category, title, description, priority, due_date, due_time, assigned_to, recurrence, tags, status, created_at, completed_at
		FROM tasks WHERE 1=1`
	var args []any

	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.AssignedTo != "" {
		query += " AND assigned_to = ?"
		args = append(args, f.AssignedTo)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) CompleteTask(id string) (Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`,
		TaskCompleted, now, id)
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

func (s *SQLiteStore) CreateGrocery(item, category, quantity string) (GroceryItem, error) {
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
		VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		g.ID, g.Item, g.Category, g.Quantity, g.Status, g.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return GroceryItem{}, err
	}
	return g, nil
}

func (s *SQLiteStore) ListGroceries(status string) ([]GroceryItem, error) {
	rows, err := s.db.Query(`
		SELECT id, item, category, quantity, status, created_at, purchased_at
		FROM groceries WHERE status = ? ORDER BY category, item`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GroceryItem
	for rows.Next() {
		var g GroceryItem
		var createdAt string
		var purchasedAt sql.NullString
		if err := rows.Scan(&g.ID, &g.Item, &g.Category, &g.Quantity, &g.Status, &createdAt, &purchasedAt); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if purchasedAt.Valid {
			if g.PurchasedAt, err = time.Parse(time.RFC3339, purchasedAt.String); err != nil {
				return nil, fmt.Errorf("parsing purchased_at: %w", err)
			}
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) PurchaseGrocery(id string) (GroceryItem, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE groceries SET status = ?, purchased_at = ? WHERE id = ?`,
		GroceryPurchased, now.Format(time.RFC3339), id)
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
	var createdAt string
	var purchasedAt sql.NullString
	err = s.db.QueryRow(`SELECT id, item, category, quantity, status, created_at, purchased_at FROM groceries WHERE id = ?`, id).
		Scan(&g.ID, &g.Item, &g.Category, &g.Quantity, &g.Status, &createdAt, &purchasedAt)
	if err != nil {
		return GroceryItem{}, err
	}
	if g.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return GroceryItem{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if purchasedAt.Valid {
		if g.PurchasedAt, err = time.Parse(time.RFC3339, purchasedAt.String); err != nil {
			return GroceryItem{}, fmt.Errorf("parsing purchased_at: %w", err)
		}
	}
	return g, nil
}

// --- Appointments ---

func (s *SQLiteStore) CreateAppointment(a Appointment) (Appointment, error) {
	a.ID = uuid.New().String()
	if a.Category == "" {
		a.Category = "appointments"
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO appointments (id, title, description, appointment_date, appointment_time, location, person_tags, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Description, a.Date, a.Time, a.Location, a.PersonTags, a.Category,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *SQLiteStore) ListAppointments(f AppointmentFilter) ([]Appointment, error) {
	query := `SELECT id, title, description, appointment_date, appointment_time, location, person_tags, category, created_at
		FROM appointments WHERE 1=1`
	var args []any

	if f.DateFrom != "" {
		query += " AND appointment_date >= ?"
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		query += " AND appointment_date <= ?"
		args = append(args, f.DateTo)
	}
	if f.Person != "" {
		query += " AND person_tags LIKE ?"
		args = append(args, "%"+f.Person+"%")
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
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Date, &a.Time, &a.Location, &a.PersonTags, &a.Category, &createdAt); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (s *SQLiteStore) ListAppointmentsByMonth(year, month int) ([]Appointment, error) {
	return s.ListAppointments(AppointmentFilter{
		DateFrom: monthStart(year, month),
		DateTo:   monthEnd(year, month),
	})
}

func (s *SQLiteStore) DeleteAppointment(id string) error {
	res, err := s.db.Exec(`DELETE FROM appointments WHERE id = ?`, id)
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

func (s *SQLiteStore) CreateReceipt(r Receipt) (Receipt, error) {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Amount, r.Merchant, r.Date, r.Category, r.PaymentMethod, r.Notes,
		r.ProcessedBy, r.EmailID, r.AddedBy, r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Receipt{}, err
	}
	return r, nil
}

func (s *SQLiteStore) ListReceipts(f ReceiptFilter) ([]Receipt, error) {
	query := `SELECT id, amount, merchant, date, category, payment_method, notes, processed_by, email_id, added_by, created_at
		FROM receipts WHERE 1=1`
	var args []any

	if f.Month != "" {
		query += " AND substr(date, 1, 7) = ?"
		args = append(args, f.Month)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
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
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Amount, &r.Merchant, &r.Date, &r.Category, &r.PaymentMethod, &r.Notes, &r.ProcessedBy, &r.EmailID, &r.AddedBy, &createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func (s *SQLiteStore) BudgetSummary(month string) ([]CategorySpend, error) {
	rows, err := s.db.Query(`
		SELECT category, COALESCE(SUM(amount), 0), COUNT(*)
		FROM receipts WHERE substr(date, 1, 7) = ?
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

func (s *SQLiteStore) LogMessage(raw, category, action string) error {
	_, err := s.db.Exec(`
		INSERT INTO message_log (id, raw_message, parsed_category, parsed_action, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), raw, category, action, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// --- Daily summary ---

func (s *SQLiteStore) DailySummary() (Summary, error) {
	today := time.Now().UTC().Format("2006-01-02")

	var sum Summary
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM tasks WHERE status = 'active' AND due_date = ?),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = ?),
			(SELECT COUNT(*) FROM groceries WHERE status = 'needed'),
			(SELECT COUNT(*) FROM tasks WHERE status = 'active' AND due_date != '' AND due_date < ?)`,
		today, today, today,
	).Scan(&sum.TasksToday, &sum.AppointmentsToday, &sum.GroceriesNeeded, &sum.OverdueTasks)
	return sum, err
}

// --- Helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var createdAt string
	var completedAt sql.NullString
	err := row.Scan(&t.ID, &t.Category, &t.Title, &t.Description, &t.Priority, &t.DueDate,
		&t.DueTime, &t.AssignedTo, &t.Recurrence, &t.Tags, &t.Status, &createdAt, &completedAt)
	if err != nil {
		return Task{}, err
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Task{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if completedAt.Valid {
		if t.CompletedAt, err = time.Parse(time.RFC3339, completedAt.String); err != nil {
			return Task{}, fmt.Errorf("parsing completed_at: %w", err)
		}
	}
	return t, nil
}

func monthStart(year, month int) string {
	return fmt.Sprintf("%04d-%02d-01", year, month)
}

func monthEnd(year, month int) string {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Format("2006-01-02")
}

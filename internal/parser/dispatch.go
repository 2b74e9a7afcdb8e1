package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhenrym/famlife/internal/storage"
)

// Result kinds reported by Dispatch.
const (
	ResultAddedTask      = "added_task"
	ResultAddedGroceries = "added_groceries"
	ResultCompletedTask  = "completed_task"
	ResultDeletedTask    = "deleted_task"
	ResultListGroceries  = "list_groceries"
	ResultListTasks      = "list_tasks"
	ResultNoMatch        = "no_match_found"
)

// Result is the structured outcome of dispatching one command. A no-match is
// a result, not an error; only storage failures surface as errors.
type Result struct {
	Kind     string                `json:"action"`
	Task     *storage.Task         `json:"task,omitempty"`
	Items    []storage.GroceryItem `json:"items,omitempty"`
	Tasks    []storage.Task        `json:"tasks,omitempty"`
	Category string                `json:"category,omitempty"`
	Title    string                `json:"title,omitempty"`
}

// MatchFunc decides whether a parsed title refers to a stored task title.
// It is a swappable policy: callers that know an exact ID should use the
// storage API directly, this is the best-effort text path.
type MatchFunc func(parsedTitle, taskTitle string) bool

// ContainsMatch is the default policy: case-insensitive bidirectional
// substring containment. "milk" matches a stored "Buy milk" and vice versa.
// With several similarly named tasks the first listed one wins.
func ContainsMatch(parsedTitle, taskTitle string) bool {
	a := strings.ToLower(parsedTitle)
	b := strings.ToLower(taskTitle)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Dispatcher routes parsed commands to storage operations. Each call is
// stateless and independent.
type Dispatcher struct {
	parser *Parser
	store  storage.Store
	match  MatchFunc
}

// NewDispatcher wires a parser to a store. A nil match falls back to
// ContainsMatch.
func NewDispatcher(p *Parser, store storage.Store, match MatchFunc) *Dispatcher {
	if match == nil {
		match = ContainsMatch
	}
	return &Dispatcher{parser: p, store: store, match: match}
}

// Process parses a message, records it in the message log, and dispatches it.
func (d *Dispatcher) Process(message string, now time.Time) (ParsedCommand, Result, error) {
	cmd := d.parser.Parse(message, now)

	if err := d.store.LogMessage(cmd.RawMessage, cmd.Category, cmd.Action); err != nil {
		return cmd, Result{}, fmt.Errorf("logging message: %w", err)
	}

	res, err := d.Dispatch(cmd)
	return cmd, res, err
}

// Dispatch executes one parsed command. Remind and schedule behave as add:
// they carry no dispatch semantics of their own, and folding them keeps
// "Remind me about dentist tomorrow" from dead-ending.
func (d *Dispatcher) Dispatch(cmd ParsedCommand) (Result, error) {
	action := cmd.Action
	if action == ActionRemind || action == ActionSchedule {
		action = ActionAdd
	}

	switch action {
	case ActionAdd:
		return d.handleAdd(cmd)
	case ActionComplete:
		return d.handleComplete(cmd)
	case ActionList:
		return d.handleList(cmd)
	case ActionDelete:
		return d.handleDelete(cmd)
	default:
		return Result{}, fmt.Errorf("unknown action %q", cmd.Action)
	}
}

func (d *Dispatcher) handleAdd(cmd ParsedCommand) (Result, error) {
	if cmd.Category == "groceries" {
		added := make([]storage.GroceryItem, 0)
		for _, item := range splitGroceryItems(cmd.Title) {
			g, err := d.store.CreateGrocery(item, cmd.Category, "")
			if err != nil {
				return Result{}, err
			}
			added = append(added, g)
		}
		return Result{Kind: ResultAddedGroceries, Items: added}, nil
	}

	task, err := d.store.CreateTask(storage.Task{
		Category:   cmd.Category,
		Title:      cmd.Title,
		Priority:   cmd.Priority,
		DueDate:    cmd.DueDate,
		DueTime:    cmd.DueTime,
		AssignedTo: cmd.AssignedTo,
		Recurrence: cmd.Recurrence,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultAddedTask, Task: &task}, nil
}

func (d *Dispatcher) handleComplete(cmd ParsedCommand) (Result, error) {
	task, found, err := d.findMatch(cmd.Title)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Kind: ResultNoMatch, Title: cmd.Title}, nil
	}

	completed, err := d.store.CompleteTask(task.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultCompletedTask, Task: &completed}, nil
}

func (d *Dispatcher) handleList(cmd ParsedCommand) (Result, error) {
	if cmd.Category == "groceries" {
		items, err := d.store.ListGroceries(storage.GroceryNeeded)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultListGroceries, Items: items}, nil
	}

	tasks, err := d.store.ListTasks(storage.TaskFilter{
		Category: cmd.Category,
		Status:   storage.TaskActive,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultListTasks, Category: cmd.Category, Tasks: tasks}, nil
}

// handleDelete reuses the completion mutation instead of removing the row.
// Known shortcut carried over from the original behavior; the response kind
// still reports a deletion.
func (d *Dispatcher) handleDelete(cmd ParsedCommand) (Result, error) {
	task, found, err := d.findMatch(cmd.Title)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Kind: ResultNoMatch, Title: cmd.Title}, nil
	}

	if _, err := d.store.CompleteTask(task.ID); err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultDeletedTask, Task: &task}, nil
}

// findMatch scans active tasks for the first title the match policy accepts.
func (d *Dispatcher) findMatch(title string) (storage.Task, bool, error) {
	tasks, err := d.store.ListTasks(storage.TaskFilter{Status: storage.TaskActive})
	if err != nil {
		return storage.Task{}, false, err
	}
	for _, t := range tasks {
		if d.match(title, t.Title) {
			return t, true, nil
		}
	}
	return storage.Task{}, false, nil
}

package web

import (
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jhenrym/famlife/internal/storage"
)

type taskGroup struct {
	Category string
	Tasks    []storage.Task
}

type dashboardData struct {
	Name       string
	Summary    storage.Summary
	Groceries  []storage.GroceryItem
	TaskGroups []taskGroup
	Spend      []storage.CategorySpend
	Month      string
}

// handleDashboard renders the server-side dashboard. Reads are independent
// and issued concurrently, same as the /api/data aggregation.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	month := time.Now().UTC().Format("2006-01")

	var (
		summary   storage.Summary
		groceries []storage.GroceryItem
		tasks     []storage.Task
		spend     []storage.CategorySpend
	)

	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary, err = s.store.DailySummary()
		return err
	})
	g.Go(func() error {
		var err error
		groceries, err = s.store.ListGroceries(storage.GroceryNeeded)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.store.ListTasks(storage.TaskFilter{Status: storage.TaskActive})
		return err
	})
	g.Go(func() error {
		var err error
		spend, err = s.store.BudgetSummary(month)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("loading dashboard", zap.Error(err))
		http.Error(w, "Error loading dashboard", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		Name:       sess.Name,
		Summary:    summary,
		Groceries:  groceries,
		TaskGroups: groupTasks(tasks),
		Spend:      spend,
		Month:      month,
	}
	if err := s.tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.Error("rendering dashboard", zap.Error(err))
	}
}

func groupTasks(tasks []storage.Task) []taskGroup {
	byCategory := make(map[string][]storage.Task)
	for _, t := range tasks {
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	groups := make([]taskGroup, 0, len(categories))
	for _, c := range categories {
		groups = append(groups, taskGroup{Category: c, Tasks: byCategory[c]})
	}
	return groups
}

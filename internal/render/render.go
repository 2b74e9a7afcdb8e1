// Package render formats dispatch results and summaries as the
// emoji-prefixed text shown by the CLI and the Telegram bot.
package render

import (
	"fmt"
	"strings"

	"github.com/jhenrym/famlife/internal/parser"
	"github.com/jhenrym/famlife/internal/storage"
)

// Result renders a dispatch outcome as a single human-readable block.
func Result(cmd parser.ParsedCommand, res parser.Result) string {
	switch res.Kind {
	case parser.ResultAddedTask:
		return fmt.Sprintf("✅ Added to %s: %q", cmd.Category, res.Task.Title)

	case parser.ResultAddedGroceries:
		names := make([]string, len(res.Items))
		for i, item := range res.Items {
			names[i] = item.Item
		}
		return "✅ Added to groceries: " + strings.Join(names, ", ")

	case parser.ResultListGroceries:
		if len(res.Items) == 0 {
			return "🛒 Grocery list is empty"
		}
		var b strings.Builder
		b.WriteString("🛒 Grocery list:")
		for _, item := range res.Items {
			b.WriteString("\n  • " + item.Item)
			if item.Quantity != "1" {
				fmt.Fprintf(&b, " (%s)", item.Quantity)
			}
		}
		return b.String()

	case parser.ResultListTasks:
		if len(res.Tasks) == 0 {
			return fmt.Sprintf("📋 No %s tasks", res.Category)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "📋 %s tasks:", res.Category)
		for _, t := range res.Tasks {
			b.WriteString("\n  • " + t.Title)
			if t.DueDate != "" {
				fmt.Fprintf(&b, " (due %s)", t.DueDate)
			}
		}
		return b.String()

	case parser.ResultCompletedTask:
		return fmt.Sprintf("✅ Completed: %q", res.Task.Title)

	case parser.ResultDeletedTask:
		return fmt.Sprintf("🗑️ Deleted: %q", res.Task.Title)

	case parser.ResultNoMatch:
		return fmt.Sprintf("❌ Couldn't find matching item for: %q", res.Title)

	default:
		return fmt.Sprintf("📝 Parsed: %s %s - %q", cmd.Action, cmd.Category, cmd.Title)
	}
}

// Summary renders the daily counters.
func Summary(sum storage.Summary) string {
	var b strings.Builder
	b.WriteString("📊 Daily Summary\n\n")
	fmt.Fprintf(&b, "• %d tasks due today\n", sum.TasksToday)
	fmt.Fprintf(&b, "• %d appointments today\n", sum.AppointmentsToday)
	fmt.Fprintf(&b, "• %d items on grocery list\n", sum.GroceriesNeeded)
	fmt.Fprintf(&b, "• %d overdue tasks\n", sum.OverdueTasks)
	return b.String()
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhenrym/famlife/internal/config"
	"github.com/jhenrym/famlife/internal/parser"
	"github.com/jhenrym/famlife/internal/render"
	"github.com/jhenrym/famlife/internal/storage"
)

var version = "dev"

var (
	cfgPath string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "famlife [message...]",
	Short: "Family life organizer driven by plain-language commands",
	Long: `famlife keeps track of household tasks, groceries, and appointments.

Talk to it the way you'd talk to your family:
  famlife add milk and eggs to groceries
  famlife remind me to call the dentist tomorrow
  famlife schedule oil change next week
  famlife finished the laundry

Run "famlife serve" to start the web dashboard and email scraper.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		showSummary, _ := cmd.Flags().GetBool("summary")
		listCategory, _ := cmd.Flags().GetString("list")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if showSummary {
			sum, err := store.DailySummary()
			if err != nil {
				return fmt.Errorf("loading summary: %w", err)
			}
			fmt.Println(render.Summary(sum))
			return nil
		}

		if listCategory != "" {
			return listTasks(store, listCategory)
		}

		if len(args) == 0 {
			return cmd.Help()
		}

		message := strings.Join(args, " ")
		dispatcher := newDispatcher(cfg, store)

		parsed, res, err := dispatcher.Process(message, time.Now())
		if err != nil {
			return fmt.Errorf("processing command: %w", err)
		}

		fmt.Println(render.Result(parsed, res))
		return nil
	},
}

func listTasks(store storage.Store, category string) error {
	filter := storage.TaskFilter{Status: storage.TaskActive}
	if category != "all" {
		filter.Category = strings.ToLower(category)
	}

	tasks, err := store.ListTasks(filter)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("Nothing on the list.")
		return nil
	}

	for _, t := range tasks {
		line := "• " + t.Title
		if t.DueDate != "" {
			line += " (due " + t.DueDate + ")"
		}
		if t.AssignedTo != "" {
			line += " [" + t.AssignedTo + "]"
		}
		fmt.Println(line)
	}
	return nil
}

func newDispatcher(cfg *config.Config, store storage.Store) *parser.Dispatcher {
	roster := parser.Roster{
		Primary:        cfg.Household.Primary,
		Partner:        cfg.Household.Partner,
		PartnerAliases: cfg.Household.PartnerAliases,
	}
	return parser.NewDispatcher(parser.New(roster), store, nil)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return storage.OpenPostgres(cfg.Database.DSN)
	default:
		return storage.OpenSQLite(cfg.Database.DataDir)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().Bool("summary", false, "show today's household summary")
	rootCmd.Flags().String("list", "", "list active tasks for a category (or \"all\")")

	rootCmd.AddCommand(serveCmd, scrapeCmd, botCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jhenrym/famlife/internal/bot"
	"github.com/jhenrym/famlife/internal/config"
	"github.com/jhenrym/famlife/internal/email"
	"github.com/jhenrym/famlife/internal/mcp"
	"github.com/jhenrym/famlife/internal/web"
)

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zapCfg.Level = parsed
	}
	return zapCfg.Build()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard, API, and background email scraper",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		dispatcher := newDispatcher(cfg, store)

		srvHandler, err := web.New(store, dispatcher, cfg.Users, logger)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: srvHandler.Handler(),
		}

		// Background email scraper, only when credentials are configured.
		if cfg.IMAP.User != "" && cfg.IMAP.Password != "" {
			scraper, err := email.NewScraper(cfg.IMAP, store, logger)
			if err != nil {
				return err
			}
			interval := time.Duration(cfg.IMAP.PollInterval) * time.Minute
			go scraper.Run(ctx.Done(), interval)
			printStep("email scraper polling every %s", interval)
		} else {
			printWarning("imap credentials not set, email scraper disabled")
		}

		// Optional MCP server on stdio for agent clients.
		if withMCP {
			mcpSrv := mcp.NewServer(mcp.Deps{Store: store, Dispatcher: dispatcher})
			stdioSrv := server.NewStdioServer(mcpSrv)
			go func() {
				if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("mcp stdio server error", zap.Error(err))
				}
			}()
			printStep("mcp server started (stdio transport)")
		}

		errCh := make(chan error, 1)
		go func() {
			printStep("famlife listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			printStep("shutting down...")
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scan the inbox once for receipt emails and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		scraper, err := email.NewScraper(cfg.IMAP, store, logger)
		if err != nil {
			return err
		}

		printStep("scanning %s for receipts", cfg.IMAP.Mailbox)
		if err := scraper.ProcessOnce(); err != nil {
			return err
		}
		printSuccess("done")
		return nil
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cfg.Telegram.Token == "" {
			return fmt.Errorf("telegram token not configured")
		}

		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		b, err := bot.New(cfg.Telegram.Token, store, newDispatcher(cfg, store), logger)
		if err != nil {
			return err
		}

		printStep("telegram bot running, ctrl-c to stop")
		return b.Start(ctx.Done())
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools on stdio")
}

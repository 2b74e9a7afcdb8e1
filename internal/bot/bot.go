// Package bot exposes the household assistant over Telegram. Every text
// message goes through the same command pipeline as the CLI and web API.
package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jhenrym/famlife/internal/parser"
	"github.com/jhenrym/famlife/internal/render"
	"github.com/jhenrym/famlife/internal/storage"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	store      storage.Store
	dispatcher *parser.Dispatcher
	logger     *zap.Logger
}

func New(token string, store storage.Store, dispatcher *parser.Dispatcher, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &Bot{
		api:        api,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Start long-polls for updates until the done channel closes.
func (b *Bot) Start(done <-chan struct{}) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-done:
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	cmd, res, err := b.dispatcher.Process(text, time.Now())
	if err != nil {
		b.logger.Error("processing message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendMessage(message.Chat.ID, "⚠️ Sorry, something went wrong. Please try again.")
		return
	}

	b.sendMessage(message.Chat.ID, render.Result(cmd, res))
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "summary":
		b.handleSummary(message)
	case "list":
		b.handleList(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Try /summary, /list, or just tell me what you need.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Hi! I'm your family organizer. 🏠

Just tell me things in plain words:
- "add milk and eggs to groceries"
- "remind me to call the dentist tomorrow"
- "schedule oil change next week"
- "finished the laundry"

Commands:
/summary - today's overview
/list - active tasks`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleSummary(message *tgbotapi.Message) {
	sum, err := b.store.DailySummary()
	if err != nil {
		b.logger.Error("loading summary", zap.Error(err))
		b.sendMessage(message.Chat.ID, "⚠️ Couldn't load the summary right now.")
		return
	}
	b.sendMessage(message.Chat.ID, render.Summary(sum))
}

func (b *Bot) handleList(message *tgbotapi.Message) {
	filter := storage.TaskFilter{Status: storage.TaskActive}
	if args := strings.TrimSpace(message.CommandArguments()); args != "" {
		filter.Category = strings.ToLower(args)
	}

	tasks, err := b.store.ListTasks(filter)
	if err != nil {
		b.logger.Error("listing tasks", zap.Error(err))
		b.sendMessage(message.Chat.ID, "⚠️ Couldn't load tasks right now.")
		return
	}

	if len(tasks) == 0 {
		b.sendMessage(message.Chat.ID, "Nothing on the list. 🎉")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Active tasks:\n")
	for _, t := range tasks {
		sb.WriteString("• " + t.Title)
		if t.DueDate != "" {
			sb.WriteString(" (due " + t.DueDate + ")")
		}
		sb.WriteByte('\n')
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("sending message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

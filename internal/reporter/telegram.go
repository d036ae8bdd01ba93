// Package reporter forwards feedback messages to the admins' Telegram chat.
package reporter

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iliyamo/jobhunter/internal/config"
)

// Feedback is what the admins see of a feedback message.
type Feedback struct {
	ID       uint64
	UserName string
	Email    string
	Message  string
}

// Reporter notifies admins about new feedback.
type Reporter interface {
	ReportFeedback(ctx context.Context, f Feedback) error
}

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(cfg config.TelegramConfig) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{bot: bot, chatID: cfg.ChatID}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) ReportFeedback(_ context.Context, f Feedback) error {
	return t.SendMessage(FormatFeedback(f))
}

// FormatFeedback renders f as a Telegram HTML message.  User supplied text
// is escaped.
func FormatFeedback(f Feedback) string {
	from := "anonymous"
	if f.UserName != "" || f.Email != "" {
		from = html.EscapeString(f.UserName)
		if f.Email != "" {
			from += " &lt;" + html.EscapeString(f.Email) + "&gt;"
		}
	}
	return fmt.Sprintf("📝 <b>New feedback #%d</b>\n👤 %s\n\n%s", f.ID, from, html.EscapeString(f.Message))
}

// LogReporter logs feedback when no Telegram bot is configured.
type LogReporter struct{}

func (LogReporter) ReportFeedback(_ context.Context, f Feedback) error {
	log.Printf("feedback #%d from %q: %s", f.ID, f.Email, f.Message)
	return nil
}

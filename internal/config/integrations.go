package config

import (
    "log"
    "os"
    "strconv"
)

// MailConfig configures outgoing email through the Gmail API.  When
// CredentialsFile or TokenFile is empty, emails are written to the log
// instead of being sent.
type MailConfig struct {
    From            string // From header, e.g. "JobHunter <noreply@example.com>"
    CredentialsFile string // OAuth client JSON downloaded from the Google console
    TokenFile       string // stored OAuth token with the gmail.send scope
}

func LoadMailConfig() MailConfig {
    return MailConfig{
        From:            envStr("MAIL_FROM", "JobHunter <noreply@jobhunter.local>"),
        CredentialsFile: os.Getenv("GMAIL_CREDENTIALS_FILE"),
        TokenFile:       os.Getenv("GMAIL_TOKEN_FILE"),
    }
}

// Enabled reports whether the Gmail mailer can be built.
func (c MailConfig) Enabled() bool { return c.CredentialsFile != "" && c.TokenFile != "" }

// AIConfig configures the job description generator.
type AIConfig struct {
    APIKey string
    Model  string
}

func LoadAIConfig() AIConfig {
    return AIConfig{
        APIKey: os.Getenv("GEMINI_API_KEY"),
        Model:  envStr("GEMINI_MODEL", "gemini-2.5-flash"),
    }
}

// TelegramConfig configures the admin chat that receives feedback messages.
type TelegramConfig struct {
    Token  string
    ChatID int64
}

func LoadTelegramConfig() TelegramConfig {
    cfg := TelegramConfig{Token: os.Getenv("TELEGRAM_BOT_TOKEN")}
    if s := os.Getenv("TELEGRAM_CHAT_ID"); s != "" {
        id, err := strconv.ParseInt(s, 10, 64)
        if err != nil {
            log.Fatalf("invalid TELEGRAM_CHAT_ID: %q", s)
        }
        cfg.ChatID = id
    }
    return cfg
}

// Enabled reports whether both the bot token and the chat id are set.
func (c TelegramConfig) Enabled() bool { return c.Token != "" && c.ChatID != 0 }

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages through the Telegram bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string

	// APIBase overrides the Telegram endpoint, for tests.
	APIBase string

	client *http.Client
}

// NewTelegramNotifier creates a Telegram notifier.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  defaultAPIBase,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Notify sends one HTML-formatted message. One attempt, no retries; the next
// scheduled run will report again if the change is still relevant.
func (t *TelegramNotifier) Notify(ctx context.Context, message string) error {
	payload := sendMessageRequest{
		ChatID:    t.ChatID,
		Text:      message,
		ParseMode: "HTML",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.APIBase, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var parsed sendMessageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("telegram returned status %d with unreadable body", resp.StatusCode)
	}
	if !parsed.Ok {
		return fmt.Errorf("telegram rejected message: %s", parsed.Description)
	}

	return nil
}

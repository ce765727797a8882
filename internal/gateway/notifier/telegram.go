package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"autobid/internal/logger"

	"github.com/tidwall/gjson"
)

const sendAttempts = 3

// Telegram pushes outcome notifications to a chat through the Bot API.
// Delivery is best effort: transient failures are retried with a short linear
// backoff and the last error is returned.
type Telegram struct {
	botToken string
	chatID   string
	client   *http.Client

	apiBase string
	backoff time.Duration
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 15 * time.Second},
		apiBase:  "https://api.telegram.org",
		backoff:  time.Second,
	}
}

func (t *Telegram) SendText(text string) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("notifier: telegram bot_token and chat_id are required")
	}
	payload, err := json.Marshal(map[string]any{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * t.backoff)
		}
		if lastErr = t.send(payload); lastErr == nil {
			return nil
		}
		logger.Warnf("notifier: telegram send attempt %d/%d failed: %v", attempt, sendAttempts, lastErr)
	}
	return lastErr
}

func (t *Telegram) send(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode/100 != 2 {
		msg := gjson.GetBytes(body, "description").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("telegram status=%d: %s", resp.StatusCode, msg)
	}
	return nil
}

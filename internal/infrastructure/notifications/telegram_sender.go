package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// TelegramSender sends messages via the Telegram Bot API
type TelegramSender struct {
	botToken   string
	httpClient *http.Client
	baseURL    string
}

// NewTelegramSender creates a new Telegram sender
func NewTelegramSender(botToken string) (*TelegramSender, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token must be set")
	}

	return &TelegramSender{
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.telegram.org",
	}, nil
}

// telegramSendMessage is the sendMessage request payload
type telegramSendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// telegramResponse is the Bot API response envelope
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Send delivers an HTML-formatted message to a chat and returns the message id
func (t *TelegramSender) Send(ctx context.Context, userID int64, text string) (string, error) {
	message := telegramSendMessage{
		ChatID:                strconv.FormatInt(userID, 10),
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return "", apperrors.NewDispatchError("failed to marshal message", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", apperrors.NewDispatchError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewDispatchError("failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewDispatchError("failed to read response", err)
	}

	var telegramResp telegramResponse
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return "", apperrors.NewDispatchError(
			fmt.Sprintf("unexpected response (status %d)", resp.StatusCode), err)
	}

	if !telegramResp.OK {
		return "", apperrors.NewDispatchError(
			fmt.Sprintf("telegram API error (status %d): %s", resp.StatusCode, telegramResp.Description), nil)
	}

	return strconv.FormatInt(telegramResp.Result.MessageID, 10), nil
}

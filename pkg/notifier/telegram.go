package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/valyala/fasthttp"
	"keyword-report/pkg/logger"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	defaultTelegramTimeout = 15 * time.Second

	// MaxMessageLength is the Bot API limit for one sendMessage text
	MaxMessageLength = 4096
)

// TelegramConfig holds bot credentials and the target chat
type TelegramConfig struct {
	BaseURL   string
	BotToken  string
	ChatID    string
	ParseMode string
	Timeout   time.Duration
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// TelegramNotifier posts report text through the Bot API sendMessage method
type TelegramNotifier struct {
	config TelegramConfig
	client *fasthttp.Client
	log    *logger.Logger
}

// NewTelegramNotifier creates a notifier; token and chat id are required
func NewTelegramNotifier(config TelegramConfig, log *logger.Logger) (*TelegramNotifier, error) {
	if config.BotToken == "" || config.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultTelegramBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = defaultTelegramTimeout
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &TelegramNotifier{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
		log: log.Component("telegram_notifier"),
	}, nil
}

// Send delivers text, split into several messages when it exceeds the
// Bot API length limit. Parts are sent in order and the first failure
// stops the remaining parts.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	parts := SplitMessage(text, MaxMessageLength)

	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.sendPart(ctx, part); err != nil {
			return fmt.Errorf("failed to send message part %d/%d: %w", i+1, len(parts), err)
		}
	}

	n.log.WithField("parts", len(parts)).Info("Report dispatched")
	return nil
}

func (n *TelegramNotifier) sendPart(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.config.ChatID,
		Text:      text,
		ParseMode: n.config.ParseMode,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.config.BaseURL + "/bot" + n.config.BotToken + "/sendMessage")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline := time.Now().Add(n.config.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	// The request error embeds the URL, which carries the bot token
	if err := n.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("request failed: %s", strings.ReplaceAll(err.Error(), n.config.BotToken, "***"))
	}

	var result sendMessageResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("telegram returned status %d with unreadable body: %w", resp.StatusCode(), err)
	}
	if resp.StatusCode() != fasthttp.StatusOK || !result.OK {
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode(), result.Description)
	}

	return nil
}

// SplitMessage breaks text into chunks of at most limit runes, cutting on
// line boundaries where possible
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineSize := utf8.RuneCountInString(line)

		if size+lineSize > limit {
			flush()
		}

		// A single line longer than the limit is cut by runes
		for lineSize > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			lineSize -= limit
		}

		current.WriteString(line)
		size += lineSize
	}
	flush()

	return parts
}

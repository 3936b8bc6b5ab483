// Package bot is the Telegram front-end: it receives updates, feeds text and
// photo messages through the agent with the chat's session history, and sends
// the reply back as Telegram HTML.
package bot

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	openai "github.com/sashabaranov/go-openai"

	"gastos/internal/agent"
	"gastos/internal/markup"
	"gastos/internal/session"
)

const (
	welcomeMessage      = "¡Hola! Soy tu asistente de gastos. Envíame tus gastos o dudas."
	processingPhoto     = "📷 Procesando imagen..."
	defaultPhotoCaption = "Analiza esta imagen y extrae la información del gasto."
	errorReply          = "Ocurrió un error. Intenta nuevamente."
	emptyReply          = "No pude procesar tu mensaje."
)

// Runner is the slice of the agent the bot needs.
type Runner interface {
	Run(ctx context.Context, history []openai.ChatCompletionMessage, user openai.ChatCompletionMessage) (string, []openai.ChatCompletionMessage, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	agent    Runner
	sessions *session.Store
	files    *http.Client
}

func New(api *tgbotapi.BotAPI, runner Runner, sessions *session.Store) *Bot {
	return &Bot{
		api:      api,
		agent:    runner,
		sessions: sessions,
		files:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Run polls for updates until the context is cancelled. Each message is
// handled in its own goroutine so a slow agent turn does not block other
// chats.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	slog.Info("Bot iniciado", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Panic while handling message", "chat_id", msg.Chat.ID, "panic", r)
			b.send(msg.Chat.ID, errorReply)
		}
	}()

	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.Text != "":
		slog.InfoContext(ctx, "Text message received", "chat_id", msg.Chat.ID)
		b.runAgent(ctx, msg.Chat.ID, agent.TextMessage(msg.Text))
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sessions.Delete(msg.Chat.ID)
		b.send(msg.Chat.ID, welcomeMessage)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	slog.InfoContext(ctx, "Photo received", "chat_id", msg.Chat.ID)
	b.send(msg.Chat.ID, processingPhoto)

	photo := largestPhoto(msg.Photo)
	imageBase64, err := b.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		slog.ErrorContext(ctx, "Photo download failed", "chat_id", msg.Chat.ID, "error", err)
		b.send(msg.Chat.ID, errorReply)
		return
	}

	b.runAgent(ctx, msg.Chat.ID, agent.ImageMessage(photoCaption(msg.Caption), "image/jpeg", imageBase64))
}

func (b *Bot) runAgent(ctx context.Context, chatID int64, user openai.ChatCompletionMessage) {
	b.sendTyping(chatID)

	history, _ := b.sessions.History(chatID)
	reply, updated, err := b.agent.Run(ctx, history, user)
	if err != nil {
		slog.ErrorContext(ctx, "Agent turn failed", "chat_id", chatID, "error", err)
		b.send(chatID, errorReply)
		return
	}
	b.sessions.Update(chatID, updated)

	if reply == "" {
		b.send(chatID, emptyReply)
		return
	}
	b.sendHTML(chatID, markup.ToTelegramHTML(reply))
}

func (b *Bot) downloadPhoto(ctx context.Context, fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.files.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("Send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendHTML(chatID int64, html string) {
	out := tgbotapi.NewMessage(chatID, html)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(out); err != nil {
		slog.Error("Send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.Error("Chat action failed", "chat_id", chatID, "error", err)
	}
}

// largestPhoto picks the highest-resolution rendition Telegram offers.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}

func photoCaption(caption string) string {
	if caption == "" {
		return defaultPhotoCaption
	}
	return caption
}

// Package telegram connects the conversation controller to the Telegram
// Bot API through long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobmate/vacancy-bot/internal/conversation"
)

const pollTimeoutSeconds = 60

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the chat transport: it turns updates into conversation messages
// and renders replies with the menu keyboard.
type Bot struct {
	api  API
	menu tgbotapi.ReplyKeyboardMarkup
	log  *slog.Logger
}

// Connect authenticates with token and returns a Bot.
func Connect(token string, menu [][]string, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("tgbotapi.NewBotAPI: %w", err)
	}
	log.Info("telegram authorized", "username", api.Self.UserName)
	return New(api, menu, log), nil
}

// New wraps an existing API client.
func New(api API, menu [][]string, log *slog.Logger) *Bot {
	return &Bot{api: api, menu: buildKeyboard(menu), log: log.With("component", "telegram")}
}

func buildKeyboard(layout [][]string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(layout))
	for _, labels := range layout {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// Updates streams incoming text messages until ctx is done. Non-text
// updates are dropped.
func (b *Bot) Updates(ctx context.Context) <-chan conversation.Message {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	out := make(chan conversation.Message)
	go func() {
		defer close(out)
		defer b.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				msg, ok := toMessage(upd)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func toMessage(upd tgbotapi.Update) (conversation.Message, bool) {
	if upd.Message == nil || upd.Message.Chat == nil {
		return conversation.Message{}, false
	}
	return conversation.Message{ChatID: upd.Message.Chat.ID, Text: upd.Message.Text}, true
}

// SendText implements conversation.Sender. Errors are logged only.
func (b *Bot) SendText(_ context.Context, chatID int64, text string, kb conversation.Keyboard) {
	msg := tgbotapi.NewMessage(chatID, text)
	switch kb {
	case conversation.KeyboardRemove:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	default:
		msg.ReplyMarkup = b.menu
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message failed", "chat_id", chatID, "err", err)
	}
}

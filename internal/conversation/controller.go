package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"jobmate/vacancy-bot/internal/reconcile"
)

// Message is one inbound chat text.
type Message struct {
	ChatID int64
	Text   string
}

// Keyboard selects the reply markup the transport attaches.
type Keyboard int

const (
	KeyboardMenu   Keyboard = iota // show the Start / Vacancies buttons
	KeyboardRemove                 // hide the keyboard while typing a keyword
)

// Sender delivers replies. Delivery is fire-and-forget: the transport logs
// its own failures.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard)
}

// Searcher runs a keyword search. *reconcile.Reconciler implements it.
type Searcher interface {
	Search(ctx context.Context, keyword string) (reconcile.Result, error)
}

// Controller applies the transition table to incoming messages.
type Controller struct {
	cfg      Config
	sessions SessionStore
	searcher Searcher
	sender   Sender
	log      *slog.Logger
}

// NewController returns a Controller. cfg is copied.
func NewController(cfg Config, sessions SessionStore, searcher Searcher, sender Sender, log *slog.Logger) *Controller {
	return &Controller{
		cfg:      cfg,
		sessions: sessions,
		searcher: searcher,
		sender:   sender,
		log:      log.With("component", "conversation"),
	}
}

// Handle processes one message for its chat. Messages of the same chat
// must not be handled concurrently; the Dispatcher guarantees that.
func (c *Controller) Handle(ctx context.Context, msg Message) {
	state, err := c.sessions.Load(ctx, msg.ChatID)
	if err != nil {
		c.log.Warn("load session failed, assuming idle", "chat_id", msg.ChatID, "err", err)
		state = StateIdle
	}

	intent := ParseIntent(c.cfg, msg.Text)
	t := lookup(state, intent)
	c.log.Debug("transition", "chat_id", msg.ChatID, "from", state, "intent", intent, "to", t.next)

	switch t.action {
	case actionWelcome:
		c.sender.SendText(ctx, msg.ChatID, c.cfg.Welcome, KeyboardMenu)
	case actionHint:
		c.sender.SendText(ctx, msg.ChatID, c.cfg.Hint, KeyboardMenu)
	case actionPrompt:
		c.sender.SendText(ctx, msg.ChatID, c.cfg.Prompt, KeyboardRemove)
	case actionSearch:
		for _, text := range c.search(ctx, msg) {
			c.sender.SendText(ctx, msg.ChatID, text, KeyboardMenu)
		}
	}

	if err := c.sessions.Save(ctx, msg.ChatID, t.next); err != nil {
		c.log.Error("save session failed", "chat_id", msg.ChatID, "state", t.next, "err", err)
	}
}

// search runs the keyword search and returns the complete reply: either
// the header plus one message per vacancy, or exactly one status message.
func (c *Controller) search(ctx context.Context, msg Message) []string {
	log := c.log.With("chat_id", msg.ChatID, "search_id", uuid.NewString())
	log.Info("searching vacancies", "keyword", msg.Text)

	res, err := c.searcher.Search(ctx, msg.Text)
	switch {
	case errors.Is(err, reconcile.ErrInvalidInput):
		return []string{c.cfg.EmptyKeyword}
	case err != nil:
		log.Error("search failed", "err", err)
		return []string{c.cfg.Failure}
	case res.Count() == 0:
		return []string{c.cfg.NoResults}
	}

	replies := make([]string, 0, res.Count()+1)
	replies = append(replies, fmt.Sprintf(c.cfg.FoundHeader, res.Count()))
	for _, v := range res.Vacancies {
		replies = append(replies, FormatVacancy(c.cfg, v))
	}
	return replies
}

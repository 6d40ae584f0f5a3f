// Package conversation drives the chat dialogue for keyword searches.
//
// State graph:
//
//	IDLE ──(start)──► IDLE              welcome text
//	IDLE ──(other)──► IDLE              navigation hint
//	IDLE ──(search)─► AWAITING_KEYWORD  keyword prompt
//	AWAITING_KEYWORD ──(any text)──► IDLE   search, then reply
//
// IDLE is both the initial and the terminal state of every search turn.
package conversation

import (
	"fmt"
	"strings"
)

// State values are what the session stores persist.
type State string

const (
	StateIdle            State = "IDLE"
	StateAwaitingKeyword State = "AWAITING_KEYWORD"
)

// ParseState converts a stored string back to a State.
func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StateIdle, StateAwaitingKeyword:
		return st, nil
	}
	return "", fmt.Errorf("unknown conversation state %q", s)
}

// Intent classifies an incoming message.
type Intent int

const (
	IntentOther Intent = iota
	IntentStart
	IntentSearch
)

func (i Intent) String() string {
	switch i {
	case IntentStart:
		return "start"
	case IntentSearch:
		return "search"
	default:
		return "other"
	}
}

// action is what the controller does on a transition.
type action int

const (
	actionWelcome action = iota
	actionHint
	actionPrompt
	actionSearch
)

type transition struct {
	next   State
	action action
}

// transitions lists every (state, intent) pair. In AWAITING_KEYWORD the
// intent is ignored: the text is always the keyword.
var transitions = map[State]map[Intent]transition{
	StateIdle: {
		IntentStart:  {next: StateIdle, action: actionWelcome},
		IntentSearch: {next: StateAwaitingKeyword, action: actionPrompt},
		IntentOther:  {next: StateIdle, action: actionHint},
	},
	StateAwaitingKeyword: {
		IntentStart:  {next: StateIdle, action: actionSearch},
		IntentSearch: {next: StateIdle, action: actionSearch},
		IntentOther:  {next: StateIdle, action: actionSearch},
	},
}

// Next returns the state reached from s on intent. Unknown states are
// treated as IDLE.
func Next(s State, intent Intent) State {
	return lookup(s, intent).next
}

func lookup(s State, intent Intent) transition {
	row, ok := transitions[s]
	if !ok {
		row = transitions[StateIdle]
	}
	return row[intent]
}

// ParseIntent classifies text using the configured button labels and the
// /start and /vacancies commands. Matching is exact after trimming; a
// "@botname" command suffix is ignored.
func ParseIntent(cfg Config, text string) Intent {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "/") {
		if at := strings.IndexByte(t, '@'); at > 0 {
			t = t[:at]
		}
	}
	switch t {
	case "/start", cfg.StartLabel:
		return IntentStart
	case "/vacancies", cfg.SearchLabel:
		return IntentSearch
	}
	return IntentOther
}

// Package source fetches vacancies from the external job board and
// normalises them into model.Vacancy.
package source

import (
	"context"
	"fmt"

	"jobmate/vacancy-bot/internal/model"
)

// Source fetches candidate vacancies for a keyword. One call issues one
// remote request; there is no retry.
type Source interface {
	FetchByKeyword(ctx context.Context, keyword string) ([]model.Vacancy, error)
}

// FetchError reports a provider call that failed or answered with a
// non-success status. Callers treat it as "zero results".
type FetchError struct {
	Keyword string
	Status  int // 0 when no response was received
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %q: provider returned %d: %v", e.Keyword, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %q: %v", e.Keyword, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

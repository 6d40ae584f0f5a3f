// Package model defines the shared data structures of the vacancy bot.
package model

import "strings"

// CityNotSpecified replaces a missing location.
const CityNotSpecified = "not specified"

// Vacancy is a normalised job posting, either freshly fetched from the
// provider or read back from the vacancies table.
type Vacancy struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	Salary      *float64 `json:"salary,omitempty"` // nil when the provider gives no salary
}

// IdentityKey is the (title, company, description) tuple. Two vacancies
// with equal keys are the same posting whatever their city or salary.
type IdentityKey struct {
	Title       string
	Company     string
	Description string
}

// Key returns the identity key of v.
func (v Vacancy) Key() IdentityKey {
	return IdentityKey{Title: v.Title, Company: v.Company, Description: v.Description}
}

// MatchesKeyword reports whether keyword occurs (case-insensitive) in the
// title or the description.
func (v Vacancy) MatchesKeyword(keyword string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(v.Title), k) ||
		strings.Contains(strings.ToLower(v.Description), k)
}

var markupStripper = strings.NewReplacer("<highlighttext>", "", "</highlighttext>", "")

// StripMarkup removes the provider's highlight tags from s.
func StripMarkup(s string) string {
	return markupStripper.Replace(s)
}

// Cleaned returns a copy of v with display markup removed from the description.
func (v Vacancy) Cleaned() Vacancy {
	v.Description = StripMarkup(v.Description)
	return v
}

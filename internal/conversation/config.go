package conversation

// Config holds the dialogue texts and keyboard labels. It is built once and
// copied into the Controller; nothing mutates it afterwards.
type Config struct {
	StartLabel  string
	SearchLabel string

	Welcome      string
	Prompt       string
	Hint         string
	EmptyKeyword string
	NoResults    string
	Failure      string
	FoundHeader  string // fmt verb %d receives the count
	NotSpecified string // rendered for a missing salary
}

// DefaultConfig returns the stock English dialogue.
func DefaultConfig() Config {
	return Config{
		StartLabel:   "Start",
		SearchLabel:  "Vacancies",
		Welcome:      "Welcome! Use /vacancies or the Vacancies button to search for vacancies.",
		Prompt:       "Enter a vacancy keyword:",
		Hint:         "Please use the buttons to navigate.",
		EmptyKeyword: "Please enter a keyword to search for vacancies.",
		NoResults:    "No vacancies found.",
		Failure:      "An error occurred while processing your request.",
		FoundHeader:  "Found %d vacancies:",
		NotSpecified: "not specified",
	}
}

// Menu returns the reply keyboard layout: one row with both buttons.
func (c Config) Menu() [][]string {
	return [][]string{{c.StartLabel, c.SearchLabel}}
}

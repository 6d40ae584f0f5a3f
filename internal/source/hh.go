package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"jobmate/vacancy-bot/internal/model"
)

const (
	DefaultBaseURL   = "https://api.hh.ru"
	DefaultUserAgent = "vacancy-bot/1.0"
	maxBodyBytes     = 8 << 20
)

// HHFetcher queries the hh.ru public vacancies API.
type HHFetcher struct {
	BaseURL   string
	UserAgent string
	client    *http.Client
	log       *slog.Logger
}

// NewHHFetcher constructs a fetcher with its own HTTP client.
func NewHHFetcher(baseURL, userAgent string, timeout time.Duration, log *slog.Logger) *HHFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HHFetcher{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		log:       log.With("component", "hh"),
	}
}

// FetchByKeyword implements Source. Context cancellation is returned as is;
// every other failure comes back as a *FetchError.
func (f *HHFetcher) FetchByKeyword(ctx context.Context, keyword string) ([]model.Vacancy, error) {
	params := url.Values{}
	params.Set("text", keyword)
	reqURL := f.BaseURL + "/vacancies?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Keyword: keyword, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FetchError{Keyword: keyword, Err: fmt.Errorf("http GET: %w", err)}
	}
	defer resp.Body.Close()

	f.log.Info("provider request", "keyword", keyword, "status", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Keyword: keyword, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Keyword: keyword, Status: resp.StatusCode, Err: errors.New(snippet(body))}
	}

	if !gjson.ValidBytes(body) {
		return nil, &FetchError{Keyword: keyword, Status: resp.StatusCode, Err: errors.New("malformed JSON body")}
	}

	items := gjson.GetBytes(body, "items")
	vacancies := make([]model.Vacancy, 0, len(items.Array()))
	skipped := 0
	items.ForEach(func(_, item gjson.Result) bool {
		v, ok := Normalize(item)
		if !ok {
			skipped++
			return true
		}
		vacancies = append(vacancies, v)
		return true
	})
	if skipped > 0 {
		f.log.Warn("skipped malformed provider items", "keyword", keyword, "skipped", skipped)
	}

	f.log.Info("parsed provider items", "keyword", keyword, "count", len(vacancies))
	return vacancies, nil
}

// Normalize converts one provider item into a Vacancy:
//   - a missing area (or area name) becomes model.CityNotSpecified;
//   - a missing salary block gives a nil Salary, never zero;
//   - a missing snippet responsibility gives an empty description;
//   - the company is the employer name verbatim.
//
// Items that are not JSON objects are rejected.
func Normalize(item gjson.Result) (model.Vacancy, bool) {
	if !item.IsObject() {
		return model.Vacancy{}, false
	}

	v := model.Vacancy{
		Title:       item.Get("name").String(),
		Company:     item.Get("employer.name").String(),
		Description: item.Get("snippet.responsibility").String(),
		City:        model.CityNotSpecified,
	}

	if name := item.Get("area.name"); name.Type == gjson.String {
		v.City = name.String()
	}

	if salary := item.Get("salary"); salary.IsObject() {
		for _, field := range []string{"amount", "from", "to"} {
			if n := salary.Get(field); n.Type == gjson.Number {
				amount := n.Float()
				v.Salary = &amount
				break
			}
		}
	}

	return v, true
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	if s == "" {
		s = "empty body"
	}
	return s
}

package store_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/vacancy-bot/internal/model"
	"jobmate/vacancy-bot/internal/store"
)

// newPostgres connects to TEST_DATABASE_URL and empties the vacancies table.
func newPostgres(t *testing.T) *store.Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := store.NewPostgres(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE vacancies`)
	require.NoError(t, err)
	return s
}

func TestPostgresRoundTripNormalisation(t *testing.T) {
	s := newPostgres(t)
	ctx := context.Background()

	ok, err := s.InsertIfAbsent(ctx, model.Vacancy{
		Title: "Cook", Company: "Cafe", Description: "<highlighttext>fry</highlighttext>", City: model.CityNotSpecified,
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.FindByKeyword(ctx, "COOK")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].Salary)
	require.Equal(t, model.CityNotSpecified, got[0].City)
}

func TestPostgresSalaryRoundTrip(t *testing.T) {
	s := newPostgres(t)
	ctx := context.Background()
	salary := 120000.0

	_, err := s.InsertIfAbsent(ctx, model.Vacancy{Title: "Go developer", Company: "Acme", City: "Moscow", Salary: &salary})
	require.NoError(t, err)

	got, err := s.FindByKeyword(ctx, "go dev")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Salary)
	require.InDelta(t, salary, *got[0].Salary, 0.001)
}

func TestPostgresKeywordWildcardsAreLiteral(t *testing.T) {
	s := newPostgres(t)
	ctx := context.Background()
	seed(t, s,
		model.Vacancy{Title: "100% remote", Company: "A", City: model.CityNotSpecified},
		model.Vacancy{Title: "1000 rub", Company: "B", City: model.CityNotSpecified},
	)

	got, err := s.FindByKeyword(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "100% remote", got[0].Title)
}

func TestPostgresConcurrentInsertSingleWinner(t *testing.T) {
	s := newPostgres(t)
	v := model.Vacancy{Title: "Cook", Company: "Cafe", Description: "fry", City: model.CityNotSpecified}

	const n = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	for j := 0; j < n; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.InsertIfAbsent(context.Background(), v)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	count, err := s.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

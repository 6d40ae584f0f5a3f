package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/vacancy-bot/internal/model"
	"jobmate/vacancy-bot/internal/store"
)

func seed(t *testing.T, s store.Store, vs ...model.Vacancy) {
	t.Helper()
	for _, v := range vs {
		_, err := s.InsertIfAbsent(context.Background(), v)
		require.NoError(t, err)
	}
}

func TestMemoryFindByKeywordCaseInsensitive(t *testing.T) {
	s := store.NewMemory()
	seed(t, s,
		model.Vacancy{Title: "Cook", Company: "Cafe", Description: "fry", City: "Moscow"},
		model.Vacancy{Title: "Driver", Company: "Taxi", Description: "drive a COOKIE van", City: "Kazan"},
		model.Vacancy{Title: "Welder", Company: "Plant", Description: "weld", City: "Omsk"},
	)

	got, err := s.FindByKeyword(context.Background(), "cOoK")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, v := range got {
		require.True(t, v.MatchesKeyword("cook"), "unexpected match %+v", v)
	}
	require.Equal(t, "Cook", got[0].Title)
	require.Equal(t, "Driver", got[1].Title)
}

func TestMemoryInsertIfAbsentDeduplicatesOnIdentityKey(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	salary := 5000.0

	ok, err := s.InsertIfAbsent(ctx, model.Vacancy{Title: "Cook", Company: "Cafe", Description: "fry", City: model.CityNotSpecified})
	require.NoError(t, err)
	require.True(t, ok)

	// Same posting with a different city and salary is a duplicate.
	ok, err = s.InsertIfAbsent(ctx, model.Vacancy{Title: "Cook", Company: "Cafe", Description: "fry", City: "Moscow", Salary: &salary})
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.FindByKeyword(ctx, "cook")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].Salary)
	require.Equal(t, model.CityNotSpecified, got[0].City)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestMemoryConcurrentInsertSingleWinner(t *testing.T) {
	s := store.NewMemory()
	v := model.Vacancy{Title: "Cook", Company: "Cafe", Description: "fry", City: model.CityNotSpecified}

	const n = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for j := 0; j < n; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := s.InsertIfAbsent(context.Background(), v)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	count, err := s.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestMemoryCanceledContext(t *testing.T) {
	s := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindByKeyword(ctx, "cook")
	var serr *store.StorageError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "find", serr.Op)
	require.ErrorIs(t, err, context.Canceled)
}

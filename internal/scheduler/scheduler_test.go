package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aias00/gold-price-monitor/internal/model"
	"github.com/Aias00/gold-price-monitor/internal/scheduler"
)

type fakeRefresher struct {
	calls  int
	forced bool
	err    error
	panics bool
}

func (f *fakeRefresher) GetSeries(_ context.Context, forceRefresh bool) (model.SeriesData, error) {
	f.calls++
	f.forced = forceRefresh
	if f.panics {
		panic("boom")
	}
	return model.SeriesData{}, f.err
}

func TestRunNow_ForcesRefresh(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{}
	s := scheduler.New(t.Context(), f)
	s.RunNow()

	require.Equal(t, 1, f.calls)
	require.True(t, f.forced)
}

func TestRefresh_SwallowsErrorsAndPanics(t *testing.T) {
	t.Parallel()

	s := scheduler.New(t.Context(), &fakeRefresher{err: errors.New("upstream down")})
	require.NotPanics(t, s.RunNow)

	s = scheduler.New(t.Context(), &fakeRefresher{panics: true})
	require.NotPanics(t, s.RunNow)
}

func TestRegister_AcceptsInterval(t *testing.T) {
	t.Parallel()

	s := scheduler.New(t.Context(), &fakeRefresher{})
	require.NoError(t, s.Register(60*time.Minute))
}

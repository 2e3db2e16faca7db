package source_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aias00/gold-price-monitor/internal/httpx"
	"github.com/Aias00/gold-price-monitor/internal/source"
)

func TestHistoryClient_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(doc(
			row("2024-01-04", "Au99.99", "478.00"),
			row("2024-01-05", "Au99.99", "479.55"),
		)))
	}))
	defer srv.Close()

	c := source.NewHistoryClient(srv.URL, "Au99.99", httpx.New(5*time.Second, ""))
	rows, err := c.Fetch(t.Context())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "2024-01-04", rows[0].Date)
	require.Equal(t, 479.55, rows[1].Price)
}

func TestHistoryClient_FetchNoMatchingContractIsEmptyNotError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(doc(row("2024-01-05", "Ag(T+D)", "6.05"))))
	}))
	defer srv.Close()

	c := source.NewHistoryClient(srv.URL, "Au99.99", httpx.New(5*time.Second, ""))
	rows, err := c.Fetch(t.Context())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestHistoryClient_FetchErrorsAreHistoryUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := httpx.New(5*time.Second, "")

	_, err := source.NewHistoryClient(srv.URL, "Au99.99", client).Fetch(t.Context())
	require.ErrorIs(t, err, source.ErrHistoryUnavailable)

	// Dead endpoint.
	srv.Close()
	_, err = source.NewHistoryClient(srv.URL, "Au99.99", client).Fetch(t.Context())
	require.ErrorIs(t, err, source.ErrHistoryUnavailable)
}

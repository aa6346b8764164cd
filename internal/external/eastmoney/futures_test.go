package eastmoney

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

func fixedClock() time.Time {
	return time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
}

func newAdapter(t *testing.T, srv *httptest.Server) *FuturesAdapter {
	t.Helper()
	adapter := NewFuturesAdapter(httputil.New(logger.Nop(), 5*time.Second), logger.Nop())
	adapter.baseURL = srv.URL
	adapter.now = fixedClock
	return adapter
}

func contractFromQuery(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Query().Get("secid"), "90.")
}

func TestFetchFullLadder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"f43":4182000,"f170":120}}`)
	}))
	defer srv.Close()

	payload, err := newAdapter(t, srv).Fetch(context.Background())
	require.NoError(t, err)

	// Four products, three months each, minus the missing IH next-quarter.
	require.Len(t, payload.Futures, 11)

	first := payload.Futures[0]
	assert.Equal(t, "IF", first.Product)
	assert.Equal(t, "IF2608", first.Contract)
	assert.Equal(t, "current", first.Month)
	assert.Equal(t, 4182.0, first.Price)
	assert.Equal(t, 1.20, first.ChangePercent)
	assert.Equal(t, "2026-08-21", first.Expiry)

	next := payload.Futures[1]
	assert.Equal(t, "IF2609", next.Contract)
	assert.Equal(t, "2026-09-18", next.Expiry)

	for _, q := range payload.Futures {
		if q.Product == "IH" {
			assert.NotEqual(t, "next_quarter", q.Month)
		}
	}
}

func TestFetchPartialLadder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contractFromQuery(r) == "IC2609" {
			fmt.Fprint(w, `{"data":null}`)
			return
		}
		fmt.Fprint(w, `{"data":{"f43":4182000,"f170":120}}`)
	}))
	defer srv.Close()

	payload, err := newAdapter(t, srv).Fetch(context.Background())
	assert.True(t, errors.Is(err, contracts.ErrPartialData))
	assert.Len(t, payload.Futures, 10)
	for _, q := range payload.Futures {
		assert.NotEqual(t, "IC2609", q.Contract)
	}
}

func TestFetchAllContractsDownIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	payload, err := newAdapter(t, srv).Fetch(context.Background())
	var transient *contracts.TransientFetchError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, "eastmoney", transient.Source)
	assert.True(t, payload.IsEmpty())
}

func TestFetchRejectsNonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"f43":0,"f170":0}}`)
	}))
	defer srv.Close()

	_, err := newAdapter(t, srv).Fetch(context.Background())
	var transient *contracts.TransientFetchError
	assert.ErrorAs(t, err, &transient)
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() ClientConfig {
	return ClientConfig{
		Timeout:        2 * time.Second,
		MaxRetries:     0,
		RetryDelay:     time.Millisecond,
		Multiplier:     1,
		Threshold:      2,
		BreakerTimeout: time.Minute,
	}
}

func TestBMKGClient_GetForecastRaw(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/prakiraan-cuaca", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lokasi":{"adm4":"31.71.03.1001"},"data":[]}`))
	}))
	defer server.Close()

	c := NewBMKGClient(server.URL+"/", "31.71.03.1001", testConfig(), zap.NewNop())
	body, err := c.GetForecastRaw(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "adm4=31.71.03.1001", gotQuery)
	assert.JSONEq(t, `{"lokasi":{"adm4":"31.71.03.1001"},"data":[]}`, string(body))

	forecast, err := DecodeForecast(body)
	require.NoError(t, err)
	assert.Equal(t, "31.71.03.1001", forecast.Lokasi.Adm4)
}

func TestBMKGClient_RejectsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	c := NewBMKGClient(server.URL, "x", testConfig(), zap.NewNop())
	_, err := c.GetForecastRaw(context.Background())
	assert.Error(t, err)
}

func TestWilayahClient_StatusErrorCarriesCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/regencies/99.json", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewWilayahClient(server.URL+"/api", testConfig(), zap.NewNop())
	_, err := c.GetRaw(context.Background(), "regencies/99.json")
	require.Error(t, err)

	code, ok := UpstreamStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBaseClient_SingleAttemptByDefault(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewBaseClient("test", testConfig(), zap.NewNop())
	_, err := c.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBaseClient_RetriesWhenConfigured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	c := NewBaseClient("test", cfg, zap.NewNop())

	body, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBaseClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewBaseClient("test", testConfig(), zap.NewNop())
	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen.String(), c.BreakerState())

	_, err := c.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBaseClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewBaseClient("test", testConfig(), zap.NewNop())
	for i := 0; i < 5; i++ {
		_, err := c.Get(context.Background(), server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed.String(), c.BreakerState())
}

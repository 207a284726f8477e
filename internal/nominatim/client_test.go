package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"virasat-setu/internal/logger"
)

func init() { logger.Use(logger.Discard()) }

func TestGeocode_ParsesBestMatch(t *testing.T) {
	var gotQuery, gotUA, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"18.5204","lon":"73.8567","display_name":"Pune, Maharashtra, India","address":{"state":"Maharashtra"}}]`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "Virasat-Setu/1.0", srv.Client(), nil)
	res, ok := c.Geocode(context.Background(), " Pune ")
	require.True(t, ok)
	assert.Equal(t, "Pune, India", gotQuery)
	assert.Equal(t, "1", gotLimit)
	assert.Equal(t, "Virasat-Setu/1.0", gotUA)
	assert.InDelta(t, 18.5204, res.Coordinate.Latitude, 1e-9)
	assert.InDelta(t, 73.8567, res.Coordinate.Longitude, 1e-9)
	assert.Equal(t, "Maharashtra", res.Region)
	assert.Equal(t, "Pune, Maharashtra, India", res.DisplayName)
}

func TestGeocode_NoResultsIsUnresolvable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	_, ok := New(srv.URL, "ua", srv.Client(), nil).Geocode(context.Background(), "Atlantis")
	assert.False(t, ok)
}

func TestGeocode_ProviderErrorsNormalizeToNone(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"bad json":     func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{`)) },
		"bad lat":      func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`[{"lat":"x","lon":"1"}]`)) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			t.Cleanup(srv.Close)
			_, ok := New(srv.URL, "ua", srv.Client(), nil).Geocode(context.Background(), "Pune")
			assert.False(t, ok)
		})
	}
}

func TestGeocode_TransportErrorNormalizesToNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, ok := New(url, "ua", nil, nil).Geocode(context.Background(), "Pune")
	assert.False(t, ok)
}

func TestGeocode_EmptyNameSkipsCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	t.Cleanup(srv.Close)

	_, ok := New(srv.URL, "ua", srv.Client(), nil).Geocode(context.Background(), "   ")
	assert.False(t, ok)
	assert.Zero(t, calls.Load())
}

func TestGeocode_LimiterWaitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	lim := rate.NewLimiter(rate.Limit(0.001), 1)
	c := New(srv.URL, "ua", srv.Client(), lim)
	_, _ = c.Geocode(context.Background(), "Pune")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := c.Geocode(ctx, "Pune")
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHeartbeat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":0,"message":"OK"}`))
	}))
	t.Cleanup(srv.Close)

	require.NoError(t, New(srv.URL, "ua", srv.Client(), nil).Heartbeat(context.Background()))
}

func TestHeartbeat_SharesSearchLimiter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	lim := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := New(srv.URL, "ua", srv.Client(), lim)
	_, _ = c.Geocode(context.Background(), "Pune")
	require.Equal(t, int32(1), calls.Load())

	// 令牌已被检索用掉，探测必须等待而不是直接打到上游
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, c.Heartbeat(ctx))
	assert.Equal(t, int32(1), calls.Load())
}

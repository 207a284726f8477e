package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/places"
)

func init() { logger.Use(logger.Discard()) }

func TestTagFor(t *testing.T) {
	assert.Equal(t, Tag{"historic", "monument"}, TagFor(places.CategoryMonument))
	assert.Equal(t, Tag{"amenity", "place_of_worship"}, TagFor(places.CategoryTemple))
	assert.Equal(t, Tag{"amenity", "marketplace"}, TagFor(places.CategoryMarket))
	assert.Equal(t, Tag{"tourism", "attraction"}, TagFor(places.Category("zoo")))
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(Tag{"tourism", "hotel"}, places.Coordinate{Latitude: 26.9124, Longitude: 75.7873}, 10000)
	assert.Equal(t,
		`[out:json][timeout:10];(node["tourism"="hotel"](around:10000,26.9124,75.7873);way["tourism"="hotel"](around:10000,26.9124,75.7873););out center 20;`,
		q)
}

func TestSearch_PostsFormAndDecodes(t *testing.T) {
	var ct, data string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		data = r.PostForm.Get("data")
		_, _ = w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":26.98,"lon":75.85,"tags":{"name":"Amber Fort"}},
			{"type":"way","id":2,"center":{"lat":26.92,"lon":75.82},"tags":{"name":"Hawa Mahal"}},
			{"type":"way","id":3,"tags":{"name":"No Geometry"}}
		]}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "ua", srv.Client(), 0)
	els, err := c.Search(context.Background(), Tag{"historic", "monument"}, places.Coordinate{Latitude: 26.9, Longitude: 75.8}, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", ct)
	assert.Contains(t, data, `node["historic"="monument"](around:10000,26.9,75.8)`)
	require.Len(t, els, 3)

	p, ok := els[0].Position()
	require.True(t, ok)
	assert.Equal(t, 26.98, p.Latitude)
	p, ok = els[1].Position()
	require.True(t, ok)
	assert.Equal(t, 75.82, p.Longitude)
	_, ok = els[2].Position()
	assert.False(t, ok)
}

func TestSearch_ErrorWithoutRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, "ua", srv.Client(), 0).Search(context.Background(), TagFor(places.CategoryHotel), places.Coordinate{}, 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"elements":[{"type":"node","id":9,"lat":1,"lon":2,"tags":{"name":"Cafe"}}]}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "ua", srv.Client(), 2)
	c.backoff = time.Millisecond
	els, err := c.Search(context.Background(), TagFor(places.CategoryCafe), places.Coordinate{}, 0)
	require.NoError(t, err)
	assert.Len(t, els, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "ua", srv.Client(), 3)
	c.backoff = time.Millisecond
	_, err := c.Search(context.Background(), TagFor(places.CategoryMuseum), places.Coordinate{}, 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

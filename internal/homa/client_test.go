package homa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/abyss-go/internal/cache"
	"github.com/jwulff/abyss-go/internal/config"
	"github.com/jwulff/abyss-go/internal/upstream"
)

const utilizationFixture = `{
  "retcode": 0,
  "message": "",
  "data": [
    {"floor": 9, "ranks": [{"item": 10000046, "rate": 0.42}, {"item": 10000002, "rate": 0.31}]},
    {"floor": 12, "ranks": [{"item": 10000002, "rate": 0.55}]}
  ]
}`

const overviewFixture = `{
  "retcode": 0,
  "message": "",
  "data": {"scheduleId": 86, "recordTotal": 120000, "spiralAbyssTotal": 98000, "spiralAbyssFullStar": 41000, "timestamp": 1705887600000}
}`

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", nil)

	assert.Equal(t, BaseURL, client.BaseURL)
	assert.NotNil(t, client.Getter)

	client = NewClient("http://localhost:9000/", nil)
	assert.Equal(t, "http://localhost:9000", client.BaseURL)
}

func TestFetchUtilizationRate(t *testing.T) {
	server := newTestServer(t, map[string]string{PathUtilizationRate: utilizationFixture})
	client := NewClient(server.URL, nil)

	floors, err := client.FetchUtilizationRate(context.Background())
	require.NoError(t, err)

	require.Len(t, floors, 2)
	assert.Equal(t, 9, floors[0].Floor)
	assert.Len(t, floors[0].Ranks, 2)
	assert.Equal(t, 10000046, floors[0].Ranks[0].Item)
	assert.InDelta(t, 0.42, floors[0].Ranks[0].Rate, 1e-9)
	assert.Equal(t, 12, floors[1].Floor)
}

func TestFetchOverview(t *testing.T) {
	server := newTestServer(t, map[string]string{PathOverview: overviewFixture})
	client := NewClient(server.URL, nil)

	overview, err := client.FetchOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 86, overview.ScheduleID)
	assert.Equal(t, 98000, overview.SpiralAbyssTotal)

	stat := overview.Stat()
	assert.Equal(t, 86, stat.ScheduleID)
	assert.Equal(t, 41000, stat.SpiralAbyssFullStar)
}

func TestFetchRetcodeError(t *testing.T) {
	server := newTestServer(t, map[string]string{
		PathOverview: `{"retcode": 102, "message": "schedule not ready", "data": null}`,
	})
	client := NewClient(server.URL, nil)

	_, err := client.FetchOverview(context.Background())
	require.Error(t, err)

	var apiErr APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 102, apiErr.Code)
	assert.Equal(t, "homa api error 102: schedule not ready", apiErr.Error())
}

func TestFetchMissingData(t *testing.T) {
	server := newTestServer(t, map[string]string{
		PathUtilizationRate: `{"retcode": 0, "message": ""}`,
	})
	client := NewClient(server.URL, nil)

	_, err := client.FetchUtilizationRate(context.Background())
	assert.Error(t, err)
}

func TestFetchMalformedJSON(t *testing.T) {
	server := newTestServer(t, map[string]string{PathOverview: `not json`})
	client := NewClient(server.URL, nil)

	_, err := client.FetchOverview(context.Background())
	assert.Error(t, err)
}

func TestFetchHTTPError(t *testing.T) {
	server := newTestServer(t, map[string]string{})
	client := NewClient(server.URL, nil)

	_, err := client.FetchUtilizationRate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "utilization")
}

func newRedisGetter(t *testing.T) (*upstream.Getter, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	port, err := strconv.Atoi(server.Port())
	require.NoError(t, err)
	client, err := cache.NewRedisClient(config.RedisConfig{Host: server.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	g := upstream.NewGetter(time.Second)
	g.Cache = cache.NewRedis(client)
	g.TTL = time.Minute
	return g, server
}

func TestFetchRetcodeErrorIsNotCached(t *testing.T) {
	var calls int32
	upstreamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"retcode":500,"message":"busy","data":null}`))
			return
		}
		_, _ = w.Write([]byte(overviewFixture))
	}))
	defer upstreamServer.Close()

	getter, redisServer := newRedisGetter(t)
	client := NewClient(upstreamServer.URL, getter)

	_, err := client.FetchOverview(context.Background())
	var apiErr APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.Code)
	assert.False(t, redisServer.Exists(cache.KeyPrefix+upstreamServer.URL+PathOverview))

	overview, err := client.FetchOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 86, overview.ScheduleID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.True(t, redisServer.Exists(cache.KeyPrefix+upstreamServer.URL+PathOverview))

	overview, err = client.FetchOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 86, overview.ScheduleID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchMalformedBodyIsNotCached(t *testing.T) {
	var calls int32
	upstreamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer upstreamServer.Close()

	getter, redisServer := newRedisGetter(t)
	client := NewClient(upstreamServer.URL, getter)

	for i := 0; i < 2; i++ {
		_, err := client.FetchUtilizationRate(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.False(t, redisServer.Exists(cache.KeyPrefix+upstreamServer.URL+PathUtilizationRate))
}

package infinitive_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInfinitive records what it was sent and answers with body/status
type fakeInfinitive struct {
	sync.Mutex
	gets      int
	puts      int
	auth      []string
	putBody   string
	putType   string
	body      string
	getStatus int
	putStatus int
	release   chan struct{} // if set, GETs block until it is closed
}

func (f *fakeInfinitive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/zone/1/config" {
		http.NotFound(w, r)
		return
	}

	f.Lock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.Unlock()

	switch r.Method {
	case http.MethodGet:
		f.Lock()
		f.gets++
		release := f.release
		status, body := f.getStatus, f.body
		f.Unlock()
		if release != nil {
			<-release
		}
		if status != 0 {
			w.WriteHeader(status)
		}
		_, _ = io.WriteString(w, body)
	case http.MethodPut:
		raw, _ := io.ReadAll(r.Body)
		f.Lock()
		f.puts++
		f.putBody = string(raw)
		f.putType = r.Header.Get("Content-Type")
		status := f.putStatus
		f.Unlock()
		if status != 0 {
			w.WriteHeader(status)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeInfinitive) lastPut() (string, string) {
	f.Lock()
	defer f.Unlock()
	return f.putBody, f.putType
}

func (f *fakeInfinitive) authHeaders() []string {
	f.Lock()
	defer f.Unlock()
	return append([]string(nil), f.auth...)
}

func (f *fakeInfinitive) counts() (int, int) {
	f.Lock()
	defer f.Unlock()
	return f.gets, f.puts
}

func newFake(t *testing.T) (*fakeInfinitive, *httptest.Server) {
	t.Helper()
	f := &fakeInfinitive{body: zoneConfig}
	s := httptest.NewServer(f)
	t.Cleanup(s.Close)
	return f, s
}

func TestClient_FetchState(t *testing.T) {
	f, s := newFake(t)
	c := infinitive.New(s.URL, "", "")

	state, err := c.FetchState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 71.0, state.CurrentTemp)
	assert.Equal(t, "heat", state.Mode)
	assert.Equal(t, []string{""}, f.authHeaders())
}

func TestClient_BasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     string
	}{
		{name: "both", username: "user", password: "secret", want: "Basic " + base64.StdEncoding.EncodeToString([]byte("user:secret"))},
		{name: "username only", username: "user"},
		{name: "password only", password: "secret"},
		{name: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, s := newFake(t)
			c := infinitive.New(s.URL+"/", tt.username, tt.password)

			_, err := c.FetchState(context.Background())
			require.NoError(t, err)
			require.NoError(t, c.SetState(context.Background(), infinitive.Update{Hold: infinitive.Bool(true)}))
			assert.Equal(t, []string{tt.want, tt.want}, f.authHeaders())
		})
	}
}

func TestClient_Cache(t *testing.T) {
	f, s := newFake(t)
	reg := prometheus.NewRegistry()
	m := infinitive.NewMetrics(reg)
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(100*time.Millisecond), infinitive.WithMetrics(m))
	ctx := context.Background()

	_, err := c.FetchState(ctx)
	require.NoError(t, err)
	_, err = c.FetchState(ctx)
	require.NoError(t, err)

	gets, _ := f.counts()
	assert.Equal(t, 1, gets)

	time.Sleep(200 * time.Millisecond)
	_, err = c.FetchState(ctx)
	require.NoError(t, err)

	gets, _ = f.counts()
	assert.Equal(t, 2, gets)

	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP infinitive_cache_hits_total Zone config reads served from the response cache
# TYPE infinitive_cache_hits_total counter
infinitive_cache_hits_total 1
# HELP infinitive_cache_misses_total Zone config reads that went to the Infinitive API
# TYPE infinitive_cache_misses_total counter
infinitive_cache_misses_total 2
# HELP infinitive_requests_total Requests sent to the Infinitive API
# TYPE infinitive_requests_total counter
infinitive_requests_total{code="200",method="GET"} 2
`), "infinitive_cache_hits_total", "infinitive_cache_misses_total", "infinitive_requests_total"))
}

func TestClient_CacheDisabled(t *testing.T) {
	f, s := newFake(t)
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(0))

	for i := 0; i < 3; i++ {
		_, err := c.FetchState(context.Background())
		require.NoError(t, err)
	}
	gets, _ := f.counts()
	assert.Equal(t, 3, gets)
}

func TestClient_SetStatePurgesCache(t *testing.T) {
	f, s := newFake(t)
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(time.Minute))
	ctx := context.Background()

	_, err := c.FetchState(ctx)
	require.NoError(t, err)

	require.NoError(t, c.SetState(ctx, infinitive.Update{Mode: infinitive.String("cool")}))

	_, err = c.FetchState(ctx)
	require.NoError(t, err)

	gets, puts := f.counts()
	assert.Equal(t, 2, gets)
	assert.Equal(t, 1, puts)
}

func TestClient_SetStatePurgesCacheOnFailure(t *testing.T) {
	f, s := newFake(t)
	f.putStatus = http.StatusInternalServerError
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(time.Minute))
	ctx := context.Background()

	_, err := c.FetchState(ctx)
	require.NoError(t, err)
	require.Error(t, c.SetState(ctx, infinitive.Update{Mode: infinitive.String("cool")}))
	_, err = c.FetchState(ctx)
	require.NoError(t, err)

	gets, _ := f.counts()
	assert.Equal(t, 2, gets)
}

func TestClient_SetState(t *testing.T) {
	f, s := newFake(t)
	c := infinitive.New(s.URL, "", "")

	err := c.SetState(context.Background(), infinitive.Update{
		Mode:    infinitive.String("heat"),
		FanMode: infinitive.String("auto"),
		Hold:    infinitive.Bool(true),
	})
	require.NoError(t, err)
	body, contentType := f.lastPut()
	assert.JSONEq(t, `{"mode":"heat","fanMode":"auto","hold":true}`, body)
	assert.Equal(t, "application/json", contentType)
}

func TestClient_SetStateFailure(t *testing.T) {
	f, s := newFake(t)
	f.putStatus = http.StatusInternalServerError
	c := infinitive.New(s.URL, "", "")

	err := c.SetState(context.Background(), infinitive.Update{Hold: infinitive.Bool(true)})
	var rwe *infinitive.RemoteWriteError
	require.True(t, errors.As(err, &rwe), err)
	assert.Equal(t, 500, rwe.Status)
	assert.Equal(t, "Internal Server Error", rwe.StatusText)
	assert.Equal(t, "setState failed (500 Internal Server Error)", err.Error())
}

func TestClient_FetchStateInvalid(t *testing.T) {
	f, s := newFake(t)
	f.body = `{"currentTemp":71,"currentHumidity":44,"outdoorTemp":38,"mode":"heat","fanMode":"auto","heatSetpoint":68,"coolSetpoint":76}`
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(time.Minute))

	state, err := c.FetchState(context.Background())
	assert.Nil(t, state)
	var sve *infinitive.SchemaValidationError
	require.True(t, errors.As(err, &sve), err)
	assert.Equal(t, "hold", sve.Field)

	// invalid bodies are not cached
	_, _ = c.FetchState(context.Background())
	gets, _ := f.counts()
	assert.Equal(t, 2, gets)
}

func TestClient_FetchStateHTTPError(t *testing.T) {
	f, s := newFake(t)
	f.getStatus = http.StatusUnauthorized
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(time.Minute))

	_, err := c.FetchState(context.Background())
	var rre *infinitive.RemoteReadError
	require.True(t, errors.As(err, &rre), err)
	assert.Equal(t, http.StatusUnauthorized, rre.Status)

	f.Lock()
	f.getStatus = 0
	f.Unlock()
	_, err = c.FetchState(context.Background())
	assert.NoError(t, err)
}

func TestClient_TransportError(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	c := infinitive.New(url, "", "", infinitive.WithTimeout(time.Second))
	_, err := c.FetchState(context.Background())
	require.Error(t, err)

	err = c.SetState(context.Background(), infinitive.Update{})
	require.Error(t, err)
	var rwe *infinitive.RemoteWriteError
	assert.False(t, errors.As(err, &rwe))
}

func TestClient_FetchRacingWrite(t *testing.T) {
	f, s := newFake(t)
	f.release = make(chan struct{})
	c := infinitive.New(s.URL, "", "", infinitive.WithCacheTTL(time.Minute))
	ctx := context.Background()

	done := make(chan error)
	go func() {
		_, err := c.FetchState(ctx)
		done <- err
	}()

	// wait for the GET to reach the server before writing
	require.Eventually(t, func() bool {
		gets, _ := f.counts()
		return gets == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.SetState(ctx, infinitive.Update{Mode: infinitive.String("off")}))
	close(f.release)
	require.NoError(t, <-done)

	f.Lock()
	f.release = nil
	f.Unlock()

	// the response to the GET that started before the write must not have been cached
	_, err := c.FetchState(ctx)
	require.NoError(t, err)
	gets, _ := f.counts()
	assert.Equal(t, 2, gets)
}

func TestClient_Timeout(t *testing.T) {
	f, s := newFake(t)
	release := make(chan struct{})
	f.release = release
	defer close(release)

	shared := &http.Client{}
	// the timeout applies whatever the option order, without touching the caller's client
	c := infinitive.New(s.URL, "", "", infinitive.WithTimeout(50*time.Millisecond), infinitive.WithHTTPClient(shared))

	start := time.Now()
	_, err := c.FetchState(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, time.Duration(0), shared.Timeout)
}

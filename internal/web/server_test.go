package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_clips/internal/browse"
	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
	"github.com/anatolykoptev/go_clips/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeEntries(query string, page, perPage int) []catalog.Entry {
	out := make([]catalog.Entry, perPage)
	for i := range out {
		id := int64((page-1)*perPage + i + 1)
		out[i] = catalog.Entry{
			ID:       id,
			URL:      fmt.Sprintf("https://www.pexels.com/video/%s-%d/", query, id),
			Image:    fmt.Sprintf("https://images.example/%d.jpg", id),
			Duration: 65,
			User:     &catalog.User{Name: "Uploader"},
			Files:    []catalog.File{{Quality: "sd", Height: 360, Link: fmt.Sprintf("https://cdn.example/%d.mp4", id)}},
		}
	}
	return out
}

type testEnv struct {
	srv     *httptest.Server
	client  *http.Client
	store   *session.Store
	fetches *atomic.Int64
	lookups *atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, Options{SessionTTL: time.Hour})
}

func newTestEnvWith(t *testing.T, opts Options) *testEnv {
	t.Helper()
	engine.InitCache("", time.Minute, 100, time.Hour)

	var fetches, lookups atomic.Int64
	fetch := browse.FetcherFunc(func(ctx context.Context, query string, page, perPage int) ([]catalog.Entry, error) {
		fetches.Add(1)
		return fakeEntries(query, page, perPage), nil
	})
	store := session.NewStore(func() *browse.Controller {
		return browse.New(fetch, browse.Options{DebounceDelay: 10 * time.Millisecond})
	}, time.Hour, 100)
	lookup := func(ctx context.Context, id int64) (catalog.Entry, error) {
		lookups.Add(1)
		if id >= 9000 {
			e := fakeEntries("lookup", 1, 1)[0]
			e.ID = id
			return e, nil
		}
		return catalog.Entry{}, &engine.FetchError{Op: "video", Status: 404, Msg: "Failed to fetch videos"}
	}

	srv := httptest.NewServer(NewRouter(store, lookup, opts))
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, store: store, fetches: &fetches, lookups: &lookups}
}

// visit loads the page, which issues the session cookie.
func (e *testEnv) visit(t *testing.T) {
	t.Helper()
	resp, _ := e.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) state(t *testing.T) browse.State {
	t.Helper()
	resp, data := e.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s browse.State
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func (e *testEnv) waitIdle(t *testing.T, cond func(browse.State) bool) browse.State {
	t.Helper()
	var s browse.State
	require.Eventually(t, func() bool {
		s = e.state(t)
		return s.Loading == browse.Idle && cond(s)
	}, 2*time.Second, 5*time.Millisecond)
	return s
}

func TestIndexCreatesSession(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, resp.Header.Get("Accept-CH"), "ECT")
	assert.Contains(t, string(body), `id="search"`)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "session cookie should be set")
	assert.Equal(t, 1, env.store.Len())

	env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, 1, env.store.Len(), "cookie should reuse the session")
}

func TestSearchLoadMoreFlow(t *testing.T) {
	env := newTestEnv(t)
	env.visit(t)
	env.do(t, http.MethodPost, "/api/viewport", `{"width": 800, "network": "3g"}`)

	resp, _ := env.do(t, http.MethodPost, "/api/search", `{"term": "cereal"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	s := env.waitIdle(t, func(s browse.State) bool { return s.Query == "cereal" && len(s.Videos) > 0 })
	assert.Equal(t, "cereal", s.Term)
	assert.Len(t, s.Videos, catalog.MediumPerPage)
	assert.True(t, s.HasMore)
	assert.Equal(t, "medium", s.Network)

	resp, data := env.do(t, http.MethodPost, "/api/more", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var more struct {
		Started bool `json:"started"`
	}
	require.NoError(t, json.Unmarshal(data, &more))
	assert.True(t, more.Started)

	s = env.waitIdle(t, func(s browse.State) bool { return s.Page == 2 })
	assert.Len(t, s.Videos, 2*catalog.MediumPerPage)
}

func TestQueryAppliesImmediately(t *testing.T) {
	env := newTestEnv(t)
	env.visit(t)
	resp, _ := env.do(t, http.MethodPost, "/api/query", `{"query": "ocean"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	s := env.state(t)
	assert.Equal(t, "ocean", s.Query)
}

func TestSelectAndClear(t *testing.T) {
	env := newTestEnv(t)
	env.visit(t)
	env.waitIdle(t, func(s browse.State) bool { return len(s.Videos) > 0 })

	resp, data := env.do(t, http.MethodPost, "/api/select", `{"id": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s browse.State
	require.NoError(t, json.Unmarshal(data, &s))
	require.NotNil(t, s.Selected)
	assert.Equal(t, int64(2), s.Selected.ID)
	assert.Equal(t, "https://cdn.example/2.mp4", s.Selected.VideoFile)

	resp, _ = env.do(t, http.MethodPost, "/api/select", `{"id": 9000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "clip outside the result set is looked up")
	assert.Equal(t, int64(9000), env.state(t).Selected.ID)
	assert.Equal(t, int64(1), env.lookups.Load())

	resp, data = env.do(t, http.MethodPost, "/api/select", `{"id": 12345}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(data), "Failed to fetch videos")

	resp, _ = env.do(t, http.MethodDelete, "/api/select", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, env.state(t).Selected)
}

func TestBadRequests(t *testing.T) {
	env := newTestEnv(t)
	env.visit(t)
	for _, path := range []string{"/api/search", "/api/query", "/api/select", "/api/viewport"} {
		resp, _ := env.do(t, http.MethodPost, path, `{not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestClientHints(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Sec-CH-Viewport-Width", "1440")
	req.Header.Set("ECT", "4g")
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	s := env.waitIdle(t, func(s browse.State) bool { return len(s.Videos) > 0 })
	assert.Equal(t, catalog.WidePerPage, s.PerPage)
	assert.Len(t, s.Videos, catalog.WidePerPage, "first page is sized from the hint")
	assert.Equal(t, "fast", s.Network)
}

func TestMetricsAndHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, body = env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests ")
	assert.Contains(t, string(body), "sessions_created ")
}

func TestWebsocketPushesState(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/", "")

	u := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	header := http.Header{}
	for _, c := range env.client.Jar.Cookies(mustURL(t, env.srv.URL)) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	require.NoError(t, err)
	defer conn.Close()

	var first browse.State
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))

	env.do(t, http.MethodPost, "/api/query", `{"query": "waves"}`)
	for {
		var s browse.State
		require.NoError(t, conn.ReadJSON(&s))
		if s.Query == "waves" && s.Loading == browse.Idle {
			assert.NotEmpty(t, s.Videos)
			break
		}
	}
}

func TestServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestLookupIsCached(t *testing.T) {
	env := newTestEnv(t)
	env.visit(t)
	env.waitIdle(t, func(s browse.State) bool { return len(s.Videos) > 0 })

	for range 3 {
		resp, _ := env.do(t, http.MethodPost, "/api/select", `{"id": 9100}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		env.do(t, http.MethodDelete, "/api/select", "")
	}
	assert.Equal(t, int64(1), env.lookups.Load())
}

func TestAPIRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	anon := &http.Client{}

	for range 5 {
		for _, r := range []struct{ method, path, body string }{
			{http.MethodPost, "/api/more", ""},
			{http.MethodPost, "/api/search", `{"term": "cats"}`},
			{http.MethodGet, "/api/state", ""},
			{http.MethodPost, "/api/viewport", `{"width": 800}`},
			{http.MethodGet, "/ws", ""},
		} {
			var body io.Reader
			if r.body != "" {
				body = strings.NewReader(r.body)
			}
			req, err := http.NewRequest(r.method, env.srv.URL+r.path, body)
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			resp, err := anon.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.path)
			assert.Empty(t, resp.Header.Values("Set-Cookie"), r.path)
		}
	}

	// Cookieless page loads issue sessions but fetch nothing.
	for range 3 {
		resp, err := anon.Get(env.srv.URL + "/")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 3, env.store.Len())
	assert.Never(t, func() bool { return env.fetches.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestFirstFetchWaitsForViewport(t *testing.T) {
	env := newTestEnv(t)
	env.visit(t)
	assert.Equal(t, int64(0), env.fetches.Load())

	resp, _ := env.do(t, http.MethodPost, "/api/viewport", `{"width": 1440}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := env.waitIdle(t, func(s browse.State) bool { return len(s.Videos) > 0 })
	assert.Len(t, s.Videos, catalog.WidePerPage)
	assert.Equal(t, int64(1), env.fetches.Load())
}

func TestSessionCookieSlides(t *testing.T) {
	env := newTestEnvWith(t, Options{SessionTTL: time.Second})
	env.visit(t)

	deadline := time.Now().Add(1800 * time.Millisecond)
	for time.Now().Before(deadline) {
		resp, _ := env.do(t, http.MethodGet, "/api/state", "")
		require.Equal(t, http.StatusOK, resp.StatusCode, "active session must keep its cookie")
		time.Sleep(300 * time.Millisecond)
	}
	env.visit(t)
	assert.Equal(t, 1, env.store.Len())
}

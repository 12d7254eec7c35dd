package server_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/server"
)

const feedICS = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

func serve(srv *server.FeedServer, req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w.Result()
}

// -----------------------------------------------------------------------------
// Handler
// -----------------------------------------------------------------------------

func TestHandler_ServingContent(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte(feedICS))

	for _, path := range []string{"/", config.RouteFeed} {
		t.Run(path, func(t *testing.T) {
			resp := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
			assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, feedICS, string(body))
		})
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte(feedICS))

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "/other", nil))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Head(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte(feedICS))

	resp := serve(srv, httptest.NewRequest(http.MethodHead, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_Caching(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte("DATA_VERSION_1"))

	first := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	_ = first.Body.Close()
	etag := first.Header.Get(config.HeaderETag)
	lastModified := first.Header.Get(config.HeaderLastModified)
	require.NotEmpty(t, etag)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"Matching ETag", config.HeaderIfNoneMatch, etag, http.StatusNotModified},
		{"ETag among others", config.HeaderIfNoneMatch, `"stale", ` + etag, http.StatusNotModified},
		{"Weak ETag", config.HeaderIfNoneMatch, "W/" + etag, http.StatusNotModified},
		{"Stale ETag", config.HeaderIfNoneMatch, `"stale"`, http.StatusOK},
		{"Same Last-Modified", config.HeaderIfModifiedSince, lastModified, http.StatusNotModified},
		{"Older Last-Modified", config.HeaderIfModifiedSince, "Mon, 01 Jan 2001 00:00:00 GMT", http.StatusOK},
		{"Garbage date", config.HeaderIfModifiedSince, "yesterday", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(tt.header, tt.value)
			resp := serve(srv, req)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusNotModified {
				body, _ := io.ReadAll(resp.Body)
				assert.Empty(t, body, "Body must be empty on 304 Not Modified")
			}
		})
	}
}

func TestPublish_IdenticalContentKeepsValidators(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte(feedICS))

	first := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	_ = first.Body.Close()

	time.Sleep(1100 * time.Millisecond)
	srv.Publish([]byte(feedICS))

	second := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	_ = second.Body.Close()
	assert.Equal(t, first.Header.Get(config.HeaderLastModified), second.Header.Get(config.HeaderLastModified))

	srv.Publish([]byte(feedICS + "X"))
	third := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	_ = third.Body.Close()
	assert.NotEqual(t, first.Header.Get(config.HeaderETag), third.Header.Get(config.HeaderETag))
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := server.NewFeedServer("0")

	resp := serve(srv, httptest.NewRequest(http.MethodPost, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestHandler_Initializing(t *testing.T) {
	srv := server.NewFeedServer("0")

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// -----------------------------------------------------------------------------
// Concurrency (run with -race)
// -----------------------------------------------------------------------------

func TestServer_ConcurrentPublish(t *testing.T) {
	srv := server.NewFeedServer("0")
	handler := srv.Handler()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Publish([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
			}
		}(w)
	}

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status code: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Real TCP lifecycle
// -----------------------------------------------------------------------------

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return strconv.Itoa(port)
}

func TestServer_Lifecycle(t *testing.T) {
	port := freePort(t)
	srv := server.NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	url := "http://127.0.0.1:" + port + config.RouteFeed
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusServiceUnavailable
	}, 2*time.Second, 50*time.Millisecond, "server failed to listen in time")

	srv.Publish([]byte(feedICS))

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "graceful shutdown returns nil")
	case <-time.After(5 * time.Second):
		t.Fatal("server shutdown timed out")
	}
}

func TestServer_StartErrors(t *testing.T) {
	t.Run("Empty port", func(t *testing.T) {
		err := server.NewFeedServer("").Start(context.Background())
		assert.EqualError(t, err, config.ErrPortRequired)
	})

	t.Run("Port in use", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer func() { _ = ln.Close() }()
		port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

		err = server.NewFeedServer(port).Start(context.Background())
		assert.ErrorContains(t, err, config.ErrServerStartup)
	})
}

// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package handlers

import (
	"context"
	"kekik-m3u8-proxy/config"
	"kekik-m3u8-proxy/fetcher"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const masterPlaylist = "#EXTM3U\n" +
	"#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360\n" +
	"360p.m3u8\n" +
	`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="a",URI="https://cdn.example/aac.m3u8"`

func newTestRouter(t *testing.T, origin http.Handler) (*gin.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(origin)
	t.Cleanup(srv.Close)

	client, err := fetcher.NewHTTPClient("")
	if err != nil {
		t.Fatal(err)
	}
	f := fetcher.New(client)
	f.Sleep = func(context.Context, time.Duration) error { return nil }

	cfg := &config.Config{Host: "127.0.0.1", Port: "8080", PublicURL: "https://proxy.example"}
	p := NewProxy(cfg, f, client)

	r := gin.New()
	// üst katmandan devralınan başlıkları taklit eder
	r.Use(func(c *gin.Context) {
		c.Header("x-cache", "HIT")
		c.Header("via", "1.1 cdn")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Next()
	})
	r.GET("/m3u8-proxy", p.M3U8Proxy)
	r.GET("/ts-proxy", p.SegmentProxy)
	r.HEAD("/ts-proxy", p.SegmentProxy)
	return r, srv
}

func get(r http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestM3U8ProxyMissingURL(t *testing.T) {
	r, _ := newTestRouter(t, http.NotFoundHandler())

	w := get(r, "/m3u8-proxy", nil)
	if w.Code != http.StatusBadRequest || w.Body.String() != "URL parameter is required" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestM3U8ProxyInvalidParams(t *testing.T) {
	r, _ := newTestRouter(t, http.NotFoundHandler())

	tests := []struct {
		query string
		body  string
	}{
		{"url=" + url.QueryEscape("/relative.m3u8"), "Invalid URL parameter"},
		{"url=" + url.QueryEscape("ftp://a.example/x.m3u8"), "Invalid URL parameter"},
		{"url=" + url.QueryEscape("https://a.example/x.m3u8") + "&headers=" + url.QueryEscape("{bad"), "Invalid headers parameter"},
	}
	for _, tt := range tests {
		w := get(r, "/m3u8-proxy?"+tt.query, nil)
		if w.Code != http.StatusBadRequest || w.Body.String() != tt.body {
			t.Errorf("%s: got %d %q", tt.query, w.Code, w.Body.String())
		}
	}
}

func TestM3U8ProxyRewritesMaster(t *testing.T) {
	var gotReferer atomic.Value
	r, srv := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotReferer.Store(req.Header.Get("Referer"))
		w.Header().Set("x-amz-cf-id", "xyz")
		w.Write([]byte(masterPlaylist))
	}))

	target := srv.URL + "/live/master.m3u8"
	headersJSON := `{"Referer":"https://site.example/"}`
	w := get(r, "/m3u8-proxy?url="+url.QueryEscape(target)+"&headers="+url.QueryEscape(headersJSON), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if got := gotReferer.Load(); got != "https://site.example/" {
		t.Errorf("origin saw Referer %v", got)
	}

	h := w.Header()
	if h.Get("Content-Type") != "application/vnd.apple.mpegurl" {
		t.Errorf("Content-Type = %q", h.Get("Content-Type"))
	}
	for _, k := range []string{"Access-Control-Allow-Origin", "Access-Control-Allow-Headers", "Access-Control-Allow-Methods"} {
		if h.Get(k) != "*" {
			t.Errorf("%s = %q", k, h.Get(k))
		}
	}
	for _, k := range []string{"X-Cache", "Via", "Access-Control-Allow-Credentials", "X-Amz-Cf-Id"} {
		if h.Get(k) != "" {
			t.Errorf("%s = %q, want stripped", k, h.Get(k))
		}
	}

	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	u, err := url.Parse(lines[2])
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "proxy.example" || u.Path != "/m3u8-proxy" {
		t.Errorf("variant link = %q", lines[2])
	}
	if got := u.Query().Get("url"); got != srv.URL+"/live/360p.m3u8" {
		t.Errorf("variant url = %q", got)
	}
	if got := u.Query().Get("headers"); got != headersJSON {
		t.Errorf("variant headers = %q", got)
	}
	if !strings.Contains(lines[3], `URI="https://proxy.example/m3u8-proxy?url=https%3A%2F%2Fcdn.example%2Faac.m3u8&headers=`) {
		t.Errorf("audio line = %q", lines[3])
	}
}

func TestM3U8ProxyForbidden(t *testing.T) {
	var hits atomic.Int32
	r, srv := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	target := srv.URL + "/master.m3u8"
	w := get(r, "/m3u8-proxy?url="+url.QueryEscape(target), nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Access denied (403) for URL: "+target) {
		t.Errorf("body = %q", w.Body.String())
	}
	if hits.Load() != 9 {
		t.Errorf("origin hits = %d, want 9", hits.Load())
	}
}

func TestM3U8ProxyUpstreamFailure(t *testing.T) {
	r, srv := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	w := get(r, "/m3u8-proxy?url="+url.QueryEscape(srv.URL+"/gone.m3u8"), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	if w.Body.String() != "Failed to fetch M3U8: request failed with status code 404" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestM3U8ProxyUnreachableOrigin(t *testing.T) {
	r, srv := newTestRouter(t, http.NotFoundHandler())
	target := srv.URL + "/master.m3u8"
	srv.Close()

	w := get(r, "/m3u8-proxy?url="+url.QueryEscape(target), nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Failed to fetch M3U8: ") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSegmentProxy(t *testing.T) {
	r, srv := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Referer") != "https://site.example/" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if req.Header.Get("Range") == "bytes=0-3" {
			w.Header().Set("Content-Range", "bytes 0-3/10")
			w.WriteHeader(http.StatusPartialContent)
			w.Write([]byte("0123"))
			return
		}
		w.Write([]byte("0123456789"))
	}))

	target := url.QueryEscape(srv.URL + "/seg0.ts")
	headers := url.QueryEscape(`{"Referer":"https://site.example/"}`)

	w := get(r, "/ts-proxy?url="+target+"&headers="+headers, nil)
	if w.Code != http.StatusOK || w.Body.String() != "0123456789" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("ACAO = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = get(r, "/ts-proxy?url="+target+"&headers="+headers, http.Header{"Range": {"bytes=0-3"}})
	if w.Code != http.StatusPartialContent || w.Body.String() != "0123" || w.Header().Get("Content-Range") != "bytes 0-3/10" {
		t.Errorf("range: got %d %q %q", w.Code, w.Body.String(), w.Header().Get("Content-Range"))
	}

	w = get(r, "/ts-proxy?url="+target, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("without referer: status = %d", w.Code)
	}

	w = get(r, "/ts-proxy", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d", w.Code)
	}
}

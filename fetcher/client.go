// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
)

var ErrTooManyRedirects = errors.New("stopped after 5 redirects")

// NewHTTPClient 30 sn zaman aşımlı, en fazla 5 yönlendirme izleyen istemci.
// upstreamProxy boş değilse http(s):// veya socks5:// üzerinden çıkılır.
func NewHTTPClient(upstreamProxy string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	transport.IdleConnTimeout = 90 * time.Second

	if upstreamProxy != "" {
		u, err := url.Parse(upstreamProxy)
		if err != nil {
			return nil, fmt.Errorf("upstream proxy: %w", err)
		}

		switch u.Scheme {
		case "http", "https":
			transport.Proxy = http.ProxyURL(u)
		case "socks5", "socks5h":
			dialer, err := proxy.FromURL(u, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("upstream proxy: %w", err)
			}
			transport.Proxy = nil
			transport.DialContext = contextDialer(dialer)
		default:
			return nil, fmt.Errorf("upstream proxy: unsupported scheme %q", u.Scheme)
		}
	}

	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= DefaultMaxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}, nil
}

func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

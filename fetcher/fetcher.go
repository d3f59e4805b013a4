// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"kekik-m3u8-proxy/metrics"
	"kekik-m3u8-proxy/utils"
	"net/http"
	"net/url"
	"time"

	"github.com/pterm/pterm"
)

const (
	DefaultRetryDelay            = time.Second
	DefaultMaxAttemptsPerProfile = 3
	DefaultMaxBodyBytes          = 16 << 20
)

// ErrOriginForbidden origin en az bir denemede 403 döndü ve hiçbir profil başarılı olmadı
var ErrOriginForbidden = errors.New("origin denied access (403)")

// Doer *http.Client ile uyumlu istemci arayüzü
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result başarılı (status < 400) upstream yanıtı
type Result struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Profile    string
}

// Error başarısız getirme. StatusCode 0 ise durum bilinmiyor (ağ hatası, zaman aşımı).
type Error struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Forbidden origin erişimi açıkça reddetti mi
func (e *Error) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// Fetcher playlist'i sırayla başlık profilleriyle dener.
// Sleep testlerde gerçek bekleme yapmamak için değiştirilebilir.
type Fetcher struct {
	Client                Doer
	Sleep                 func(ctx context.Context, d time.Duration) error
	RetryDelay            time.Duration
	MaxAttemptsPerProfile int
	MaxBodyBytes          int64
}

func New(client Doer) *Fetcher {
	return &Fetcher{
		Client:                client,
		Sleep:                 sleepContext,
		RetryDelay:            DefaultRetryDelay,
		MaxAttemptsPerProfile: DefaultMaxAttemptsPerProfile,
		MaxBodyBytes:          DefaultMaxBodyBytes,
	}
}

// Fetch ilk başarılı profilin sonucunu ya da son hatayı döner.
// Herhangi bir denemede 403 görüldüyse hata ErrOriginForbidden sarar.
func (f *Fetcher) Fetch(ctx context.Context, target *url.URL, clientHeaders map[string]string) (*Result, error) {
	var (
		lastErr   *Error
		forbidden bool
	)

	for i, profile := range utils.HeaderProfiles(target, clientHeaders) {
		pterm.Debug.Printf("Attempting request %d (%s) for URL: %s\n", i+1, profile.Name, target)

		res, err := f.fetchProfile(ctx, target, profile)
		if err == nil {
			pterm.Debug.Printf("Success with header set %d (%s)\n", i+1, profile.Name)
			metrics.FetchOutcomes.WithLabelValues("ok").Inc()
			return res, nil
		}

		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.FetchOutcomes.WithLabelValues("failed").Inc()
			return nil, &Error{URL: target.String(), Err: ctxErr}
		}
		if err.Forbidden() {
			forbidden = true
		}
		pterm.Warning.Printf("Header set %d (%s) failed: %s\n", i+1, profile.Name, describe(err))
	}

	if forbidden {
		metrics.FetchOutcomes.WithLabelValues("forbidden").Inc()
		return nil, &Error{StatusCode: http.StatusForbidden, URL: target.String(), Err: ErrOriginForbidden}
	}

	metrics.FetchOutcomes.WithLabelValues("failed").Inc()
	if lastErr == nil {
		return nil, &Error{URL: target.String(), Err: errors.New("no header profile available")}
	}
	return nil, lastErr
}

// fetchProfile 403 geldikçe aynı profili RetryDelay arayla yeniden dener
func (f *Fetcher) fetchProfile(ctx context.Context, target *url.URL, profile utils.HeaderProfile) (*Result, *Error) {
	maxAttempts := f.MaxAttemptsPerProfile
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		res, err := f.attempt(ctx, target, profile)
		if err == nil {
			metrics.FetchAttempts.WithLabelValues(profile.Name, "ok").Inc()
			return res, nil
		}
		metrics.FetchAttempts.WithLabelValues(profile.Name, attemptResult(err)).Inc()

		if !err.Forbidden() || attempt >= maxAttempts {
			return nil, err
		}

		pterm.Debug.Printf("Retry %d for URL: %s\n", attempt, target)
		if sleepErr := f.sleep(ctx, f.RetryDelay); sleepErr != nil {
			return nil, &Error{URL: target.String(), Err: sleepErr}
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context, target *url.URL, profile utils.HeaderProfile) (*Result, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &Error{URL: target.String(), Err: err}
	}
	req.Header = profile.Header.Clone()

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &Error{URL: target.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &Error{
			StatusCode: resp.StatusCode,
			URL:        target.String(),
			Err:        fmt.Errorf("request failed with status code %d", resp.StatusCode),
		}
	}

	body, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body, f.maxBodyBytes())
	if err != nil {
		return nil, &Error{URL: target.String(), Err: err}
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
		Profile:    profile.Name,
	}, nil
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) error {
	if f.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return f.Sleep(ctx, d)
}

func (f *Fetcher) maxBodyBytes() int64 {
	if f.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return f.MaxBodyBytes
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func attemptResult(err *Error) string {
	switch {
	case err.Forbidden():
		return "forbidden"
	case err.StatusCode != 0:
		return "status"
	default:
		return "error"
	}
}

func describe(err *Error) string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("%d", err.StatusCode)
	}
	return err.Error()
}

// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package handlers

import (
	"kekik-m3u8-proxy/config"
	"kekik-m3u8-proxy/fetcher"
	"kekik-m3u8-proxy/utils"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Proxy playlist ve segment endpoint'lerinin ortak bağımlılıkları
type Proxy struct {
	cfg     *config.Config
	fetcher *fetcher.Fetcher
	client  fetcher.Doer
}

// NewProxy client segment isteklerinde, fetcher playlist isteklerinde kullanılır
func NewProxy(cfg *config.Config, f *fetcher.Fetcher, client fetcher.Doer) *Proxy {
	return &Proxy{
		cfg:     cfg,
		fetcher: f,
		client:  client,
	}
}

// parseProxyParams url ve headers sorgu parametrelerini doğrular; hata varsa yanıtı yazar
func parseProxyParams(c *gin.Context) (*url.URL, map[string]string, bool) {
	urlParam := c.Query("url")
	if urlParam == "" {
		c.String(http.StatusBadRequest, "URL parameter is required")
		return nil, nil, false
	}

	target, err := url.Parse(urlParam)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		c.String(http.StatusBadRequest, "Invalid URL parameter")
		return nil, nil, false
	}

	headers, err := utils.ParseClientHeaders(c.Query("headers"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid headers parameter")
		return nil, nil, false
	}

	return target, headers, true
}

// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package handlers

import (
	"errors"
	"kekik-m3u8-proxy/fetcher"
	"kekik-m3u8-proxy/metrics"
	"kekik-m3u8-proxy/utils"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// M3U8Proxy playlist proxy endpoint'i
func (p *Proxy) M3U8Proxy(c *gin.Context) {
	target, headers, ok := parseProxyParams(c)
	if !ok {
		return
	}

	res, err := p.fetcher.Fetch(c.Request.Context(), target, headers)
	if err != nil {
		writeFetchError(c, target, err)
		return
	}

	body := string(res.Body)
	mode := utils.DetectPlaylistMode(body)
	rewritten := utils.RewritePlaylist(body, target, headers, p.cfg.PublicBaseURL())
	metrics.PlaylistsRewritten.WithLabelValues(mode.String()).Inc()

	utils.PreparePlaylistHeaders(c.Writer.Header())
	c.Data(http.StatusOK, utils.PlaylistContentType, []byte(rewritten))
}

// writeFetchError ayrıntıyı loglar, istemciye sade mesaj döner
func writeFetchError(c *gin.Context, target *url.URL, err error) {
	status := http.StatusInternalServerError
	var fe *fetcher.Error
	if errors.As(err, &fe) && fe.StatusCode != 0 {
		status = fe.StatusCode
	}

	pterm.Error.Printf("M3U8 proxy error: %v\n", err)
	pterm.Error.Printf("URL: %s\n", target)
	pterm.Error.Printf("Status: %d\n", status)

	if errors.Is(err, fetcher.ErrOriginForbidden) {
		c.String(http.StatusForbidden,
			"Access denied (403) for URL: %s. The server rejected the request. This may require specific authentication or headers.",
			target,
		)
		return
	}

	c.String(status, "Failed to fetch M3U8: %s", err.Error())
}

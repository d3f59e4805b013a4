// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package handlers

import (
	"io"
	"kekik-m3u8-proxy/metrics"
	"kekik-m3u8-proxy/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SegmentProxy segment ve şifreleme anahtarı proxy endpoint'i
func (p *Proxy) SegmentProxy(c *gin.Context) {
	target, headers, ok := parseProxyParams(c)
	if !ok {
		return
	}

	// Upstream request oluştur
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target.String(), nil)
	if err != nil {
		c.String(http.StatusBadGateway, "Request oluşturulamadı: %s", err.Error())
		return
	}
	req.Header = utils.PrepareSegmentRequestHeaders(headers)

	// Range header kopyalama (Safari/iOS desteği için)
	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		pterm.Error.Printf("Upstream Error (Segment): %s -> %v\n", target, err)
		c.String(http.StatusBadGateway, "Proxy Error: %s", err.Error())
		return
	}
	defer resp.Body.Close()

	// Response headers kopyala
	for _, k := range utils.SegmentResponseHeaders {
		if v := resp.Header.Get(k); v != "" {
			c.Header(k, v)
		}
	}
	c.Header("Content-Type", utils.GetContentType(target, resp.Header))
	for k, v := range utils.CORSHeaders {
		c.Header(k, v)
	}

	c.Status(resp.StatusCode)
	if c.Request.Method == http.MethodHead {
		return
	}

	// Stream body
	buf := make([]byte, 128*1024)
	n, err := io.CopyBuffer(c.Writer, resp.Body, buf)
	metrics.SegmentBytes.Add(float64(n))
	if err != nil {
		pterm.Debug.Printf("Segment stream kesildi: %s -> %v\n", target, err)
	}
}

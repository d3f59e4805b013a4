// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

const RequestIDHeader = "X-Request-Id"

// CustomGinLogger PTerm tabanlı estetik Gin loglayıcı, her isteğe kimlik atar
func CustomGinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method

		// Renk ve ikon belirle
		var statusPrinter *pterm.PrefixPrinter
		switch {
		case status >= 200 && status < 400:
			statusPrinter = &pterm.Success
		case status >= 400 && status < 500:
			statusPrinter = &pterm.Warning
		default:
			statusPrinter = &pterm.Error
		}

		// Metod rengi
		methodColor := pterm.LightMagenta
		switch method {
		case "GET":
			methodColor = pterm.LightCyan
		case "HEAD":
			methodColor = pterm.LightGreen
		case "OPTIONS":
			methodColor = pterm.Yellow
		}

		fullPath := path
		if query != "" {
			fullPath = fmt.Sprintf("%s?%s", path, query)
		}

		// Log formatı: STATUS METHOD LATENCY ID PATH
		statusPrinter.Printf("%s %s %v %s %s\n",
			methodColor(method),
			pterm.White(status),
			pterm.LightBlue(latency.Round(time.Millisecond)),
			pterm.Gray(requestID[:min(8, len(requestID))]),
			pterm.Gray(fullPath),
		)
	}
}

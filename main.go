// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package main

import (
	"fmt"
	"kekik-m3u8-proxy/config"
	"kekik-m3u8-proxy/fetcher"
	"kekik-m3u8-proxy/handlers"
	"kekik-m3u8-proxy/metrics"
	"kekik-m3u8-proxy/middleware"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		pterm.Warning.Printf(".env okunamadı: %v\n", err)
	}

	cfg := config.Load()

	client, err := fetcher.NewHTTPClient(cfg.UpstreamProxy)
	if err != nil {
		pterm.Fatal.Printf("HTTP istemcisi oluşturulamadı: %v\n", err)
	}
	proxy := handlers.NewProxy(cfg, fetcher.New(client), client)

	// Gin mode
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	if gin.Mode() == gin.DebugMode {
		pterm.EnableDebugMessages()
	}

	r := setupRouter(cfg, proxy)

	// Boxed Service Configuration with Title
	pterm.DefaultBox.WithTitle(pterm.LightCyan("KEKIK M3U8 PROXY")).WithTitleBottomRight().Printf(
		"🚀 %s: %s\n🌐 %s: %s\n🔧 %s: %s\n🚦 %s: %.1f rps (burst %d)",
		pterm.LightCyan("Address"), pterm.White(cfg.Addr()),
		pterm.LightGreen("Public URL"), pterm.White(cfg.PublicBaseURL()),
		pterm.LightMagenta("Mode"), pterm.White(gin.Mode()),
		pterm.LightBlue("Rate Limit"), cfg.RateLimitRPS, cfg.RateLimitBurst,
	)
	fmt.Println() // Boşluk

	if err := r.Run(cfg.Addr()); err != nil {
		pterm.Error.Printf("Server hatası: %v\n", err)
	}
}

func setupRouter(cfg *config.Config, proxy *handlers.Proxy) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CustomGinLogger())

	// CORS preflight
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Length", "Content-Range", middleware.RequestIDHeader},
	}))

	// Health check
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "kekik-m3u8-proxy",
			"public_url": cfg.PublicBaseURL(),
		})
	}
	r.GET("/health", healthHandler)
	r.HEAD("/health", healthHandler)
	r.GET("/metrics", metrics.Handler())

	// Proxy endpoints
	limited := r.Group("/", middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	{
		limited.GET("/m3u8-proxy", proxy.M3U8Proxy)
		limited.GET("/ts-proxy", proxy.SegmentProxy)
		limited.HEAD("/ts-proxy", proxy.SegmentProxy)
	}

	return r
}

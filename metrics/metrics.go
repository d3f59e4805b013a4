// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchAttempts profil başına upstream denemeleri (result: ok, forbidden, status, error)
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kekik_m3u8",
		Name:      "fetch_attempts_total",
		Help:      "Upstream playlist fetch attempts by header profile and result.",
	}, []string{"profile", "result"})

	// FetchOutcomes istek başına nihai sonuç (ok, forbidden, failed)
	FetchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kekik_m3u8",
		Name:      "fetch_outcomes_total",
		Help:      "Final playlist fetch outcomes.",
	}, []string{"outcome"})

	PlaylistsRewritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kekik_m3u8",
		Name:      "playlists_rewritten_total",
		Help:      "Rewritten playlists by mode.",
	}, []string{"mode"})

	SegmentBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kekik_m3u8",
		Name:      "segment_bytes_total",
		Help:      "Bytes streamed through the segment proxy.",
	})
)

// Handler /metrics endpoint'i
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

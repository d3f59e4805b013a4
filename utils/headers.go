// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package utils

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const (
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"
	PlayerUserAgent  = "VLC/3.0.16 LibVLC/3.0.16"
	AnimeReferer     = "https://aniwatch.to/"
	AnimeOrigin      = "https://aniwatch.to"

	PlaylistContentType = "application/vnd.apple.mpegurl"
)

// HeaderProfile origin'e karşı sunulan tek bir istemci kimliği
type HeaderProfile struct {
	Name   string
	Header http.Header
}

// strippedPlaylistHeaders playlist yanıtından önce silinen önbellek/CDN/CORS başlıkları
var strippedPlaylistHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Methods",
	"Access-Control-Allow-Headers",
	"Access-Control-Max-Age",
	"Access-Control-Allow-Credentials",
	"Access-Control-Expose-Headers",
	"Access-Control-Request-Method",
	"Access-Control-Request-Headers",
	"Origin",
	"Vary",
	"Referer",
	"Server",
	"x-cache",
	"via",
	"x-amz-cf-pop",
	"x-amz-cf-id",
}

var ContentTypes = map[string]string{
	".m3u8": PlaylistContentType,
	".ts":   "video/mp2t",
	".aac":  "audio/aac",
	".m4s":  "video/iso.segment",
	".mp4":  "video/mp4",
	".key":  "application/octet-stream",
}

var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "*",
	"Access-Control-Allow-Methods": "*",
}

// SegmentResponseHeaders segment yanıtına aktarılan upstream başlıkları
var SegmentResponseHeaders = []string{
	"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges", "Content-Encoding",
}

// GetContentType response header yoksa URL uzantısından içerik tipi belirle
func GetContentType(target *url.URL, responseHeaders http.Header) string {
	if ct := responseHeaders.Get("Content-Type"); ct != "" {
		return ct
	}

	if ct, ok := ContentTypes[strings.ToLower(path.Ext(target.Path))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// HeaderProfiles en özelden en genele üç kimlik döner.
// İstemci başlıkları her profile en son yazılır, aynı anahtarı ezer.
func HeaderProfiles(target *url.URL, clientHeaders map[string]string) []HeaderProfile {
	origin := target.Scheme + "://" + target.Host

	profiles := []HeaderProfile{
		{
			Name: "anime-site",
			Header: newHeader(
				"User-Agent", BrowserUserAgent,
				"Accept", "*/*",
				"Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8",
				"Accept-Encoding", "gzip, deflate, br, zstd",
				"Connection", "keep-alive",
				"Referer", AnimeReferer,
				"Origin", AnimeOrigin,
				"Sec-Ch-Ua", `"Not)A;Brand";v="8", "Chromium";v="138", "Google Chrome";v="138"`,
				"Sec-Ch-Ua-Mobile", "?0",
				"Sec-Ch-Ua-Platform", `"Windows"`,
				"Sec-Fetch-Dest", "empty",
				"Sec-Fetch-Mode", "cors",
				"Sec-Fetch-Site", "cross-site",
			),
		},
		{
			Name: "origin",
			Header: newHeader(
				"User-Agent", BrowserUserAgent,
				"Accept", "application/vnd.apple.mpegurl, application/x-mpegURL, */*",
				"Referer", origin,
				"Origin", origin,
			),
		},
		{
			Name: "media-player",
			Header: newHeader(
				"User-Agent", PlayerUserAgent,
				"Accept", "*/*",
			),
		},
	}

	for _, p := range profiles {
		MergeClientHeaders(p.Header, clientHeaders)
	}
	return profiles
}

// MergeClientHeaders istemci başlıklarını hedef başlıkların üzerine yazar
func MergeClientHeaders(dst http.Header, clientHeaders map[string]string) {
	for k, v := range clientHeaders {
		dst.Set(k, v)
	}
}

// PrepareSegmentRequestHeaders segment/anahtar isteği için başlıkları hazırlar
func PrepareSegmentRequestHeaders(clientHeaders map[string]string) http.Header {
	headers := newHeader(
		"User-Agent", BrowserUserAgent,
		"Accept", "*/*",
		"Accept-Encoding", "identity",
		"Connection", "keep-alive",
	)
	MergeClientHeaders(headers, clientHeaders)
	return headers
}

// PreparePlaylistHeaders devralınan önbellek/CDN/CORS başlıklarını siler,
// playlist içerik tipini ve serbest CORS başlıklarını yazar.
func PreparePlaylistHeaders(h http.Header) {
	for _, name := range strippedPlaylistHeaders {
		h.Del(name)
	}

	h.Set("Content-Type", PlaylistContentType)
	for k, v := range CORSHeaders {
		h.Set(k, v)
	}
}

// ParseClientHeaders headers sorgu parametresini (JSON nesnesi) çözer.
// Boş değer boş map döner.
func ParseClientHeaders(raw string) (map[string]string, error) {
	headers := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return headers, nil
	}
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, err
	}
	if headers == nil {
		headers = map[string]string{}
	}
	return headers, nil
}

func newHeader(kv ...string) http.Header {
	h := make(http.Header, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

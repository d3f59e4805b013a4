// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package utils

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

const (
	PlaylistProxyPath = "/m3u8-proxy"
	SegmentProxyPath  = "/ts-proxy"
)

// PlaylistMode playlist'in alt playlist mi segment mi referans ettiği
type PlaylistMode int

const (
	ModeMedia PlaylistMode = iota
	ModeMaster
)

func (m PlaylistMode) String() string {
	if m == ModeMaster {
		return "master"
	}
	return "media"
}

var embeddedURIPattern = regexp.MustCompile(`https?://[^"\s]+`)

// DetectPlaylistMode RESOLUTION= geçiyorsa master, değilse media
func DetectPlaylistMode(body string) PlaylistMode {
	if strings.Contains(body, "RESOLUTION=") {
		return ModeMaster
	}
	return ModeMedia
}

// ExtractEmbeddedURI direktif satırındaki ilk mutlak URI'yi döner.
// Göreceli URI'ler eşleşmez; birden fazla URI varsa yalnızca ilki döner.
func ExtractEmbeddedURI(line string) (string, bool) {
	loc := embeddedURIPattern.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	return line[loc[0]:loc[1]], true
}

// PlaylistRewriter playlist içindeki URI'leri proxy linklerine çevirir
type PlaylistRewriter struct {
	proxyBase      string
	encodedHeaders string
}

// NewPlaylistRewriter proxyBase örn. http://127.0.0.1:8080
func NewPlaylistRewriter(proxyBase string, clientHeaders map[string]string) *PlaylistRewriter {
	return &PlaylistRewriter{
		proxyBase:      strings.TrimRight(proxyBase, "/"),
		encodedHeaders: EncodeURIComponent(headersJSON(clientHeaders)),
	}
}

// RewritePlaylist tek seferlik kullanım için kısayol
func RewritePlaylist(body string, base *url.URL, clientHeaders map[string]string, proxyBase string) string {
	return NewPlaylistRewriter(proxyBase, clientHeaders).Rewrite(body, base)
}

// Rewrite satır sayısını ve sırasını koruyarak playlist'i yeniden yazar
func (r *PlaylistRewriter) Rewrite(body string, base *url.URL) string {
	mode := DetectPlaylistMode(body)
	lines := strings.Split(body, "\n")

	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = r.rewriteDirective(line, mode)
			continue
		}
		lines[i] = r.rewriteReference(line, base, mode)
	}

	return strings.Join(lines, "\n")
}

func (r *PlaylistRewriter) rewriteDirective(line string, mode PlaylistMode) string {
	switch {
	case strings.HasPrefix(line, "#EXT-X-KEY:"):
		return r.replaceEmbeddedURI(line, SegmentProxyPath)
	case mode == ModeMaster && strings.HasPrefix(line, "#EXT-X-MEDIA:TYPE=AUDIO"):
		return r.replaceEmbeddedURI(line, PlaylistProxyPath)
	default:
		return line
	}
}

// replaceEmbeddedURI yalnızca ilk eşleşmeyi değiştirir; eşleşme yoksa satır aynen kalır
func (r *PlaylistRewriter) replaceEmbeddedURI(line, path string) string {
	uri, ok := ExtractEmbeddedURI(line)
	if !ok {
		return line
	}
	return strings.Replace(line, uri, r.ProxyURL(path, uri), 1)
}

func (r *PlaylistRewriter) rewriteReference(line string, base *url.URL, mode PlaylistMode) string {
	resolved, err := ResolveReference(base, line)
	if err != nil {
		return line
	}

	if mode == ModeMaster {
		return r.ProxyURL(PlaylistProxyPath, resolved)
	}
	return r.ProxyURL(SegmentProxyPath, resolved)
}

// ProxyURL <proxyBase><path>?url=<hedef>&headers=<json>
func (r *PlaylistRewriter) ProxyURL(path, target string) string {
	return r.proxyBase + path + "?url=" + EncodeURIComponent(target) + "&headers=" + r.encodedHeaders
}

// ResolveReference satırı playlist URL'sine göre çözer.
// Baştaki/sondaki boşluk ve kontrol karakterleri atılır; boş satır base'in kendisine çözülür.
func ResolveReference(base *url.URL, ref string) (string, error) {
	ref = strings.TrimFunc(ref, func(r rune) bool { return r <= ' ' })
	ref = strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(ref)

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(parsed)
	// base'in fragment'ı taşınmaz
	resolved.Fragment, resolved.RawFragment = parsed.Fragment, parsed.RawFragment
	return resolved.String(), nil
}

// EncodeURIComponent sorgu değeri kodlaması, boşluk %20 olur
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// headersJSON HTML kaçışı olmadan kompakt JSON
func headersJSON(headers map[string]string) string {
	if headers == nil {
		headers = map[string]string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(headers); err != nil {
		return "{}"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Bu araç @keyiflerolsun tarafından | @KekikAkademi için yazılmıştır.

package fetcher

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

var ErrBodyTooLarge = errors.New("playlist body too large")

// decodeBody Content-Encoding zincirini sondan başa açar ve en fazla limit bayt okur.
// Accept-Encoding elle verildiğinde net/http gövdeyi açmaz.
func decodeBody(encoding string, body io.Reader, limit int64) ([]byte, error) {
	r := body
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	codings := strings.Split(encoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		switch coding {
		case "", "identity":
		case "gzip", "x-gzip":
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, fmt.Errorf("gzip: %w", err)
			}
			closers = append(closers, gz)
			r = gz
		case "deflate":
			br := bufio.NewReader(r)
			if hasZlibHeader(br) {
				zr, err := zlib.NewReader(br)
				if err != nil {
					return nil, fmt.Errorf("deflate: %w", err)
				}
				closers = append(closers, zr)
				r = zr
			} else {
				fr := flate.NewReader(br)
				closers = append(closers, fr)
				r = fr
			}
		case "br":
			r = brotli.NewReader(r)
		case "zstd":
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, fmt.Errorf("zstd: %w", err)
			}
			rc := zr.IOReadCloser()
			closers = append(closers, rc)
			r = rc
		default:
			return nil, fmt.Errorf("unsupported content encoding %q", coding)
		}
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// hasZlibHeader bazı sunucular deflate'i zlib sarmalı olmadan gönderir
func hasZlibHeader(br *bufio.Reader) bool {
	b, err := br.Peek(2)
	if err != nil {
		return false
	}
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

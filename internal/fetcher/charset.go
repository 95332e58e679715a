package fetcher

import (
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([a-zA-Z0-9_\-]+)`)

// DecodeBody converts raw to UTF-8. The charset comes from the Content-Type
// header, then a <meta> declaration. Without either, valid UTF-8 is kept and
// anything else is read as windows-1252, which covers the ISO-8859-1 pages
// older Norwegian sites still serve.
func DecodeBody(raw []byte, contentType string) ([]byte, string, error) {
	label := charsetFromContentType(contentType)
	if label == "" {
		if m := metaCharsetRe.FindSubmatch(headOf(raw)); m != nil {
			label = strings.ToLower(string(m[1]))
		}
	}

	if label != "" {
		enc, err := htmlindex.Get(label)
		if err == nil {
			name, _ := htmlindex.Name(enc)
			if name == "utf-8" {
				if utf8.Valid(raw) {
					return raw, name, nil
				}
				// Declared UTF-8 but not; fall through to the heuristic.
			} else {
				out, err := enc.NewDecoder().Bytes(raw)
				if err != nil {
					return nil, "", eris.Wrapf(err, "decode %s body", name)
				}
				return out, name, nil
			}
		}
	}

	if utf8.Valid(raw) {
		return raw, "utf-8", nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, "", eris.Wrap(err, "decode windows-1252 body")
	}
	return out, "windows-1252", nil
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

// headOf limits meta sniffing to the first 1024 bytes, as browsers do.
func headOf(raw []byte) []byte {
	if len(raw) > 1024 {
		return raw[:1024]
	}
	return raw
}

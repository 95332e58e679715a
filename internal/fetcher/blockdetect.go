package fetcher

import (
	"bytes"
	"net/http"
)

// BlockType describes the kind of anti-bot page detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
)

// DetectBlock checks an HTTP response for signs of anti-bot protection, so a
// challenge page is reported as a failed fetch instead of parsed as a profile.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	lower := bytes.ToLower(body)

	if bytes.Contains(lower, []byte("checking your browser")) ||
		bytes.Contains(lower, []byte("cf-browser-verification")) {
		return true, BlockCloudflare
	}

	if bytes.Contains(lower, []byte("g-recaptcha")) ||
		bytes.Contains(lower, []byte("h-captcha")) {
		return true, BlockCaptcha
	}

	return false, BlockNone
}

package botdetection

import "strings"

// scannerPatterns match crawlers, email link scanners and scripted HTTP clients.
// Invitation links travel by email, so mail security gateways are listed explicitly.
var scannerPatterns = []string{
	"bot",
	"crawler",
	"spider",
	"scanner",
	"linkcheck",
	"headlesschrome",
	"phantomjs",
	"selenium",
	"safelinks",
	"proofpoint",
	"mimecast",
	"barracuda",
	"forcepoint",
	"cisco ironport",
	"symantec",
	"sophos",
	"urldefense",
	"linkprotect",
	"urlscan",
	"python-requests",
	"go-http-client",
	"curl",
	"wget",
}

// IsBotUserAgent reports whether userAgent looks like an automated client.
// An empty user agent counts as automated.
func IsBotUserAgent(userAgent string) bool {
	if userAgent == "" {
		return true
	}

	ua := strings.ToLower(userAgent)
	for _, pattern := range scannerPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}

// IsPrefetch reports whether the Purpose or Sec-Purpose request headers mark
// the request as a speculative prefetch
func IsPrefetch(purpose, secPurpose string) bool {
	return strings.Contains(strings.ToLower(purpose), "prefetch") ||
		strings.Contains(strings.ToLower(secPurpose), "prefetch")
}

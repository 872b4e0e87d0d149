// ABOUTME: Base URL normalization for backend endpoints
// ABOUTME: Defaults bare host:port to http:// and trims trailing slashes

package httputil

import "strings"

// NormalizeBaseURL canonicalizes a backend address for use as a base URL.
// Local daemons are commonly configured as bare "host:port"; those get an
// http:// scheme. Trailing slashes are trimmed so path joins stay clean.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

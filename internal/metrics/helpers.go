package metrics

import (
	"strconv"
	"strings"
	"time"
)

// RecordAPIRequest records transport-level request metrics consistently.
// method: HTTP method (e.g., "GET", "POST")
// route: normalized request path (see NormalizeRoute)
// statusCode: HTTP status code, or 0 if the request never received a response
// duration: time taken for the round trip
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	ms := float64(duration.Milliseconds())
	APIRequestDuration.WithLabelValues(method, route).Observe(ms)

	if statusCode == 0 {
		TransportErrors.WithLabelValues(method, route).Inc()
		APIRequests.WithLabelValues(method, route, "transport_error").Inc()
		return
	}
	APIRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}

// NormalizeRoute collapses resource identifiers in a request path to ":id"
// so that per-route metrics stay low-cardinality.
func NormalizeRoute(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if isIdentifier(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

// isIdentifier reports whether a path segment looks like a resource ID:
// all digits, or a UUID-shaped string.
func isIdentifier(seg string) bool {
	if seg == "" {
		return false
	}

	allDigits := true
	for _, r := range seg {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}

	// UUID: 8-4-4-4-12 hex groups
	if len(seg) == 36 && strings.Count(seg, "-") == 4 {
		for _, r := range seg {
			if r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
				continue
			}
			return false
		}
		return true
	}
	return false
}

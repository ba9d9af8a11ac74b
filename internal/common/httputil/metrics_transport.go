package httputil

import (
	"net/http"
	"time"

	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
)

// MetricsTransport records every outbound request in the HTTP metrics.
type MetricsTransport struct {
	serviceName string
	next        http.RoundTripper
}

func NewMetricsTransport(serviceName string, next http.RoundTripper) *MetricsTransport {
	if next == nil {
		next = http.DefaultTransport
	}

	return &MetricsTransport{
		serviceName: serviceName,
		next:        next,
	}
}

func (t *MetricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	metrics.RecordHTTPRequest(t.serviceName, req.Method, req.URL.Host, statusCode, time.Since(start))

	return resp, err
}

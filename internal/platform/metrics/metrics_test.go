package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAddScheduledItemsCountsOutcomes(t *testing.T) {
	before := testutil.ToFloat64(scheduledItems.WithLabelValues("blog", "success"))
	beforeFail := testutil.ToFloat64(scheduledItems.WithLabelValues("blog", "failure"))

	AddScheduledItems("blog", 2, 1)

	if got := testutil.ToFloat64(scheduledItems.WithLabelValues("blog", "success")) - before; got != 2 {
		t.Fatalf("expected 2 successes recorded, got %v", got)
	}
	if got := testutil.ToFloat64(scheduledItems.WithLabelValues("blog", "failure")) - beforeFail; got != 1 {
		t.Fatalf("expected 1 failure recorded, got %v", got)
	}
}

func TestIncExternalCallLabelsFailure(t *testing.T) {
	before := testutil.ToFloat64(externalCalls.WithLabelValues("brevo", "failure"))

	IncExternalCall("brevo", errors.New("down"))

	if got := testutil.ToFloat64(externalCalls.WithLabelValues("brevo", "failure")) - before; got != 1 {
		t.Fatalf("expected failure counter to increase by 1, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveHTTPRequest("GET", "/healthz", "200", 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "eduvista_http_requests_total") {
		t.Fatalf("expected request counter in exposition output")
	}
}

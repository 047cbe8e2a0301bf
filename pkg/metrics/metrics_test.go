package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(LoadTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(LoadTotal.WithLabelValues("error"))

	RecordLoad(time.Second, nil)
	RecordLoad(time.Second, errors.New("boom"))
	RecordLoad(time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(LoadTotal.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(LoadTotal.WithLabelValues("error")) - errBefore; got != 2 {
		t.Errorf("error delta = %v, want 2", got)
	}
}

func TestRecordDataSize(t *testing.T) {
	RecordDataSize(100003, 1664, 944)
	if got := testutil.ToFloat64(DataSize.WithLabelValues("titles")); got != 1664 {
		t.Errorf("titles = %v", got)
	}
}

func TestRecordHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/recommend", "404"))
	RecordHTTP("GET", "/api/recommend", 404, time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/recommend", "404")) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
}

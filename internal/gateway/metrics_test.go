package gateway

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observer(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.UpdateReceived("polling")
	m.UpdateReceived("polling")
	m.UpdateReceived("webhook")
	m.DispatchFailed("webhook")
	m.PollTimeout()

	if got := testutil.ToFloat64(m.updates.WithLabelValues("polling")); got != 2 {
		t.Errorf("polling updates = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("webhook")); got != 1 {
		t.Errorf("webhook failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.pollTimeouts); got != 1 {
		t.Errorf("poll timeouts = %v, want 1", got)
	}

	snap := m.Snapshot()
	if snap.Updates != 3 || snap.Failures != 1 || snap.PollTimeouts != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestMetrics_JobRunAndThrottle(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.JobRun("standup", nil)
	m.JobRun("standup", errors.New("boom"))
	m.ReplyThrottled()
	m.ConfigReload(nil)
	m.ConfigReload(errors.New("bad yaml"))
	m.ConfigReload(errors.New("bad yaml"))

	if got := testutil.ToFloat64(m.reloads.WithLabelValues("error")); got != 2 {
		t.Errorf("failed reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("standup", "ok")); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("standup", "error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.throttled); got != 1 {
		t.Errorf("throttled = %v, want 1", got)
	}
}

func TestMetrics_InstrumentTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			_, _ = io.WriteString(w, `{"ok":true}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	m := NewMetrics()
	hc := &http.Client{Transport: m.InstrumentTransport(nil)}
	for _, method := range []string{"getMe", "getMe", "nope"} {
		resp, err := hc.Get(srv.URL + "/botT/" + method)
		if err != nil {
			t.Fatalf("GET %s: %v", method, err)
		}
		_ = resp.Body.Close()
	}

	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("getMe", "200")); got != 2 {
		t.Errorf("getMe 200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("nope", "404")); got != 1 {
		t.Errorf("nope 404 = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.apiLatency); n != 2 {
		t.Errorf("latency series = %d, want 2", n)
	}
}

func TestMetrics_TransportError(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	failing := roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial failed")
	})
	hc := &http.Client{Transport: m.InstrumentTransport(failing)}
	if _, err := hc.Get("http://example.invalid/botT/sendMessage"); err == nil {
		t.Fatal("expected transport error")
	}
	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("sendMessage", "error")); got != 1 {
		t.Errorf("sendMessage error = %v, want 1", got)
	}
}

func TestMetrics_Exposition(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.UpdateReceived("polling")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	if !strings.Contains(body, `tgbot_updates_received_total{source="polling"} 1`) {
		t.Errorf("exposition missing updates counter:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("exposition missing Go runtime metrics")
	}
}

func TestMetrics_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			m.UpdateReceived("webhook")
			m.DispatchFailed("webhook")
		})
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.Updates != 50 || snap.Failures != 50 {
		t.Errorf("snapshot = %+v, want 50/50", snap)
	}
}

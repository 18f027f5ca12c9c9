package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/frame"
)

func TestRecorderFrames(t *testing.T) {
	r := NewRecorder()
	r.ObserveFrame(frame.OutcomePresented, 16*time.Millisecond)
	r.ObserveFrame(frame.OutcomePresented, 17*time.Millisecond)
	r.ObserveFrame(frame.OutcomeDiscarded, time.Millisecond)

	if got := testutil.ToFloat64(r.frames.WithLabelValues("presented")); got != 2 {
		t.Errorf("presented = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.frames.WithLabelValues("discarded")); got != 1 {
		t.Errorf("discarded = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.duration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
}

func TestRecorderAcquire(t *testing.T) {
	r := NewRecorder()
	r.ObserveAcquire(frame.AcquireOK)
	r.ObserveAcquire(frame.AcquireReconfigure)
	r.ObserveAcquire(frame.AcquireReconfigure)

	want := `
# HELP cellgrid_surface_acquire_total Surface acquisitions by first-attempt outcome.
# TYPE cellgrid_surface_acquire_total counter
cellgrid_surface_acquire_total{outcome="ok"} 1
cellgrid_surface_acquire_total{outcome="reconfigure"} 2
`
	if err := testutil.CollectAndCompare(r.acquires, strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

func TestRecorderGrid(t *testing.T) {
	r := NewRecorder()
	g, err := cellgrid.ComputeGrid(900, 900, 1000, 3)
	if err != nil {
		t.Fatal(err)
	}
	r.SetGrid(g)
	if got := testutil.ToFloat64(r.cells); got != 961 {
		t.Errorf("cells = %v, want 961", got)
	}
	if got := testutil.ToFloat64(r.colors); got != 3 {
		t.Errorf("colors = %v, want 3", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveFrame(frame.OutcomePresented, time.Millisecond)

	srv := httptest.NewServer(r.NewServer("").Handler)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`cellgrid_frames_total{result="presented"} 1`,
		"cellgrid_frame_seconds_count 1",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

package metrics

import (
	"errors"
	"testing"
	"time"
)

type capture struct {
	name   string
	value  float64
	labels Labels
}

type fakeBackend struct {
	counters []capture
	observed []capture
	flushed  int
	flushErr error
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.counters = append(f.counters, capture{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.observed = append(f.observed, capture{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.flushed++
	return f.flushErr
}

// install swaps in b for the duration of the test. Tests here share the
// package-global backend, so they must not run in parallel.
func install(t *testing.T, b Backend) {
	t.Helper()
	SetBackend(b)
	t.Cleanup(func() { SetBackend(nopBackend{}) })
}

func TestNopBackendIsSafe(t *testing.T) {
	RecordStep("j", "extract", nil, time.Second)
	RecordRows("j", "links", 10)
	RecordExports("j", 3)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestSetBackend_NilKeepsCurrent(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)
	SetBackend(nil)
	RecordExports("j", 1)
	if len(fb.counters) != 1 {
		t.Fatalf("counter not recorded after SetBackend(nil)")
	}
}

func TestRecordStep(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordStep("newsvendor_prep", "extract", nil, 250*time.Millisecond)
	RecordStep("newsvendor_prep", "plan", errors.New("boom"), time.Millisecond)

	if len(fb.counters) != 2 || len(fb.observed) != 2 {
		t.Fatalf("counters=%d observed=%d, want 2/2", len(fb.counters), len(fb.observed))
	}
	if fb.counters[0].name != "nvprep_step_total" || fb.counters[0].labels["status"] != "success" {
		t.Fatalf("counter[0] = %+v", fb.counters[0])
	}
	if fb.counters[1].labels["status"] != "failure" || fb.counters[1].labels["step"] != "plan" {
		t.Fatalf("counter[1] = %+v", fb.counters[1])
	}
	if fb.observed[0].name != "nvprep_step_duration_seconds" || fb.observed[0].value != 0.25 {
		t.Fatalf("observed[0] = %+v", fb.observed[0])
	}
}

func TestRecordRows(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordRows("j", "forecasts", 42)
	RecordRows("j", "forecasts", 0)
	RecordRows("j", "forecasts", -1)

	if len(fb.counters) != 1 {
		t.Fatalf("got %d counters, want 1 (non-positive deltas skipped)", len(fb.counters))
	}
	c := fb.counters[0]
	if c.name != "nvprep_records_total" || c.value != 42 || c.labels["kind"] != "forecasts" {
		t.Fatalf("counter = %+v", c)
	}
}

func TestFlushDelegates(t *testing.T) {
	fb := &fakeBackend{flushErr: errors.New("push failed")}
	install(t, fb)

	if err := Flush(); err == nil {
		t.Fatalf("expected flush error")
	}
	if fb.flushed != 1 {
		t.Fatalf("flushed = %d, want 1", fb.flushed)
	}
}

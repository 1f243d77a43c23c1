package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/source"
)

// gatedFetcher blocks every fetch until its gate is opened, which lets a test
// choose the completion order.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	fail  map[string]bool
	done  chan string
	calls atomic.Int32
}

func newGatedFetcher(refs []string) *gatedFetcher {
	f := &gatedFetcher{
		gates: make(map[string]chan struct{}),
		fail:  make(map[string]bool),
		done:  make(chan string, len(refs)),
	}
	for _, r := range refs {
		f.gates[r] = make(chan struct{})
	}
	return f
}

func (f *gatedFetcher) Fetch(ctx context.Context, ref string) (*source.Frame, error) {
	f.calls.Add(1)
	f.mu.Lock()
	gate := f.gates[ref]
	fail := f.fail[ref]
	f.mu.Unlock()

	<-gate
	defer func() { f.done <- ref }()
	if fail {
		return nil, errors.New("connection reset")
	}
	return source.NewFrame(ref, image.NewRGBA(image.Rect(0, 0, 16, 9))), nil
}

// instantFetcher resolves immediately; refs listed in fail return an error.
type instantFetcher struct {
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *instantFetcher) Fetch(ctx context.Context, ref string) (*source.Frame, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	if f.fail[ref] {
		return nil, fmt.Errorf("decode %s: bad data", ref)
	}
	return source.NewFrame(ref, image.NewRGBA(image.Rect(0, 0, 4, 4))), nil
}

func testSpec(total int) config.FrameSpec {
	return config.FrameSpec{
		TotalFrames:   total,
		FirstFrameRef: "seq/first.jpg",
		FramePathRule: func(i int) string { return fmt.Sprintf("seq/%03d.jpg", i) },
	}
}

func specRefs(spec config.FrameSpec) []string {
	refs := make([]string, spec.TotalFrames)
	for i := range refs {
		refs[i] = spec.Ref(i + 1)
	}
	return refs
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestLoadOrderIndependentOfCompletion(t *testing.T) {
	spec := testSpec(6)
	refs := specRefs(spec)
	f := newGatedFetcher(refs)
	logger, _ := bufferLogger()
	l := New(f, logger)

	type result struct {
		set   *FrameSet
		state State
	}
	out := make(chan result, 1)
	go func() {
		set, state := l.Load(context.Background(), spec)
		out <- result{set, state}
	}()

	// Resolve in reverse issue order.
	var completed []string
	for i := len(refs) - 1; i >= 0; i-- {
		close(f.gates[refs[i]])
		completed = append(completed, <-f.done)
	}
	res := <-out

	if completed[0] != refs[len(refs)-1] {
		t.Fatalf("Expected last frame to complete first, got %s", completed[0])
	}
	if res.state != Ready {
		t.Errorf("Expected Ready, got %s", res.state)
	}
	if res.set.Len() != 6 || res.set.Loaded() != 6 {
		t.Errorf("Expected 6/6 frames, got len=%d loaded=%d", res.set.Len(), res.set.Loaded())
	}
	for k := 0; k < 6; k++ {
		if got := res.set.At(k).Ref; got != refs[k] {
			t.Errorf("Position %d holds %s, want %s", k, got, refs[k])
		}
	}
}

func TestLoadPartialFailure(t *testing.T) {
	spec := testSpec(4)
	f := &instantFetcher{fail: map[string]bool{
		spec.Ref(2): true,
		spec.Ref(3): true,
	}}
	logger, buf := bufferLogger()

	set, state := New(f, logger).Load(context.Background(), spec)

	if state != PartiallyReady {
		t.Errorf("Expected PartiallyReady, got %s", state)
	}
	if set.Loaded() != 2 {
		t.Errorf("Expected 2 loaded frames, got %d", set.Loaded())
	}
	if set.Len() != 4 || set.Target() != 4 {
		t.Errorf("Gaps must not compact the set: len=%d target=%d", set.Len(), set.Target())
	}

	logs := buf.String()
	if n := strings.Count(logs, "incomplete frame sequence"); n != 1 {
		t.Errorf("Expected exactly one incomplete warning, got %d\n%s", n, logs)
	}
	if !strings.Contains(logs, "loaded=2 total=4") {
		t.Errorf("Warning should record counts:\n%s", logs)
	}
	if n := strings.Count(logs, "frame load failed"); n != 2 {
		t.Errorf("Expected 2 per-frame failures logged, got %d", n)
	}

	missing := set.Missing()
	if len(missing) != 2 || missing[0] != 2 || missing[1] != 3 {
		t.Errorf("Expected missing [2 3], got %v", missing)
	}
}

func TestLoadReadyHasNoWarning(t *testing.T) {
	logger, buf := bufferLogger()
	_, state := New(&instantFetcher{}, logger).Load(context.Background(), testSpec(5))
	if state != Ready {
		t.Errorf("Expected Ready, got %s", state)
	}
	if strings.Contains(buf.String(), "incomplete frame sequence") {
		t.Error("Complete load must not warn")
	}
}

func TestLoadAllFailed(t *testing.T) {
	spec := testSpec(3)
	fail := map[string]bool{}
	for _, r := range specRefs(spec) {
		fail[r] = true
	}
	logger, _ := bufferLogger()
	set, state := New(&instantFetcher{fail: fail}, logger).Load(context.Background(), spec)
	if state != PartiallyReady {
		t.Errorf("Expected PartiallyReady, got %s", state)
	}
	if set.Len() != 0 || set.At(0) != nil || set.First() != nil {
		t.Error("A set with no frames must not address anything")
	}
}

func TestOnFirstFrameBeforeSettlement(t *testing.T) {
	spec := testSpec(3)
	refs := specRefs(spec)
	f := newGatedFetcher(refs)
	logger, _ := bufferLogger()

	first := make(chan *source.Frame, 2)
	l := New(f, logger)
	l.OnFirstFrame = func(fr *source.Frame) { first <- fr }

	settled := make(chan struct{})
	go func() {
		l.Load(context.Background(), spec)
		close(settled)
	}()

	close(f.gates[refs[0]])
	select {
	case fr := <-first:
		if fr == nil || fr.Ref != refs[0] {
			t.Errorf("Unexpected first frame %+v", fr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnFirstFrame was not called")
	}

	select {
	case <-settled:
		t.Fatal("Load settled before the remaining fetches resolved")
	default:
	}

	close(f.gates[refs[1]])
	close(f.gates[refs[2]])
	<-settled
	if len(first) != 0 {
		t.Error("OnFirstFrame must fire exactly once")
	}
}

func TestOnFirstFrameFailure(t *testing.T) {
	spec := testSpec(2)
	var calls atomic.Int32
	var got *source.Frame
	l := New(&instantFetcher{fail: map[string]bool{spec.FirstFrameRef: true}}, nil)
	l.OnFirstFrame = func(fr *source.Frame) {
		calls.Add(1)
		got = fr
	}
	l.Logger, _ = bufferLogger()
	l.Load(context.Background(), spec)

	if calls.Load() != 1 {
		t.Errorf("Expected one call, got %d", calls.Load())
	}
	if got != nil {
		t.Error("Failed first frame should be reported as nil")
	}
}

func TestMaxConcurrent(t *testing.T) {
	f := &instantFetcher{}
	logger, _ := bufferLogger()
	l := New(f, logger)
	l.MaxConcurrent = 2

	_, state := l.Load(context.Background(), testSpec(10))
	if state != Ready {
		t.Errorf("Expected Ready, got %s", state)
	}
	if p := f.peak.Load(); p > 2 {
		t.Errorf("Expected at most 2 fetches in flight, saw %d", p)
	}
}

func TestLoadTreatsNonPositiveTotalAsOne(t *testing.T) {
	logger, _ := bufferLogger()
	set, state := New(&instantFetcher{}, logger).Load(context.Background(), config.FrameSpec{FirstFrameRef: "only.jpg"})
	if state != Ready || set.Len() != 1 {
		t.Errorf("Expected a single ready frame, got state=%s len=%d", state, set.Len())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s        State
		want     string
		terminal bool
	}{
		{Loading, "loading", false},
		{Ready, "ready", true},
		{PartiallyReady, "partially-ready", true},
	}
	for _, tt := range tests {
		if tt.s.String() != tt.want || tt.s.Terminal() != tt.terminal {
			t.Errorf("%d: got (%s, %v), want (%s, %v)", tt.s, tt.s.String(), tt.s.Terminal(), tt.want, tt.terminal)
		}
	}
}

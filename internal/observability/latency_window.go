package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	P99MS       float64 `json:"p99_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type Indicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type LatencySnapshot struct {
	GeneratedAt time.Time    `json:"generated_at"`
	WindowSize  int          `json:"window_size"`
	Stages      []StageStats `json:"stages"`
	Indicators  []Indicator  `json:"indicators,omitempty"`
}

// LatencyWindow keeps a fixed-size rolling sample per pipeline stage so
// the perf endpoint can report percentiles without scraping Prometheus.
type LatencyWindow struct {
	mu         sync.RWMutex
	size       int
	stages     map[string]*ring
	indicators map[string]int
}

// ring holds the last cap(buf) observations for one stage.
type ring struct {
	buf  []float64
	head int
	full bool
}

func (r *ring) push(v float64) {
	r.buf[r.head] = v
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
		r.full = true
	}
}

func (r *ring) last() float64 {
	i := r.head - 1
	if i < 0 {
		i = len(r.buf) - 1
	}
	return r.buf[i]
}

// values returns the stored observations, oldest order not preserved.
func (r *ring) values() []float64 {
	n := r.head
	if r.full {
		n = len(r.buf)
	}
	out := make([]float64, n)
	copy(out, r.buf[:n])
	return out
}

func NewLatencyWindow(maxSamples int) *LatencyWindow {
	if maxSamples <= 0 {
		maxSamples = 256
	}
	return &LatencyWindow{
		size:       maxSamples,
		stages:     make(map[string]*ring),
		indicators: make(map[string]int),
	}
}

func (w *LatencyWindow) Observe(stage string, ms float64) {
	if stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.stages[stage]
	if !ok {
		r = &ring{buf: make([]float64, w.size)}
		w.stages[stage] = r
	}
	r.push(ms)
}

// ObserveDuration is Observe with the unit conversion done once.
func (w *LatencyWindow) ObserveDuration(stage string, d time.Duration) {
	w.Observe(stage, float64(d.Microseconds())/1000.0)
}

func (w *LatencyWindow) ObserveIndicator(name string) {
	if w == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.indicators[name]++
}

func (w *LatencyWindow) Snapshot() LatencySnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := LatencySnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]StageStats, 0, len(w.stages)),
	}

	for _, stage := range sortedKeys(w.stages) {
		r := w.stages[stage]
		vals := r.values()
		if len(vals) == 0 {
			continue
		}
		s := summarize(vals)
		snap.Stages = append(snap.Stages, StageStats{
			Stage:       stage,
			Samples:     len(vals),
			LastMS:      roundMS(r.last()),
			AvgMS:       roundMS(s.avg),
			P50MS:       roundMS(s.p50),
			P95MS:       roundMS(s.p95),
			P99MS:       roundMS(s.p99),
			TargetP95MS: stageTargetP95MS(stage),
		})
	}

	for _, name := range sortedKeys(w.indicators) {
		if w.indicators[name] > 0 {
			snap.Indicators = append(snap.Indicators, Indicator{Name: name, Count: w.indicators[name]})
		}
	}
	return snap
}

func (w *LatencyWindow) Reset() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stages = make(map[string]*ring)
	w.indicators = make(map[string]int)
}

type stageSummary struct {
	avg, p50, p95, p99 float64
}

// summarize sorts in place and reads nearest-rank percentiles.
func summarize(vals []float64) stageSummary {
	sort.Float64s(vals)
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	rank := func(q float64) float64 {
		i := int(math.Ceil(q*float64(len(vals)))) - 1
		if i < 0 {
			i = 0
		}
		if i >= len(vals) {
			i = len(vals) - 1
		}
		return vals[i]
	}
	return stageSummary{
		avg: sum / float64(len(vals)),
		p50: rank(0.50),
		p95: rank(0.95),
		p99: rank(0.99),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roundMS(v float64) float64 {
	return math.Round(v*100) / 100
}

func stageTargetP95MS(stage string) float64 {
	switch stage {
	case "token_mint":
		return 20
	case "transport_connect":
		return 2500
	case "avatar_generate":
		return 6000
	case "send_roundtrip":
		return 6500
	default:
		return 0
	}
}

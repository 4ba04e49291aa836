package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	reportBuildsTotal   atomic.Uint64
	reportFailuresTotal atomic.Uint64

	reportDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500})

	llmMu       sync.Mutex
	llmRequests = map[string]uint64{}
	llmFailures = map[string]uint64{}
	llmDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000})

	limitedMu sync.Mutex
	limited   = map[string]uint64{}
)

// IncReportBuilt counts a successful business intelligence build.
func IncReportBuilt() {
	reportBuildsTotal.Add(1)
}

// IncReportFailed counts an aborted business intelligence build.
func IncReportFailed() {
	reportFailuresTotal.Add(1)
}

// ObserveReportDurationMs records a report build duration in milliseconds.
func ObserveReportDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	reportDuration.Observe(value)
}

// IncLLMRequest counts a completion request for provider.
func IncLLMRequest(provider string) {
	llmMu.Lock()
	llmRequests[provider]++
	llmMu.Unlock()
}

// IncLLMFailure counts a failed completion request for provider.
func IncLLMFailure(provider string) {
	llmMu.Lock()
	llmFailures[provider]++
	llmMu.Unlock()
}

// ObserveLLMDurationMs records a completion round trip in milliseconds.
func ObserveLLMDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmDuration.Observe(value)
}

// IncRateLimited counts a request rejected by the rate limiter for group.
func IncRateLimited(group string) {
	limitedMu.Lock()
	limited[group]++
	limitedMu.Unlock()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "report_builds_total", "Total business intelligence reports built", reportBuildsTotal.Load())
	writeCounter(&buf, "report_failures_total", "Total business intelligence builds aborted", reportFailuresTotal.Load())
	writeHistogram(&buf, "report_duration_ms", "Report build duration in milliseconds", reportDuration.Snapshot())

	llmMu.Lock()
	requests := copyCounts(llmRequests)
	failures := copyCounts(llmFailures)
	llmMu.Unlock()
	writeLabeledCounter(&buf, "llm_requests_total", "Total LLM completion requests", "provider", requests)
	writeLabeledCounter(&buf, "llm_failures_total", "Total failed LLM completion requests", "provider", failures)
	writeHistogram(&buf, "llm_duration_ms", "LLM completion duration in milliseconds", llmDuration.Snapshot())

	limitedMu.Lock()
	rejected := copyCounts(limited)
	limitedMu.Unlock()
	writeLabeledCounter(&buf, "rate_limited_total", "Total requests rejected by the rate limiter", "group", rejected)
	return buf.String()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe places value in the first bucket whose bound covers it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

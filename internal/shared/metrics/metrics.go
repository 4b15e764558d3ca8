package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	loginsTotal            atomic.Uint64
	documentsUploadedTotal atomic.Uint64
	documentsApprovedTotal atomic.Uint64
	documentsRejectedTotal atomic.Uint64
	aiQueriesTotal         atomic.Uint64
	aiDegradedTotal        atomic.Uint64

	completionDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncLogin increments the successful-login counter.
func IncLogin() {
	loginsTotal.Add(1)
}

// IncDocumentUploaded increments the upload counter.
func IncDocumentUploaded() {
	documentsUploadedTotal.Add(1)
}

// IncDocumentApproved increments the approval counter.
func IncDocumentApproved() {
	documentsApprovedTotal.Add(1)
}

// IncDocumentRejected increments the rejection counter.
func IncDocumentRejected() {
	documentsRejectedTotal.Add(1)
}

// IncAIQuery increments the AI query counter.
func IncAIQuery() {
	aiQueriesTotal.Add(1)
}

// IncAIDegraded increments the degraded-completion counter.
func IncAIDegraded() {
	aiDegradedTotal.Add(1)
}

// ObserveCompletionDurationMs records a completion call duration in milliseconds.
func ObserveCompletionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	completionDuration.Observe(value)
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
	writeCounter(&buf, "logins_total", "Total successful logins", loginsTotal.Load())
	writeCounter(&buf, "documents_uploaded_total", "Total documents uploaded", documentsUploadedTotal.Load())
	writeCounter(&buf, "documents_approved_total", "Total documents approved", documentsApprovedTotal.Load())
	writeCounter(&buf, "documents_rejected_total", "Total documents rejected", documentsRejectedTotal.Load())
	writeCounter(&buf, "ai_queries_total", "Total AI queries served", aiQueriesTotal.Load())
	writeCounter(&buf, "ai_degraded_total", "Total AI queries served without a completion", aiDegradedTotal.Load())
	writeHistogram(&buf, "completion_duration_ms", "Completion call duration in milliseconds", completionDuration.Snapshot())
	return buf.String()
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
		counts:  make([]uint64, len(buckets)+1),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx := len(h.buckets)
	for i, upper := range h.buckets {
		if value <= upper {
			idx = i
			break
		}
	}
	h.counts[idx]++
	h.sum += value
	h.count++
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make([]uint64, len(h.counts))
	copy(counts, h.counts)
	buckets := make([]float64, len(h.buckets))
	copy(buckets, h.buckets)
	return histogramSnapshot{
		buckets: buckets,
		counts:  counts,
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	cumulative := uint64(0)
	for i, upper := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", name, strconv.FormatFloat(upper, 'f', -1, 64), cumulative)
	}
	cumulative += snap.counts[len(snap.counts)-1]
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, cumulative)
	fmt.Fprintf(buf, "%s_sum %v\n", name, snap.sum)
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

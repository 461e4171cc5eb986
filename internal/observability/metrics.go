package observability

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/wbxml/internal/protocol"
)

const (
	DirectionEncode = "encode"
	DirectionDecode = "decode"
)

var (
	registerOnce sync.Once

	documents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbxml",
			Subsystem: "codec",
			Name:      "documents_total",
			Help:      "Documents processed, by direction and outcome.",
		},
		[]string{"direction", "outcome"},
	)
	documentBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbxml",
			Subsystem: "codec",
			Name:      "bytes_total",
			Help:      "Document bytes read or written.",
		},
		[]string{"direction"},
	)
	documentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wbxml",
			Subsystem: "codec",
			Name:      "document_duration_seconds",
			Help:      "Time spent per document in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction"},
	)
	objects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wbxml",
			Subsystem: "content",
			Name:      "objects_total",
			Help:      "File and folder objects processed.",
		},
		[]string{"direction", "kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(documents, documentBytes, documentDuration, objects)
	})
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, protocol.ErrIO):
		return "io_error"
	case errors.Is(err, protocol.ErrProtocol):
		return "protocol_error"
	case errors.Is(err, protocol.ErrValidation):
		return "validation_error"
	default:
		return "error"
	}
}

func RecordDocument(direction string, bytes int64, duration time.Duration, err error) {
	RegisterMetrics()
	documents.WithLabelValues(direction, Outcome(err)).Inc()
	if bytes > 0 {
		documentBytes.WithLabelValues(direction).Add(float64(bytes))
	}
	documentDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

func RecordObject(direction, kind string) {
	RegisterMetrics()
	objects.WithLabelValues(direction, kind).Inc()
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

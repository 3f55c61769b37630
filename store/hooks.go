package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Hook observes every statement after the driver returns.
// err is the already mapped error, nil on success.
type Hook interface {
	AfterQuery(ctx context.Context, query string, elapsed time.Duration, err error)
}

// LogHook logs statements with logrus: debug for normal queries, warn for slow ones
// and error for failures. A lookup that finds nothing is not a failure.
type LogHook struct {
	Logger *logrus.Logger
	// SlowQuery of zero disables slow query warnings.
	SlowQuery time.Duration
}

func (h *LogHook) AfterQuery(_ context.Context, query string, elapsed time.Duration, err error) {
	entry := h.Logger.WithFields(logrus.Fields{
		"query":    compact(query),
		"duration": elapsed.String(),
	})
	switch {
	case err != nil && !errors.Is(err, ErrNotFound):
		entry.WithError(err).Error("query failed")
	case h.SlowQuery > 0 && elapsed > h.SlowQuery:
		entry.Warn("slow query")
	default:
		entry.Debug("query")
	}
}

// MetricsHook records statement durations in a histogram labelled by
// statement verb and outcome.
type MetricsHook struct {
	Duration *prometheus.HistogramVec
}

// NewMetricsHook creates the histogram and registers it on reg.
func NewMetricsHook(reg prometheus.Registerer) *MetricsHook {
	h := &MetricsHook{
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myapp_db_query_duration_seconds",
			Help:    "Duration of SQL statements.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(h.Duration)
	return h
}

func (h *MetricsHook) AfterQuery(_ context.Context, query string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil && !errors.Is(err, ErrNotFound) {
		outcome = "error"
	}
	h.Duration.WithLabelValues(operation(query), outcome).Observe(elapsed.Seconds())
}

func operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func compact(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > 500 {
		return q[:500] + "..."
	}
	return q
}

// Package metrics defines and registers the custom Prometheus metrics of the
// QC reporting service. Metrics are registered with the default registry on
// package initialisation and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qc"

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportOperationsTotal counts successful report writes.
// Labels:
//   - kind: gel, peel, adhesion or wetleakage
//   - action: created, updated, deleted, signed, unsigned
var ReportOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_operations_total",
		Help:      "Total number of report writes, by kind and action.",
	},
	[]string{"kind", "action"},
)

// ReportExportsTotal counts generated workbooks.
// Label:
//   - kind: the report kind
var ReportExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_exports_total",
		Help:      "Total number of report workbooks generated.",
	},
	[]string{"kind"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid" or "inactive"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEntriesTotal counts audit entries handled by the dispatcher.
// Label:
//   - result: "written" or "failed"
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries persisted or dropped.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending entries per dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures a single audit insert.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit entry persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Analytics metrics ─────────────────────────────────────────────────────────

// CacheRequestsTotal counts analytics cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of analytics cache lookups, by result.",
	},
	[]string{"result"},
)

// ImportedRowsTotal counts rows written by the workbook importers. The
// dataset label is the inspection type for rejection workbooks.
var ImportedRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imported_rows_total",
		Help:      "Total number of rows imported, by dataset.",
	},
	[]string{"dataset"},
)

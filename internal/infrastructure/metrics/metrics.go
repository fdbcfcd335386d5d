package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus collectors. HTTP-level metrics
// live in the HTTP middleware; these cover the business operations.
type Metrics struct {
	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	TransactionsReversed prometheus.Counter
	TransactionAmount    prometheus.Histogram
	LedgerErrors         *prometheus.CounterVec
	BalanceRejections    prometheus.Counter
	LockTimeouts         prometheus.Counter

	// Cashbox metrics
	CashboxesCreated  prometheus.Counter
	CashboxBalance    *prometheus.GaugeVec
	CashboxOperations *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationRuns        prometheus.Counter
	ReconciliationCorrections prometheus.Counter

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransactionsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashledger_transactions_recorded_total",
				Help: "Total number of ledger transactions recorded",
			},
			[]string{"type", "category"},
		),
		TransactionsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashledger_transactions_reversed_total",
			Help: "Total number of transactions reversed",
		}),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashledger_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		LedgerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashledger_ledger_errors_total",
				Help: "Total number of ledger errors by type",
			},
			[]string{"error_type"},
		),
		BalanceRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashledger_balance_rejections_total",
			Help: "Total number of writes rejected for insufficient balance",
		}),
		LockTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashledger_lock_timeouts_total",
			Help: "Total number of cashbox lock timeouts",
		}),

		CashboxesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashledger_cashboxes_created_total",
			Help: "Total number of cashboxes created",
		}),
		CashboxBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cashledger_cashbox_balance",
				Help: "Current cashbox balance",
			},
			[]string{"cashbox_id"},
		),
		CashboxOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashledger_cashbox_operations_total",
				Help: "Total cashbox operations by type",
			},
			[]string{"operation"},
		),

		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashledger_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		ReconciliationCorrections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashledger_reconciliation_corrections_total",
			Help: "Total number of balance corrections applied by reconciliation",
		}),

		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}

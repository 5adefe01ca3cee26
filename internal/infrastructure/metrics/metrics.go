package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsCreated prometheus.Counter
	EntriesPosted   prometheus.Counter
	EntryAmount     prometheus.Histogram
	ConsistencyRuns *prometheus.CounterVec

	// Billing metrics
	MembersCreated   prometheus.Counter
	BillingCycles    prometheus.Counter
	BillingRuns      prometheus.Counter
	BillingErrors    *prometheus.CounterVec
	BillingDuration  prometheus.Histogram
	BillingLockSkips prometheus.Counter

	// Charge metrics
	ChargesSubmitted   prometheus.Counter
	ChargeTransitions  *prometheus.CounterVec
	ChargeSyncDuration prometheus.Histogram
	SettlementsPosted  prometheus.Counter

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	GatewayErrors   *prometheus.CounterVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_accounts_created_total",
			Help: "Total number of ledger accounts created",
		}),
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_entries_posted_total",
			Help: "Total number of ledger entries posted",
		}),
		EntryAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "duesledger_entry_amount",
			Help:    "Posted entry amounts",
			Buckets: []float64{1, 10, 40, 100, 400, 1000, 10000},
		}),
		ConsistencyRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_consistency_runs_total",
				Help: "Total ledger consistency checks by result",
			},
			[]string{"result"},
		),

		// Billing metrics
		MembersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_members_created_total",
			Help: "Total number of members created",
		}),
		BillingCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_billing_cycles_total",
			Help: "Total number of billing cycles posted",
		}),
		BillingRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_billing_runs_total",
			Help: "Total number of all-member billing runs",
		}),
		BillingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_billing_errors_total",
				Help: "Total number of billing errors by type",
			},
			[]string{"error_type"},
		),
		BillingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "duesledger_billing_duration_seconds",
			Help:    "Duration of all-member billing runs",
			Buckets: prometheus.DefBuckets,
		}),
		BillingLockSkips: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_billing_lock_skips_total",
			Help: "Members skipped because another billing run held their lock",
		}),

		// Charge metrics
		ChargesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_charges_submitted_total",
			Help: "Total number of charges submitted to the gateway",
		}),
		ChargeTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_charge_transitions_total",
				Help: "Total charge state transitions by target state",
			},
			[]string{"state"},
		),
		ChargeSyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "duesledger_charge_sync_duration_seconds",
			Help:    "Duration of charge reconciliation passes",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "duesledger_settlements_posted_total",
			Help: "Total number of settlement fragments posted to the ledger",
		}),

		// Gateway metrics
		GatewayRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_gateway_requests_total",
				Help: "Total payment gateway requests",
			},
			[]string{"operation", "status"},
		),
		GatewayDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duesledger_gateway_duration_seconds",
				Help:    "Payment gateway request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		GatewayErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_gateway_errors_total",
				Help: "Total payment gateway errors",
			},
			[]string{"operation"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duesledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "duesledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duesledger_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duesledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}

// Package metrics defines the custom Prometheus metrics of the corporate site
// API. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "corporate_site"

// ── Identity ─────────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered client accounts.",
	},
)

// ── News ─────────────────────────────────────────────────────────────────────

// ArticlesCreatedTotal counts published articles.
// Label:
//   - role: role of the author ("admin" or "partner")
var ArticlesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "articles_created_total",
		Help:      "Total number of news articles created, by author role.",
	},
	[]string{"role"},
)

// CommentsTotal counts added comments.
// Label:
//   - state: initial state of the comment ("approved" or "pending_approval")
var CommentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_total",
		Help:      "Total number of comments added, by initial state.",
	},
	[]string{"state"},
)

// ModerationActionsTotal counts approve and delete operations.
// Label:
//   - action: "approve" or "delete"
var ModerationActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_actions_total",
		Help:      "Total number of comment moderation actions.",
	},
	[]string{"action"},
)

// ── Audit ────────────────────────────────────────────────────────────────────

// AuditEntriesTotal counts recorded audit entries.
// Label:
//   - action: the audit action tag (e.g. "LOGIN", "CREATE_NEWS")
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit log entries recorded, by action.",
	},
	[]string{"action"},
)

package ports

import (
	"context"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// AuditFilter narrows audit retrieval. Zero values mean "no filter".
type AuditFilter struct {
	Action domain.AuditAction
	UserID string
	Limit  int
}

// AuditRepository is the append-only audit log.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
	// List returns matching entries newest first.
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditLogEntry, error)
}

// AuditMirror receives every appended entry for durable storage elsewhere.
type AuditMirror interface {
	Enqueue(entry domain.AuditLogEntry)
}

// AuditService records and retrieves audit entries.
type AuditService interface {
	Record(ctx context.Context, action domain.AuditAction, actor *domain.User, ip, details string) domain.AuditLogEntry
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditLogEntry, error)
}

// StatsService serves the dashboard analytics snapshot.
type StatsService interface {
	Snapshot(ctx context.Context) domain.SiteStats
}

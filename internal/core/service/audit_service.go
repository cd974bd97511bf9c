package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

const anonymousActor = "anonymous"

// AuditService appends to the audit log. Recording never fails the caller:
// storage and mirror problems are logged.
type AuditService struct {
	repo   ports.AuditRepository
	mirror ports.AuditMirror
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// NewAuditService returns an AuditService. mirror may be nil.
func NewAuditService(repo ports.AuditRepository, mirror ports.AuditMirror, log zerolog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		mirror: mirror,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *AuditService) Record(ctx context.Context, action domain.AuditAction, actor *domain.User, ip, details string) domain.AuditLogEntry {
	entry := domain.AuditLogEntry{
		ID:        s.newID(),
		Action:    action,
		Timestamp: s.now(),
		IPAddress: ip,
		Details:   details,
	}
	if actor != nil {
		entry.UserID = actor.ID
		entry.Username = actor.Username
		entry.UserRole = actor.Role
	} else {
		s.log.Warn().Str("action", string(action)).Msg("audit entry without actor")
		entry.Username = anonymousActor
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", string(action)).Msg("failed to append audit entry")
	}
	if s.mirror != nil {
		s.mirror.Enqueue(entry)
	}

	s.log.Debug().Str("action", string(action)).Str("user_id", entry.UserID).Msg("audit recorded")
	return entry
}

func (s *AuditService) List(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditLogEntry, error) {
	if filter.Limit < 0 {
		return nil, domain.Invalid("limit", "must not be negative")
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}

package notifications

import (
	"context"
	"log/slog"

	"github.com/mkowalczyk/libreserve/internal/domain/notification"
	"github.com/mkowalczyk/libreserve/internal/observability"
)

// Store persists notifications. Small on purpose so tests fake it.
type Store interface {
	Insert(ctx context.Context, n notification.Notification) error
}

// AdminLister resolves the current admin targets for broadcasts.
type AdminLister interface {
	ListAdminIDs(ctx context.Context) ([]string, error)
}

// Service records one-way messages. Sends never fail the caller: a
// storage error is logged and counted, then swallowed. The triggering
// operation (registration, reservation transition) must succeed
// whether or not its notification landed.
type Service struct {
	store  Store
	admins AdminLister
	log    *slog.Logger
	prom   *observability.Prom
}

func NewService(store Store, admins AdminLister, log *slog.Logger, prom *observability.Prom) *Service {
	return &Service{
		store:  store,
		admins: admins,
		log:    log,
		prom:   prom,
	}
}

// Notify persists one notification for one user. Fire-and-forget.
func (s *Service) Notify(ctx context.Context, userID, message string, t notification.Type) {
	n := notification.New(userID, message, t)

	err := s.store.Insert(ctx, n)

	if err != nil {
		s.log.ErrorContext(ctx, "notification write failed", "user_id", userID, "type", t, "err", err)
		s.count(t, "error")
		return
	}

	s.count(t, "ok")
}

// NotifyAdmins sends message to every admin, one Notify at a time.
// Each send completes (or is swallowed) before the next begins, so
// latency grows linearly with admin count; admin counts are expected
// to stay small. A failure listing admins is logged and swallowed.
func (s *Service) NotifyAdmins(ctx context.Context, message string, t notification.Type) {
	ids, err := s.admins.ListAdminIDs(ctx)

	if err != nil {
		s.log.ErrorContext(ctx, "admin broadcast skipped, listing admins failed", "type", t, "err", err)
		s.count(t, "error")
		return
	}

	for _, id := range ids {
		s.Notify(ctx, id, message, t)
	}
}

func (s *Service) count(t notification.Type, result string) {
	if s.prom != nil {
		s.prom.NotificationsTotal.WithLabelValues(string(t), result).Inc()
	}
}

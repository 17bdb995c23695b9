package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/database"
	"github.com/opencanvass/territory/pkg/metrics"
)

// lookaheadDays is how far ahead of an assignment's return date alerts fire
const lookaheadDays = 5

// Scanner periodically scans active assignments for approaching return dates
// and creates alert notifications for every active manager-level user. Each
// (target, user) pair is alerted at most once while the notification stays
// unread.
type Scanner struct {
	db       database.Database
	logger   *zap.Logger
	metrics  *metrics.Metrics
	interval time.Duration

	cancel       context.CancelFunc
	done         chan struct{}
	runningMutex sync.Mutex
	running      bool

	// now is swapped in tests
	now func() time.Time
}

// NewScanner creates a scanner with the given cycle interval
func NewScanner(db database.Database, logger *zap.Logger, m *metrics.Metrics, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scanner{
		db:       db,
		logger:   logger.Named("notifier"),
		metrics:  m,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs one scan immediately and then one per interval until Stop is
// called or the context is cancelled.
func (s *Scanner) Start(ctx context.Context) {
	s.runningMutex.Lock()
	if s.running {
		s.runningMutex.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.runningMutex.Unlock()

	s.logger.Info("starting due-date scanner", zap.Duration("interval", s.interval))
	s.Scan(ctx)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Scan(ctx)
			}
		}
	}()
}

// Stop cancels the scan loop and waits for it to exit
func (s *Scanner) Stop() {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	<-s.done
	s.running = false
	s.logger.Info("due-date scanner stopped")
}

// Scan runs one full cycle: territory assignments, then property assignments.
// A failure in one sub-scan is logged and does not abort the other.
func (s *Scanner) Scan(ctx context.Context) {
	today := database.StartOfDay(s.now())
	until := today.AddDate(0, 0, lookaheadDays)

	recipients, err := s.recipients(ctx)
	if err != nil {
		s.logger.Error("failed to load notification recipients", zap.Error(err))
		s.metrics.ObserveScan(string(cnst.EntityTerritoryAssignment), "error")
		s.metrics.ObserveScan(string(cnst.EntityPropertyAssignment), "error")
		return
	}
	// with no recipients the sub-scans still run, so every cycle is counted
	s.scanTerritories(ctx, today, until, recipients)
	s.scanProperties(ctx, today, until, recipients)
}

// recipients returns the active users with manager access or higher
func (s *Scanner) recipients(ctx context.Context) ([]*database.User, error) {
	users, err := s.db.ListActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*database.User, 0, len(users))
	for _, u := range users {
		if u.PermissionLevel.Allows(cnst.LevelManager) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Scanner) scanTerritories(ctx context.Context, today, until time.Time, recipients []*database.User) {
	due, err := s.db.ListTerritoryAssignmentsDueBetween(ctx, today, until)
	if err != nil {
		s.logger.Error("territory due-date scan failed", zap.Error(err))
		s.metrics.ObserveScan(string(cnst.EntityTerritoryAssignment), "error")
		return
	}
	for _, a := range due {
		name := a.TerritoryName
		if name == "" {
			name = fmt.Sprintf("territory %d", a.TerritoryID)
		}
		s.notifyAll(ctx, cnst.EntityTerritoryAssignment, a.ID, name, *a.ReturnDate, today, recipients)
	}
	s.metrics.ObserveScan(string(cnst.EntityTerritoryAssignment), "ok")
}

func (s *Scanner) scanProperties(ctx context.Context, today, until time.Time, recipients []*database.User) {
	due, err := s.db.ListPropertyAssignmentsDueBetween(ctx, today, until)
	if err != nil {
		s.logger.Error("property due-date scan failed", zap.Error(err))
		s.metrics.ObserveScan(string(cnst.EntityPropertyAssignment), "error")
		return
	}
	for _, a := range due {
		name := a.PropertyName
		if name == "" {
			name = fmt.Sprintf("property %d", a.PropertyID)
		}
		s.notifyAll(ctx, cnst.EntityPropertyAssignment, a.ID, name, *a.ReturnDate, today, recipients)
	}
	s.metrics.ObserveScan(string(cnst.EntityPropertyAssignment), "ok")
}

func (s *Scanner) notifyAll(ctx context.Context, kind cnst.EntityKind, entityID uint, name string, returnDate, today time.Time, recipients []*database.User) {
	days := int(database.StartOfDay(returnDate).Sub(today).Hours() / 24)
	title, message := composeAlert(name, days)

	for _, user := range recipients {
		id := entityID
		created, err := s.db.CreateNotificationIfAbsent(ctx, &database.Notification{
			UserID:     user.ID,
			Kind:       cnst.NotificationWarning,
			Title:      title,
			Message:    message,
			Status:     cnst.NotificationUnread,
			EntityKind: kind,
			EntityID:   &id,
		})
		if err != nil {
			s.logger.Error("failed to create due-date notification",
				zap.String("entity_kind", string(kind)),
				zap.Uint("entity_id", entityID),
				zap.Uint("user_id", user.ID),
				zap.Error(err))
			continue
		}
		if created {
			s.metrics.ObserveNotification(string(kind), "created")
		} else {
			s.metrics.ObserveNotification(string(kind), "skipped")
		}
	}
}

// composeAlert builds the notification title and message for an assignment
// whose return date is the given number of days away.
func composeAlert(name string, days int) (title, message string) {
	title = "Return date approaching: " + name
	switch {
	case days <= 0:
		message = fmt.Sprintf("%s is due back today.", name)
	case days == 1:
		message = fmt.Sprintf("%s is due back tomorrow.", name)
	default:
		message = fmt.Sprintf("%s is due back in %d days.", name, days)
	}
	return title, message
}

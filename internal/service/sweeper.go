package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/internal/port"
)

// SessionSweeper periodically removes expired session rows.
// SessionSweeper периодически удаляет истёкшие строки сессий.
//
// Expired tokens are already rejected at redemption time; the sweep
// only keeps the sessions table from accumulating dead rows.
// Истёкшие токены и так отклоняются при погашении; очистка лишь не
// даёт таблице сессий накапливать мёртвые строки.
type SessionSweeper struct {
	sessionRepo port.SessionRepository // Session repository / Репозиторий сессий
	schedule    string                 // Cron schedule expression / Cron выражение расписания
	cron        *cron.Cron             // Cron scheduler / Планировщик cron
	logger      *logger.Logger         // Logger instance / Экземпляр логгера
}

// NewSessionSweeper creates a new SessionSweeper instance.
// NewSessionSweeper создаёт новый экземпляр SessionSweeper.
// An empty schedule defaults to hourly.
// Пустое расписание означает раз в час.
func NewSessionSweeper(sessionRepo port.SessionRepository, schedule string, log *logger.Logger) *SessionSweeper {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &SessionSweeper{
		sessionRepo: sessionRepo,
		schedule:    schedule,
		cron:        cron.New(),
		logger:      log.WithComponent("session_sweeper"),
	}
}

// Start registers the sweep job and starts the scheduler.
// Start регистрирует задачу очистки и запускает планировщик.
func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", "schedule", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
// Stop останавливает планировщик и ждёт завершения текущей очистки.
func (s *SessionSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("session sweeper stopped")
}

// Sweep removes all sessions that expired before now.
// Sweep удаляет все сессии, истёкшие к текущему моменту.
func (s *SessionSweeper) Sweep(ctx context.Context) {
	removed, err := s.sessionRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to sweep expired sessions", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", "count", removed)
	}
}

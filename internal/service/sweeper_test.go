package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/planwisehq/planwise/internal/pkg/logger"
	"github.com/planwisehq/planwise/test/mocks"
)

func TestSessionSweeper_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessionRepo := mocks.NewMockSessionRepository(ctrl)
	log := logger.New(logger.Config{Level: "debug", Format: "text"})

	sweeper := NewSessionSweeper(sessionRepo, "@hourly", log)

	sessionRepo.EXPECT().DeleteExpired(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cutoff time.Time) (int64, error) {
			assert.WithinDuration(t, time.Now(), cutoff, time.Second)
			return 3, nil
		})

	sweeper.Sweep(context.Background())
}

func TestSessionSweeper_SweepFailureDoesNotPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessionRepo := mocks.NewMockSessionRepository(ctrl)
	log := logger.New(logger.Config{Level: "debug", Format: "text"})

	sweeper := NewSessionSweeper(sessionRepo, "", log)

	sessionRepo.EXPECT().DeleteExpired(gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("db down"))

	sweeper.Sweep(context.Background())
}

func TestSessionSweeper_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessionRepo := mocks.NewMockSessionRepository(ctrl)
	log := logger.New(logger.Config{Level: "debug", Format: "text"})

	sweeper := NewSessionSweeper(sessionRepo, "@hourly", log)

	require.NoError(t, sweeper.Start())
	sweeper.Stop()
}

func TestSessionSweeper_InvalidSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessionRepo := mocks.NewMockSessionRepository(ctrl)
	log := logger.New(logger.Config{Level: "debug", Format: "text"})

	sweeper := NewSessionSweeper(sessionRepo, "not a cron expression", log)

	require.Error(t, sweeper.Start())
}

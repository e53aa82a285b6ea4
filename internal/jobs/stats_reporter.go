package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"codecollab/internal/metrics"
	"codecollab/internal/room"
)

// StatsReporter periodically snapshots room counts into the Prometheus
// gauges and the log.
type StatsReporter struct {
	log      *zap.Logger
	rooms    *room.Store
	schedule string
	cron     *cron.Cron
}

func NewStatsReporter(log *zap.Logger, rooms *room.Store, schedule string) *StatsReporter {
	return &StatsReporter{
		log:      log,
		rooms:    rooms,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the snapshot job and begins the cron loop.
func (sr *StatsReporter) Start() error {
	_, err := sr.cron.AddFunc(sr.schedule, sr.Run)
	if err != nil {
		return fmt.Errorf("failed to schedule stats job: %w", err)
	}
	sr.cron.Start()
	sr.log.Info("stats reporter started", zap.String("schedule", sr.schedule))
	return nil
}

// Run takes one snapshot. Exported so a snapshot can be forced on demand.
func (sr *StatsReporter) Run() {
	rooms, participants := sr.rooms.Stats()
	metrics.SetRoomStats(rooms, participants)
	sr.log.Info("room stats",
		zap.Int("rooms", rooms),
		zap.Int("participants", participants),
	)
}

func (sr *StatsReporter) Stop() {
	sr.cron.Stop()
}

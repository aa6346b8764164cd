package jobs

import (
	"context"
	"time"

	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/pipeline"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// DailyBriefJob runs the full collection pipeline after the market
// close. On weekends and holidays it skips instead of re-collecting the
// previous trading day.
type DailyBriefJob struct {
	runner *pipeline.Runner
	cal    *calendar.Calendar
	loc    *time.Location
	logger *logger.Logger
	now    func() time.Time
}

// NewDailyBriefJob creates the job.
func NewDailyBriefJob(runner *pipeline.Runner, cal *calendar.Calendar, loc *time.Location, log *logger.Logger) *DailyBriefJob {
	return &DailyBriefJob{
		runner: runner,
		cal:    cal,
		loc:    loc,
		logger: log.WithField("job", "daily_brief"),
		now:    time.Now,
	}
}

// Name identifies the job.
func (j *DailyBriefJob) Name() string { return "daily_brief" }

// Schedule runs every day at 17:30 market time, after the futures close.
func (j *DailyBriefJob) Schedule() string { return "0 30 17 * * *" }

// Run executes one pipeline run for today's market date.
func (j *DailyBriefJob) Run(ctx context.Context) error {
	today := j.now().In(j.loc)

	trading, err := j.cal.IsTradingDay(today)
	if err != nil {
		return err
	}
	if !trading {
		j.logger.WithField("date", today.Format("2006-01-02")).Info("Not a trading day, skipping")
		return nil
	}

	_, err = j.runner.Run(ctx, today)
	return err
}

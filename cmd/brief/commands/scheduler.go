package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhenliu/marketbrief/internal/scheduler"
	"github.com/zhenliu/marketbrief/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the daily schedule",
	Long: `Runs the scheduler daemon or triggers scheduled jobs.

Jobs:
  daily_brief - the full daily run at 17:30 market time on trading days

Example:
  go run ./cmd/brief scheduler start
  go run ./cmd/brief scheduler run daily_brief`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runSchedulerStart,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job]",
	Short: "Trigger one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(rt *runtime) (*scheduler.Scheduler, error) {
	sched := scheduler.New(rt.log, rt.cfg.Location())

	daily := jobs.NewDailyBriefJob(rt.runner, rt.cal, rt.cfg.Location(), rt.log)
	if err := sched.AddJob(daily); err != nil {
		return nil, err
	}
	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.close()

	sched, err := buildScheduler(rt)
	if err != nil {
		return err
	}

	sched.Start()
	fmt.Println("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.close()

	sched, err := buildScheduler(rt)
	if err != nil {
		return err
	}

	if err := sched.RunJob(args[0]); err != nil {
		return err
	}

	// RunJob is asynchronous; poll the history until the run lands.
	waitForResult(sched, args[0])
	return nil
}

func waitForResult(sched *scheduler.Scheduler, job string) {
	for {
		time.Sleep(500 * time.Millisecond)
		history, err := sched.History(job)
		if err != nil {
			return
		}
		if len(history.Results) == 0 {
			continue
		}
		result := history.Results[len(history.Results)-1]
		if result.Success {
			fmt.Printf("Job %s completed in %s\n", job, result.Duration)
		} else {
			fmt.Printf("Job %s failed: %s\n", job, result.Error)
		}
		return
	}
}

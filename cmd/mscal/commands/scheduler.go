package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/magicstocks/calendar/internal/scheduler"
	"github.com/magicstocks/calendar/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command group
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the retrain scheduler",
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler in the foreground",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job]",
	Short: "Trigger a job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

var schedulerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-job run statistics",
	RunE:  runSchedulerStatus,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	a, err := initApp(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.logger)
	if err := sched.AddJob(jobs.NewRetrainJob(a.runner, a.logger, a.cfg.Pipeline.RetrainSchedule)); err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("register retrain job: %w", err)
	}

	return a, sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Registered jobs:")
	for name, stats := range sched.Stats() {
		fmt.Printf("  - %s (schedule: %s)\n", name, stats.Schedule)
	}
	return nil
}

func runSchedulerStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Print(formatJobStats(sched.Stats()))
	return nil
}

// formatJobStats renders per-job statistics, sorted by job name.
func formatJobStats(stats map[string]scheduler.JobStats) string {
	if len(stats) == 0 {
		return "No jobs registered\n"
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		s := stats[name]
		fmt.Fprintf(&b, "%s (schedule: %s)\n", s.JobName, s.Schedule)
		fmt.Fprintf(&b, "  runs: %d  success: %d  failed: %d  success rate: %.0f%%\n",
			s.TotalRuns, s.SuccessCount, s.FailureCount, s.SuccessRate*100)
		if s.LastRun != nil {
			fmt.Fprintf(&b, "  last run: %s\n", s.LastRun.Format(time.RFC3339))
		}
	}
	return b.String()
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; wait for completion before exiting.
	for {
		time.Sleep(200 * time.Millisecond)

		history, err := sched.History(jobName)
		if err != nil {
			return err
		}
		if len(history.Results) > 0 {
			last := history.Results[len(history.Results)-1]
			if last.Success {
				fmt.Printf("Job finished in %s\n", last.Duration)
				return nil
			}
			return fmt.Errorf("job failed: %s", last.Error)
		}
	}
}

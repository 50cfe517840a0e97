package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/api"
	"github.com/osaleh/aidesk/internal/datasync"
)

var dashboardWatch bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show engagement metrics and the activity stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		m := env.syncManager()

		if !dashboardWatch {
			return renderDashboard(cmd.Context(), env, m)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Watching dashboard (Ctrl-C to stop)...")

		statsPoller := datasync.NewPoller(env.cfg.StatsInterval(), func(ctx context.Context) {
			if stats, err := m.Stats.Refresh(ctx); err == nil {
				printStats(stats)
			} else if ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "stats refresh: %v\n", err)
			}
		})
		engagementPoller := datasync.NewPoller(env.cfg.EngagementInterval(), func(ctx context.Context) {
			if events, err := m.Engagement.Refresh(ctx); err == nil {
				printEngagement(events, 5)
			} else if ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "engagement refresh: %v\n", err)
			}
		})

		statsPoller.Start(ctx)
		engagementPoller.Start(ctx)

		<-ctx.Done()
		statsPoller.Stop()
		engagementPoller.Stop()
		return nil
	},
}

func renderDashboard(ctx context.Context, env *appEnv, m *datasync.Manager) error {
	stats, err := m.Stats.Get(ctx)
	if err != nil {
		return err
	}
	events, err := m.Engagement.Get(ctx)
	if err != nil {
		return err
	}

	if user, ok := env.session.User(); ok {
		fmt.Printf("Welcome, %s.\n\n", user.BusinessName)
	}
	printStats(stats)
	fmt.Println()
	printEngagement(events, 10)
	return nil
}

func printStats(stats *api.DashboardStats) {
	fmt.Printf("[%s] interactions: %d  active sessions: %d  pending approvals: %d  health: %.1f%%\n",
		time.Now().Format("15:04:05"),
		stats.TotalInteractions, stats.ActiveSessions, stats.PendingApprovals, stats.SystemHealth)
}

func printEngagement(events []api.EngagementEvent, limit int) {
	if len(events) == 0 {
		fmt.Println("No recent activity detected.")
		return
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	for _, ev := range events {
		fmt.Printf("  %s  %-18s %-8s %s\n",
			ev.CreatedAt.Local().Format("15:04"), ev.Intent, ev.Status, ev.Content)
	}
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the engagement stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		events, err := env.client.SearchDashboard(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Printf("No matches for %q.\n", args[0])
			return nil
		}
		printEngagement(events, 0)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().BoolVarP(&dashboardWatch, "watch", "w", false, "keep refreshing on the configured cadence")
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(searchCmd)
}

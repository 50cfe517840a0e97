package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/stubserver"
)

var devServerPort int

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run an in-memory stub backend for offline use",
	Long: `Starts a local, in-memory implementation of the backend API with a
seeded demo account (` + stubserver.DemoEmail + ` / ` + stubserver.DemoPassword + `),
sample approvals and engagement history. Useful for trying the console
without the real agent platform.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := stubserver.New(newLogger())
		if err := srv.Seed(); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := fmt.Sprintf(":%d", devServerPort)
		fmt.Printf("Stub backend on http://localhost%s (login: %s / %s)\n",
			addr, stubserver.DemoEmail, stubserver.DemoPassword)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	devServerCmd.Flags().IntVarP(&devServerPort, "port", "p", 3000, "port to listen on")
	rootCmd.AddCommand(devServerCmd)
}

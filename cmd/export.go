package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/progress"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the engagement log as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		output := exportOutput
		if output == "" {
			output = fmt.Sprintf("logs-%s.csv", time.Now().Format("2006-01-02"))
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()

		// The backend streams without a content length.
		bar := progress.NewDownload(f, -1, "downloading logs")
		n, err := env.client.ExportLogs(cmd.Context(), bar)
		bar.Finish()
		if err != nil {
			os.Remove(output)
			return err
		}

		fmt.Printf("Wrote %d bytes to %s\n", n, output)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default logs-YYYY-MM-DD.csv)")
	rootCmd.AddCommand(exportCmd)
}

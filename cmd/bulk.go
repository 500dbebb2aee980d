package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/bulk"
	"github.com/sells-group/company-profiler/internal/model"
)

var (
	bulkMode        string
	bulkConcurrency int
	bulkFormat      string
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <file>",
	Short: "Extract profiles for every row of a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, err := model.ParseMode(bulkMode)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read input file")
		}

		env, err := initPipeline(ctx, "bulk")
		if err != nil {
			return err
		}
		defer env.Close()

		if bulkConcurrency > 0 {
			env.Bulk = bulk.NewRunner(env.Pipeline, bulkConcurrency)
		}

		job, err := newJobService(env).bulkUpload(ctx, filepath.Base(args[0]), data, mode)
		if err != nil {
			return err
		}

		zap.L().Info("bulk complete",
			zap.String("job_id", job.ID),
			zap.Int("profiles", len(job.Profiles)),
			zap.Int("errors", len(job.Errors)),
			zap.String("report", job.ReportPath),
		)
		return writeOutput(os.Stdout, bulkFormat, map[string]any{
			"job_id":     job.ID,
			"status":     job.Status,
			"rows":       len(job.Profiles),
			"errors":     job.Errors,
			"excel_path": job.ReportPath,
		})
	},
}

func init() {
	bulkCmd.Flags().StringVar(&bulkMode, "mode", "realtime", "crawl mode: realtime or deep")
	bulkCmd.Flags().IntVar(&bulkConcurrency, "concurrency", 0, "rows processed at once (default from config)")
	bulkCmd.Flags().StringVar(&bulkFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(bulkCmd)
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-profiler/internal/store"
)

var (
	jobFormat string
	jobLimit  int
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect stored jobs",
}

var jobGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		job, err := st.GetJob(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "get job %s", args[0])
		}
		return writeOutput(os.Stdout, jobFormat, job)
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		jobs, err := st.ListJobs(cmd.Context(), jobLimit)
		if err != nil {
			return eris.Wrap(err, "list jobs")
		}

		type jobSummary struct {
			ID       string `json:"job_id"`
			Kind     string `json:"kind"`
			Status   string `json:"status"`
			Profiles int    `json:"profiles"`
			Created  string `json:"created_at"`
		}
		out := make([]jobSummary, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, jobSummary{
				ID:       j.ID,
				Kind:     string(j.Kind),
				Status:   string(j.Status),
				Profiles: len(j.Profiles),
				Created:  j.CreatedAt.Format(time.RFC3339),
			})
		}
		return writeOutput(os.Stdout, jobFormat, out)
	},
}

// openStore connects to the configured store and migrates it.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{MaxConns: cfg.Store.MaxConns})
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

func init() {
	jobCmd.PersistentFlags().StringVar(&jobFormat, "format", "json", "output format: json or yaml")
	jobListCmd.Flags().IntVar(&jobLimit, "limit", store.DefaultListLimit, "maximum jobs to list")

	jobCmd.AddCommand(jobGetCmd, jobListCmd)
	rootCmd.AddCommand(jobCmd)
}

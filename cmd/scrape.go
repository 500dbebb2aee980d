package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/pipeline"
	"github.com/sells-group/company-profiler/internal/verify"
)

var (
	scrapeMode   string
	scrapeFormat string
	scrapeGeo    string
)

// scrapeOutput is the CLI view of one finished scrape.
type scrapeOutput struct {
	JobID     string          `json:"job_id"`
	Status    model.JobStatus `json:"status"`
	Site      string          `json:"site"`
	Strategy  string          `json:"strategy"`
	Degraded  bool            `json:"degraded"`
	Pages     int             `json:"pages"`
	Verify    verify.Report   `json:"verification"`
	Data      model.Profile   `json:"data"`
	ExcelPath string          `json:"excel_path"`
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extract a single company profile",
}

var scrapeURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Crawl a known website and extract its profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := model.ParseMode(scrapeMode)
		if err != nil {
			return err
		}
		return runScrape(cmd, model.JobKindURL, model.Input{URL: args[0], Mode: mode})
	},
}

var scrapeNameCmd = &cobra.Command{
	Use:   "name <company>",
	Short: "Resolve a company's website by name and extract its profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := model.ParseMode(scrapeMode)
		if err != nil {
			return err
		}
		return runScrape(cmd, model.JobKindName, model.Input{
			CompanyName: args[0],
			Geography:   scrapeGeo,
			Mode:        mode,
		})
	},
}

func runScrape(cmd *cobra.Command, kind model.JobKind, in model.Input) error {
	ctx := cmd.Context()

	env, err := initPipeline(ctx, "scrape")
	if err != nil {
		return err
	}
	defer env.Close()

	job, out, err := newJobService(env).scrape(ctx, kind, in)
	if err != nil {
		return err
	}
	zap.L().Info("scrape complete",
		zap.String("job_id", job.ID),
		zap.String("site", out.Site),
		zap.String("strategy", out.Strategy),
	)
	return writeOutput(os.Stdout, scrapeFormat, newScrapeOutput(job, out))
}

func newScrapeOutput(job *model.Job, out *pipeline.Outcome) scrapeOutput {
	return scrapeOutput{
		JobID:     job.ID,
		Status:    job.Status,
		Site:      out.Site,
		Strategy:  out.Strategy,
		Degraded:  out.Degraded,
		Pages:     out.Pages,
		Verify:    out.Report,
		Data:      out.Profile,
		ExcelPath: job.ReportPath,
	}
}

func init() {
	scrapeCmd.PersistentFlags().StringVar(&scrapeMode, "mode", "realtime", "crawl mode: realtime or deep")
	scrapeCmd.PersistentFlags().StringVar(&scrapeFormat, "format", "json", "output format: json or yaml")
	scrapeNameCmd.Flags().StringVar(&scrapeGeo, "geo", "", "geography hint passed to the search providers")

	scrapeCmd.AddCommand(scrapeURLCmd, scrapeNameCmd)
	rootCmd.AddCommand(scrapeCmd)
}

package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/htmltext"
	"github.com/sells-group/company-profiler/internal/llmjson"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/resilience"
	"github.com/sells-group/company-profiler/pkg/anthropic"
)

const (
	promptPages       = 2
	maxPageTextLen    = 8000
	maxPromptTextLen  = 16000
	maxHeuristicTitle = 200
	maxHeuristicDesc  = 1000
)

// Strategy produces a raw profile from crawled pages. Post-processing is
// applied by Extractor regardless of the strategy used.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, site string, pages []model.CrawledPage) (model.Profile, error)
}

// AIConfig configures the model call.
type AIConfig struct {
	Model     string
	MaxTokens int64
}

// AIStrategy asks a language model to fill the profile schema.
type AIStrategy struct {
	client  anthropic.Client
	cfg     AIConfig
	breaker *resilience.CircuitBreaker
}

// NewAIStrategy creates an AIStrategy. A nil breaker gets the defaults.
func NewAIStrategy(client anthropic.Client, cfg AIConfig, breaker *resilience.CircuitBreaker) *AIStrategy {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	}
	return &AIStrategy{client: client, cfg: cfg, breaker: breaker}
}

// Name implements Strategy.
func (s *AIStrategy) Name() string { return "ai" }

// Extract implements Strategy.
func (s *AIStrategy) Extract(ctx context.Context, _ string, pages []model.CrawledPage) (model.Profile, error) {
	user := fmt.Sprintf("Instructions:\n%s\n\nWebsite content:\n%s\n\nFollow the instructions strictly.",
		schemaInstruction(), BuildPrompt(pages))

	resp, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.cfg.Model,
			MaxTokens: s.cfg.MaxTokens,
			Messages:  []anthropic.Message{{Role: "user", Content: user}},
		})
	})
	if err != nil {
		return model.Profile{}, eris.Wrap(err, "extract: model call")
	}
	resp.Usage.LogCost(s.cfg.Model, "extract")

	obj, err := llmjson.Decode(resp.Text())
	if err != nil {
		return model.Profile{}, eris.Wrap(err, "extract: parse model output")
	}
	return model.FromMap(obj), nil
}

// BuildPrompt renders the text of the first pages as "URL: <u>\n<text>"
// blocks, bounded per page and in total.
func BuildPrompt(pages []model.CrawledPage) string {
	blocks := make([]string, 0, promptPages)
	for _, p := range pages {
		if len(blocks) == promptPages {
			break
		}
		text := htmltext.Truncate(htmltext.CleanText(p.Body), maxPageTextLen)
		blocks = append(blocks, "URL: "+p.URL+"\n"+text)
	}
	return htmltext.Truncate(strings.Join(blocks, "\n\n"), maxPromptTextLen)
}

func schemaInstruction() string {
	var b strings.Builder
	b.WriteString("You are an AI data extractor. Input is raw text from a company website. ")
	b.WriteString("Return JSON exactly in this schema with English fields: {\n")
	headers := model.ProfileHeaders()
	for i, h := range headers {
		value := ""
		if h == model.FieldVerificationStatus {
			value = model.StatusUnverified
		}
		fmt.Fprintf(&b, "%q: %q", h, value)
		if i < len(headers)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// HeuristicStrategy reads the title and description of the first page. It
// never calls out and only fails when there is no page.
type HeuristicStrategy struct{}

// Name implements Strategy.
func (HeuristicStrategy) Name() string { return "heuristic" }

// Extract implements Strategy.
func (HeuristicStrategy) Extract(_ context.Context, site string, pages []model.CrawledPage) (model.Profile, error) {
	if len(pages) == 0 {
		return model.Profile{}, ErrNoContent
	}

	p := model.NewProfile()
	p.Website = site
	meta, err := htmltext.ParseMeta(pages[0].Body)
	if err != nil {
		return p, nil
	}
	p.CompanyName = htmltext.Truncate(meta.Title, maxHeuristicTitle)
	desc := meta.Description
	if desc == "" {
		desc = meta.FirstParagraph
	}
	p.Description = htmltext.Truncate(desc, maxHeuristicDesc)
	return p, nil
}

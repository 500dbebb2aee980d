package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/llmjson"
	"github.com/sells-group/company-profiler/internal/resilience"
	"github.com/sells-group/company-profiler/pkg/anthropic"
)

var errNoDomain = eris.New("resolve: model response has no domain")

// maxCandidateJSON bounds the serialized candidate list sent to the model.
const maxCandidateJSON = 12000

const selectInstruction = `You are an AI that selects the most likely official website for a company based on candidates.
Return strict JSON: {"domain": string, "confidence": number, "rationale": string}.
Consider exact name match, brand signals in title/desc, and ignore directories like careers/help.`

// SelectorConfig configures the model call.
type SelectorConfig struct {
	Model     string
	MaxTokens int64
}

// Selector asks a language model to pick the official site among probed
// candidates. It always produces an answer when given at least one
// candidate.
type Selector struct {
	client  anthropic.Client
	cfg     SelectorConfig
	breaker *resilience.CircuitBreaker
}

// NewSelector creates a Selector. A nil client selects the first candidate
// without calling out.
func NewSelector(client anthropic.Client, cfg SelectorConfig, breaker *resilience.CircuitBreaker) *Selector {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	}
	return &Selector{client: client, cfg: cfg, breaker: breaker}
}

// Select returns the chosen site URL, or "" when there are no candidates.
// Any model failure falls back to the first candidate's URL.
func (s *Selector) Select(ctx context.Context, company, geography string, candidates []Candidate) string {
	if len(candidates) == 0 {
		return ""
	}
	fallback := candidates[0].URL
	if s.client == nil {
		return fallback
	}

	pick, err := s.ask(ctx, company, geography, candidates)
	if err != nil {
		zap.L().Warn("resolve: ai selection failed, using first candidate",
			zap.Bool("degraded", true),
			zap.String("company", company),
			zap.String("fallback", fallback),
			zap.Error(err),
		)
		return fallback
	}
	return pick
}

func (s *Selector) ask(ctx context.Context, company, geography string, candidates []Candidate) (string, error) {
	summary, err := json.Marshal(candidates)
	if err != nil {
		return "", eris.Wrap(err, "resolve: marshal candidates")
	}
	payload := string(summary)
	if len(payload) > maxCandidateJSON {
		payload = payload[:maxCandidateJSON]
	}

	user := fmt.Sprintf("Company: %s\nLocation hint: %s\nCandidates(JSON):\n%s\nReturn only JSON.", company, geography, payload)
	resp, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.cfg.Model,
			MaxTokens: s.cfg.MaxTokens,
			System:    selectInstruction,
			Messages:  []anthropic.Message{{Role: "user", Content: user}},
		})
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(s.cfg.Model, "resolve_select")

	obj, err := llmjson.Decode(resp.Text())
	if err != nil {
		return "", err
	}
	domain := stringField(obj, "domain")
	if domain == "" {
		domain = stringField(obj, "url")
	}
	if domain == "" {
		return "", errNoDomain
	}
	if strings.HasPrefix(domain, "http") {
		return domain, nil
	}
	return "https://" + domain, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

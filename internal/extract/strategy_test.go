package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/pkg/anthropic"
	anthropicmocks "github.com/sells-group/company-profiler/pkg/anthropic/mocks"
)

func reply(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 900, OutputTokens: 200},
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	pages := []model.CrawledPage{
		{URL: "https://acme.com", Body: "<h1>Acme</h1><p>We build things.</p>"},
		{URL: "https://acme.com/about", Body: "<p>About us</p>"},
		{URL: "https://acme.com/team", Body: "<p>Never included</p>"},
	}
	got := BuildPrompt(pages)
	assert.Equal(t, "URL: https://acme.com\nAcme We build things.\n\nURL: https://acme.com/about\nAbout us", got)
}

func TestBuildPrompt_Bounds(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("word ", 5000)
	pages := []model.CrawledPage{
		{URL: "https://a.com", Body: big},
		{URL: "https://a.com/b", Body: big},
	}
	got := BuildPrompt(pages)
	assert.LessOrEqual(t, len([]rune(got)), maxPromptTextLen)
	first, _, _ := strings.Cut(got, "\n\nURL: ")
	assert.LessOrEqual(t, len(first), len("URL: https://a.com\n")+maxPageTextLen)
}

func TestSchemaInstruction(t *testing.T) {
	t.Parallel()

	s := schemaInstruction()
	for _, h := range model.ProfileHeaders() {
		assert.Contains(t, s, `"`+h+`"`)
	}
	assert.Contains(t, s, `"Verification Status": "UNVERIFIED"`)
}

func TestAIStrategy_Extract(t *testing.T) {
	client := anthropicmocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		c := req.Messages[0].Content
		return strings.Contains(c, "Website content:\nURL: https://acme.com\nAcme") &&
			strings.Contains(c, `"Founders/Key People": ""`)
	})).Return(reply("```json\n"+`{"Company Name":"Acme","Postal Code":94105,"Services":["Widgets","Gadgets"],"Email":""}`+"\n```"), nil).Once()

	s := NewAIStrategy(client, AIConfig{Model: "claude-haiku-4-5-20251001"}, nil)
	p, err := s.Extract(context.Background(), "https://acme.com", []model.CrawledPage{
		{URL: "https://acme.com", Body: "<p>Acme</p>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.CompanyName)
	assert.Equal(t, "94105", p.PostalCode)
	assert.Equal(t, "Widgets, Gadgets", p.Services)
	assert.Equal(t, "ai", s.Name())
}

func TestAIStrategy_Errors(t *testing.T) {
	tests := []struct {
		name string
		resp *anthropic.MessageResponse
		err  error
	}{
		{"api error", nil, errors.New("rate limited")},
		{"no json", reply("Sorry, I can't help with that."), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := anthropicmocks.NewMockClient(t)
			client.On("CreateMessage", mock.Anything, mock.Anything).Return(tt.resp, tt.err).Once()

			_, err := NewAIStrategy(client, AIConfig{}, nil).Extract(context.Background(), "https://acme.com",
				[]model.CrawledPage{{URL: "https://acme.com", Body: "x"}})
			assert.Error(t, err)
		})
	}
}

func TestHeuristicStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantName string
		wantDesc string
	}{
		{
			name:     "meta description",
			body:     `<title> Acme Corp </title><meta name="description" content="Widgets."><p>Para</p>`,
			wantName: "Acme Corp",
			wantDesc: "Widgets.",
		},
		{
			name:     "first paragraph",
			body:     `<title>Acme</title><p>We make widgets.</p><p>Second.</p>`,
			wantName: "Acme",
			wantDesc: "We make widgets.",
		},
		{
			name:     "nothing",
			body:     `<div>bare</div>`,
			wantName: "",
			wantDesc: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := HeuristicStrategy{}.Extract(context.Background(), "https://acme.com",
				[]model.CrawledPage{{URL: "https://acme.com", Body: tt.body}})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.CompanyName)
			assert.Equal(t, tt.wantDesc, p.Description)
			assert.Equal(t, "https://acme.com", p.Website)
			assert.Empty(t, p.Industry)
		})
	}
}

func TestHeuristicStrategy_TruncatesDescription(t *testing.T) {
	t.Parallel()

	body := `<title>` + strings.Repeat("T", 300) + `</title><p>` + strings.Repeat("d", 1500) + `</p>`
	p, err := HeuristicStrategy{}.Extract(context.Background(), "s", []model.CrawledPage{{Body: body}})
	require.NoError(t, err)
	assert.Len(t, p.CompanyName, maxHeuristicTitle)
	assert.Len(t, p.Description, maxHeuristicDesc)
}

func TestHeuristicStrategy_NoPages(t *testing.T) {
	t.Parallel()

	_, err := HeuristicStrategy{}.Extract(context.Background(), "s", nil)
	assert.ErrorIs(t, err, ErrNoContent)
}

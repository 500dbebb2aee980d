package bulk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/pipeline"
)

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Run(ctx context.Context, in model.Input) (*pipeline.Outcome, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*pipeline.Outcome)
	return out, args.Error(1)
}

func outcome(name string) *pipeline.Outcome {
	p := model.NewProfile()
	p.CompanyName = name
	return &pipeline.Outcome{Profile: p}
}

func TestRunner_Run(t *testing.T) {
	p := new(MockPipeline)
	p.On("Run", mock.Anything, model.Input{URL: "a.com", Mode: model.ModeDeep}).Return(outcome("A"), nil)
	p.On("Run", mock.Anything, model.Input{CompanyName: "B", Mode: model.ModeDeep}).Return(nil, pipeline.ErrFetchFailed)
	p.On("Run", mock.Anything, model.Input{URL: "c.com", Mode: model.ModeDeep}).Return(outcome("C"), nil)

	rows := []Row{
		{Line: 2, Input: model.Input{URL: "a.com"}},
		{Line: 3, Input: model.Input{CompanyName: "B"}},
		{Line: 4, Input: model.Input{Geography: "US"}},
		{Line: 5, Input: model.Input{URL: "c.com"}},
	}

	res, err := NewRunner(p, 2).Run(context.Background(), rows, model.ModeDeep)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 2)
	assert.Equal(t, "A", res.Profiles[0].CompanyName)
	assert.Equal(t, "C", res.Profiles[1].CompanyName)
	assert.Equal(t, []string{
		"Row 3: pipeline: fetch failed",
		"Row 4: missing URL or Company name",
	}, res.Errors)
	p.AssertNumberOfCalls(t, "Run", 3)
}

func TestRunner_NoSuccess(t *testing.T) {
	p := new(MockPipeline)
	p.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	var rows []Row
	for i := range 7 {
		rows = append(rows, Row{Line: i + 2, Input: model.Input{URL: "x.com"}})
	}

	res, err := NewRunner(p, 0).Run(context.Background(), rows, model.ModeRealtime)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSuccess)
	assert.Len(t, res.Errors, 7)
	assert.Contains(t, err.Error(), "Row 6: boom")
	assert.NotContains(t, err.Error(), "Row 7: boom")
}

func TestRunner_Cancelled(t *testing.T) {
	p := new(MockPipeline)
	p.On("Run", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(p, 1).Run(ctx, []Row{{Line: 2, Input: model.Input{URL: "a.com"}}}, model.ModeRealtime)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunner_DefaultConcurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultConcurrency, NewRunner(nil, -1).concurrency)
}

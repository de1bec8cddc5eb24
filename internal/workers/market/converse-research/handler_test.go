package converseresearch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "market-intel/internal/common/errors"
	"market-intel/internal/common/logger"
	"market-intel/internal/market"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Helper Functions
// ==========================

type fakeResolver struct {
	question string
	history  []market.ChatTurn
	result   market.ConverseResult
}

func (f *fakeResolver) Ask(ctx context.Context, question string, history ...market.ChatTurn) market.ConverseResult {
	f.question = question
	f.history = history
	return f.result
}

func createTestHandler(t *testing.T, r Resolver, maxHistory int) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second, MaxHistory: maxHistory}, r, logger.NewTestLogger(t))
}

// ==========================
// Input Validation Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	tests := []struct {
		name          string
		variables     string
		wantErr       bool
		validateInput func(t *testing.T, input *Input)
	}{
		{
			name:      "question only",
			variables: `{"question":"Who leads DFW?"}`,
			validateInput: func(t *testing.T, input *Input) {
				assert.Equal(t, "Who leads DFW?", input.Question)
				assert.Empty(t, input.History)
			},
		},
		{
			name:      "null history",
			variables: `{"question":"Who leads DFW?","history":null}`,
			validateInput: func(t *testing.T, input *Input) {
				assert.Nil(t, input.History)
			},
		},
		{
			name:      "with history",
			variables: `{"question":"And Aspen?","history":[{"role":"user","text":"Who leads DFW?"},{"role":"assistant","text":"Ideal Dental."}]}`,
			validateInput: func(t *testing.T, input *Input) {
				require.Len(t, input.History, 2)
				assert.Equal(t, "assistant", input.History[1].Role)
			},
		},
		{name: "missing question", variables: `{"history":[]}`, wantErr: true},
		{name: "empty question", variables: `{"question":""}`, wantErr: true},
		{name: "blank question", variables: `{"question":"  \n"}`, wantErr: true},
		{name: "unknown role", variables: `{"question":"q","history":[{"role":"system","text":"x"}]}`, wantErr: true},
		{name: "turn without text", variables: `{"question":"q","history":[{"role":"user"}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, &fakeResolver{}, 0)

			input, err := h.parseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
				return
			}
			require.NoError(t, err)
			tt.validateInput(t, input)
		})
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	r := &fakeResolver{result: market.ConverseResult{RequestID: "req-1", Answer: "Ideal Dental leads with 65 clinics."}}
	h := createTestHandler(t, r, 0)

	history := []market.ChatTurn{{Role: "user", Text: "Hi"}, {Role: "model", Text: "Hello"}}
	output := h.Execute(context.Background(), &Input{Question: "Who leads DFW?", History: history})

	assert.Equal(t, "Who leads DFW?", r.question)
	assert.Equal(t, history, r.history)
	assert.Equal(t, "Ideal Dental leads with 65 clinics.", output.Answer)
	assert.Equal(t, "req-1", output.RequestID)
	assert.Empty(t, output.Failure)
}

func TestHandler_Execute_TrimsHistory(t *testing.T) {
	r := &fakeResolver{}
	h := createTestHandler(t, r, 2)

	history := []market.ChatTurn{
		{Role: "user", Text: "one"},
		{Role: "model", Text: "two"},
		{Role: "user", Text: "three"},
	}
	h.Execute(context.Background(), &Input{Question: "four", History: history})

	require.Len(t, r.history, 2)
	assert.Equal(t, "two", r.history[0].Text)
	assert.Equal(t, "three", r.history[1].Text)
}

func TestHandler_Execute_FailureAnswer(t *testing.T) {
	r := &fakeResolver{result: market.ConverseResult{
		RequestID: "req-2",
		Answer:    "Error: the research service timed out",
		Failure:   market.FailureTimeout,
	}}
	h := createTestHandler(t, r, 0)

	output := h.Execute(context.Background(), &Input{Question: "q"})

	assert.Equal(t, market.FailureTimeout, output.Failure)
	assert.Contains(t, output.Answer, "Error:")
}

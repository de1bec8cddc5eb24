// internal/workers/market/converse-research/handler.go
package converseresearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "market-intel/internal/common/errors"
	"market-intel/internal/common/logger"
	"market-intel/internal/common/validation"
	"market-intel/internal/market"
)

const (
	TaskType = "converse-research"
)

type Resolver interface {
	Ask(ctx context.Context, question string, history ...market.ChatTurn) market.ConverseResult
}

type Handler struct {
	config   *Config
	resolver Resolver
	schema   *validation.Schema
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, resolver Resolver, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		resolver: resolver,
		schema:   validation.MustCompile(inputSchema),
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.execute(ctx, input)

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}

	result, err := h.schema.ValidateInput(raw)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(validation.FormatErrors(result.Errors))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, apperrors.NewInvalidInputError("question: must not be blank")
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	history := input.History
	if h.config.MaxHistory > 0 && len(history) > h.config.MaxHistory {
		history = history[len(history)-h.config.MaxHistory:]
	}

	res := h.resolver.Ask(ctx, input.Question, history...)

	h.logger.Info("research question answered", map[string]interface{}{
		"requestId": res.RequestID,
		"turns":     len(history),
		"chars":     len(res.Answer),
		"failure":   string(res.Failure),
	})

	return &Output{
		RequestID: res.RequestID,
		Answer:    res.Answer,
		Failure:   res.Failure,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}

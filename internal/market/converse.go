// internal/market/converse.go
package market

import (
	"context"
	"fmt"
	"strings"
)

func requestAnswer(ctx context.Context, p Provider, question string, history []ChatTurn) (string, error) {
	turns := make([]ChatTurn, 0, len(history))
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := "user"
		if strings.EqualFold(t.Role, "model") || strings.EqualFold(t.Role, "assistant") {
			role = "model"
		}
		turns = append(turns, ChatTurn{Role: role, Text: t.Text})
	}

	reply, err := p.Generate(ctx, GenerateRequest{
		SystemInstruction: analystInstruction,
		Prompt:            question,
		History:           turns,
		Grounding:         true,
	})
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty answer", ErrProvider)
	}
	return reply, nil
}

// failureAnswer is the text a caller sees instead of an answer. It names the
// kind of failure and never carries the underlying error.
func failureAnswer(kind FailureKind) string {
	switch kind {
	case FailureTimeout:
		return "Error: the research service timed out"
	case FailureAuth:
		return "Error: research service credentials were rejected"
	case FailureCanceled:
		return "Error: the request was canceled"
	default:
		return "Error: the research service is unavailable"
	}
}

// Package gemini implements the market research provider on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	apperrors "market-intel/internal/common/errors"
	"market-intel/internal/common/logger"
	"market-intel/internal/market"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// SchemaWithSearch sends the response schema together with search
	// grounding. Models that reject the combination get the schema as
	// prompt text instead, which is the default.
	SchemaWithSearch bool
	HTTPClient       *http.Client
}

// generator is the slice of the genai SDK the client depends on.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements market.Provider.
type Client struct {
	models           generator
	model            string
	schemaWithSearch bool
	logger           logger.Logger
	tracer           trace.Tracer
	latency          otelmetric.Float64Histogram
}

var _ market.Provider = (*Client)(nil)

func New(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	sdk, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(sdk.Models, cfg, log), nil
}

func newClient(models generator, cfg Config, log logger.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	latency, _ := otel.Meter("market-intel/gemini").Float64Histogram(
		"provider.latency",
		otelmetric.WithDescription("Gemini GenerateContent latency"),
		otelmetric.WithUnit("ms"),
	)

	return &Client{
		models:           models,
		model:            cfg.Model,
		schemaWithSearch: cfg.SchemaWithSearch,
		logger:           log.With(map[string]interface{}{"component": "gemini", "model": cfg.Model}),
		tracer:           otel.Tracer("market-intel/gemini"),
		latency:          latency,
	}
}

// Model is the model every request is sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate makes one GenerateContent call. It never retries.
func (c *Client) Generate(ctx context.Context, req market.GenerateRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.GenerateContent", trace.WithAttributes(
		attribute.String("gen_ai.request.model", c.model),
		attribute.Bool("gemini.grounding", req.Grounding),
		attribute.Bool("gemini.schema", req.ResponseSchema != nil),
		attribute.Int("gemini.history", len(req.History)),
	))
	defer span.End()

	config, err := c.buildConfig(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return "", apperrors.NewProviderRequestFailedError(0, err)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, buildContents(req), config)
	elapsed := time.Since(start)

	status := "ok"
	defer func() {
		if c.latency != nil {
			c.latency.Record(ctx, float64(elapsed.Milliseconds()), otelmetric.WithAttributes(
				attribute.String("status", status),
			))
		}
	}()

	if err != nil {
		mapped := mapError(ctx, err)
		status = string(mapped.Code)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		c.logger.Error("gemini request failed", map[string]interface{}{
			"errorCode": status,
			"error":     err.Error(),
			"elapsedMs": elapsed.Milliseconds(),
		})
		return "", mapped
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		status = string(apperrors.ErrCodeProviderEmptyResponse)
		span.SetStatus(codes.Error, status)
		return "", apperrors.NewProviderEmptyResponseError(c.model)
	}

	c.logger.Debug("gemini request completed", map[string]interface{}{
		"elapsedMs": elapsed.Milliseconds(),
		"chars":     len(text),
	})
	return text, nil
}

func (c *Client) buildConfig(req market.GenerateRequest) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{}
	instruction := req.SystemInstruction

	if req.ResponseSchema != nil {
		if req.Grounding && !c.schemaWithSearch {
			doc, err := json.MarshalIndent(req.ResponseSchema, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encode response schema: %w", err)
			}
			instruction = strings.TrimSpace(instruction + "\n\nReply with JSON that conforms to this JSON Schema:\n" + string(doc))
		} else {
			config.ResponseMIMEType = "application/json"
			config.ResponseSchema = toSchema(req.ResponseSchema)
		}
	}

	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	if req.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return config, nil
}

func buildContents(req market.GenerateRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))
}

// mapError converts SDK and network failures into provider error codes.
// The original error stays reachable through Unwrap, so caller
// cancellation is still visible to errors.Is.
func mapError(ctx context.Context, err error) *apperrors.StandardError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewProviderTimeoutError(err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewProviderAuthFailedError(err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return apperrors.NewProviderTimeoutError(err)
		default:
			return apperrors.NewProviderRequestFailedError(apiErr.Code, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewProviderTimeoutError(err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || netErr != nil {
		return apperrors.NewProviderTransportFailedError(err)
	}

	return apperrors.NewProviderRequestFailedError(0, err)
}

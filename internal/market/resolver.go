// internal/market/resolver.go
package market

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"market-intel/internal/common/logger"
	"market-intel/internal/common/metrics"
)

const (
	DefaultTimeout = 30 * time.Second

	pathLocked = "locked"
	pathOpen   = "open"
)

// Options configures a Resolver. Only Provider is required.
type Options struct {
	Provider Provider
	// Trusted defaults to the built-in tables.
	Trusted *TrustedStore
	// Cache is optional; nil disables estimate caching.
	Cache  EstimateCache
	Logger logger.Logger
	// Timeout bounds every provider call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// LockedDelay is an artificial pause before a trusted table is returned.
	LockedDelay time.Duration
}

// Resolver answers market, detail and research questions. It is safe for
// concurrent use.
type Resolver struct {
	provider    Provider
	trusted     *TrustedStore
	cache       EstimateCache
	logger      logger.Logger
	timeout     time.Duration
	lockedDelay time.Duration

	flights singleflight.Group
	tracer  trace.Tracer
}

func NewResolver(opts Options) (*Resolver, error) {
	if opts.Provider == nil {
		return nil, errors.New("market: provider is required")
	}
	if opts.Trusted == nil {
		opts.Trusted = DefaultTrustedStore()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LockedDelay < 0 {
		opts.LockedDelay = 0
	}

	return &Resolver{
		provider:    opts.Provider,
		trusted:     opts.Trusted,
		cache:       opts.Cache,
		logger:      opts.Logger.With(map[string]interface{}{"component": "market-resolver"}),
		timeout:     opts.Timeout,
		lockedDelay: opts.LockedDelay,
		tracer:      otel.Tracer("market-intel/market"),
	}, nil
}

// Trusted exposes the store the resolver classifies against.
func (r *Resolver) Trusted() *TrustedStore {
	return r.trusted
}

// Resolve returns the competitor matrix for market. Locked markets are
// answered from the trusted table and never reach the provider.
func (r *Resolver) Resolve(ctx context.Context, market string) MatrixResult {
	start := time.Now()
	cls := r.trusted.Classify(market)
	res := MatrixResult{
		RequestID: uuid.NewString(),
		Market:    market,
		Records:   []CompetitorRecord{},
	}

	path := pathOpen
	if cls.Locked {
		path = pathLocked
	}

	ctx, span := r.tracer.Start(ctx, "market.Resolve", trace.WithAttributes(
		attribute.String("request.id", res.RequestID),
		attribute.String("market.normalized", cls.Normalized),
		attribute.String("market.path", path),
	))
	defer span.End()

	log := r.logger.With(map[string]interface{}{
		"requestId": res.RequestID,
		"market":    cls.Normalized,
		"path":      path,
	})

	var err error
	if cls.Locked {
		err = r.resolveLocked(ctx, cls, &res)
	} else {
		err = r.resolveOpen(ctx, cls, &res)
	}

	outcome := "ok"
	if err != nil {
		res.Failure = classifyFailure(ctx, err)
		res.Records = []CompetitorRecord{}
		outcome = string(res.Failure)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.Error("market resolution failed", map[string]interface{}{
			"failure": outcome,
			"error":   err.Error(),
		})
	} else {
		span.SetAttributes(
			attribute.String("market.source", string(res.Source)),
			attribute.Int("market.records", len(res.Records)),
		)
		log.Info("market resolved", map[string]interface{}{
			"source":   res.Source,
			"tableKey": res.TableKey,
			"records":  len(res.Records),
			"repairs":  res.Repairs.Total(),
		})
	}

	metrics.MarketResolutions.WithLabelValues(path, outcome).Inc()
	metrics.MarketResolutionDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	return res
}

func (r *Resolver) resolveLocked(ctx context.Context, cls Classification, res *MatrixResult) error {
	if r.lockedDelay > 0 {
		t := time.NewTimer(r.lockedDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	table, ok := r.trusted.Table(cls.TableKey)
	if !ok {
		// Classify only returns keys from this store
		return errors.New("market: classified table missing from store")
	}
	res.Source = SourceTrusted
	res.TableKey = table.Key
	res.Records = table.Records
	return nil
}

type estimateOutcome struct {
	records []CompetitorRecord
	repairs RepairReport
	source  Source
}

// resolveOpen estimates an open market. Identical concurrent requests share
// one provider call. The shared call runs detached from any single caller's
// cancellation and is bounded by the resolver timeout instead; each caller
// still stops waiting as soon as its own context ends.
func (r *Resolver) resolveOpen(ctx context.Context, cls Classification, res *MatrixResult) error {
	res.Source = SourceEstimated
	if cls.Normalized == "" {
		return nil
	}

	ch := r.flights.DoChan(cls.Normalized, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.estimate(callCtx, cls.Normalized)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return out.Err
		}
		o := out.Val.(estimateOutcome)
		res.Source = o.source
		res.Records = copyRecords(o.records)
		res.Repairs = o.repairs
		return nil
	}
}

func (r *Resolver) estimate(ctx context.Context, normalized string) (estimateOutcome, error) {
	if r.cache != nil {
		records, hit, err := r.cache.Get(ctx, normalized)
		switch {
		case err != nil:
			metrics.EstimateCacheLookups.WithLabelValues("error").Inc()
			r.logger.Warn("estimate cache read failed", map[string]interface{}{
				"market": normalized,
				"error":  err.Error(),
			})
		case hit:
			metrics.EstimateCacheLookups.WithLabelValues("hit").Inc()
			return estimateOutcome{records: records, source: SourceCached}, nil
		default:
			metrics.EstimateCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	raw, err := requestEstimate(ctx, r.provider, normalized)
	metrics.ProviderCalls.WithLabelValues("estimate", outcomeLabel(ctx, err)).Inc()
	if err != nil {
		return estimateOutcome{}, err
	}

	records, repairs := NormalizeWithReport(raw)
	for field, n := range repairs.fields() {
		if n > 0 {
			metrics.NormalizationRepairs.WithLabelValues(field).Add(float64(n))
		}
	}

	if r.cache != nil && len(records) > 0 {
		if err := r.cache.Set(ctx, normalized, records); err != nil {
			r.logger.Warn("estimate cache write failed", map[string]interface{}{
				"market": normalized,
				"error":  err.Error(),
			})
		}
	}

	return estimateOutcome{records: records, repairs: repairs, source: SourceEstimated}, nil
}

// Detail looks up the named practitioners behind one competitor.
func (r *Resolver) Detail(ctx context.Context, market, competitor string) DetailResult {
	competitor = strings.TrimSpace(competitor)
	res := DetailResult{RequestID: uuid.NewString()}

	ctx, span := r.tracer.Start(ctx, "market.Detail", trace.WithAttributes(
		attribute.String("request.id", res.RequestID),
		attribute.String("market.normalized", normalizeMarket(market)),
		attribute.String("competitor", competitor),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	detail, err := requestDetail(callCtx, r.provider, strings.TrimSpace(market), competitor)
	metrics.ProviderCalls.WithLabelValues("detail", outcomeLabel(ctx, err)).Inc()
	if err != nil {
		res.Detail = failedDetail(competitor)
		res.Failure = classifyFailure(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(res.Failure))
		r.logger.Error("competitor detail lookup failed", map[string]interface{}{
			"requestId":  res.RequestID,
			"competitor": competitor,
			"failure":    res.Failure,
			"error":      err.Error(),
		})
		return res
	}

	res.Detail = detail
	return res
}

// Ask answers a free-form research question, optionally continuing a prior
// conversation.
func (r *Resolver) Ask(ctx context.Context, question string, history ...ChatTurn) ConverseResult {
	res := ConverseResult{RequestID: uuid.NewString()}

	ctx, span := r.tracer.Start(ctx, "market.Ask", trace.WithAttributes(
		attribute.String("request.id", res.RequestID),
		attribute.Int("chat.history", len(history)),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	answer, err := requestAnswer(callCtx, r.provider, question, history)
	metrics.ProviderCalls.WithLabelValues("converse", outcomeLabel(ctx, err)).Inc()
	if err != nil {
		res.Failure = classifyFailure(ctx, err)
		res.Answer = failureAnswer(res.Failure)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(res.Failure))
		r.logger.Error("research question failed", map[string]interface{}{
			"requestId": res.RequestID,
			"failure":   res.Failure,
			"error":     err.Error(),
		})
		return res
	}

	res.Answer = answer
	return res
}

// ResolveMarket is Resolve with failures collapsed to an empty slice.
func (r *Resolver) ResolveMarket(ctx context.Context, market string) []CompetitorRecord {
	return r.Resolve(ctx, market).Records
}

// ResolveCompetitorDetail is Detail without the failure kind.
func (r *Resolver) ResolveCompetitorDetail(ctx context.Context, market, competitor string) CompetitorDetail {
	return r.Detail(ctx, market, competitor).Detail
}

// Converse is Ask without history or the failure kind.
func (r *Resolver) Converse(ctx context.Context, question string) string {
	return r.Ask(ctx, question).Answer
}

func outcomeLabel(ctx context.Context, err error) string {
	if err == nil {
		return "ok"
	}
	return string(classifyFailure(ctx, err))
}

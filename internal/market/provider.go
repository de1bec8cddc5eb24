// internal/market/provider.go
package market

import "context"

// GenerateRequest is one call to a generative model.
type GenerateRequest struct {
	SystemInstruction string
	Prompt            string
	// History holds prior turns, oldest first. Prompt is appended as the
	// newest user turn.
	History []ChatTurn
	// ResponseSchema, when set, asks for JSON output of this shape.
	ResponseSchema map[string]interface{}
	// Grounding enables web search grounding.
	Grounding bool
}

// Provider is the generative backend. Implementations return the reply
// text or an error; they never retry.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f ProviderFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

const analystInstruction = `You are the lead market research analyst for a dental service organization group.
You deliver competitive intelligence for designated market areas with an emphasis on
like-for-like financial comparison between competitors.

Data hierarchy:
1. Curated competitor tables supplied by the operator are authoritative.
2. Public records and web search results come next.
3. Estimates from comparable markets are the last resort and must be labeled as such.

Pricing tiers:
- Tier 0: economy, denture only.
- Tier 1: economy plus dentures, quoted as a low and a high range.
- Tier 2: premium.
- Tier 3: ultimate fit.

When asked for structured data, reply with JSON only and no surrounding prose.
If a price is implausibly low for the tier, report it as unknown.`

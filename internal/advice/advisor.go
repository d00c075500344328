// Package advice produces natural-language financial advice from a user's
// accounts and transactions.
package advice

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/logger"
)

const (
	// NoCredentialMessage is returned when no model credential is configured.
	NoCredentialMessage = "AI advice is unavailable: no API key is configured. Set GEMINI_API_KEY to enable financial advice."

	// EmptyAdviceMessage is returned when the model answers with no text.
	EmptyAdviceMessage = "The model returned no advice. Please try again later."
)

// Advisor builds prompts and asks a Generator for advice.
type Advisor struct {
	gen Generator
}

// NewAdvisor creates an Advisor. A nil generator means no credential is
// configured: Advise then answers with NoCredentialMessage without any call.
func NewAdvisor(gen Generator) *Advisor {
	return &Advisor{gen: gen}
}

// Enabled reports whether a generator is configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.gen != nil
}

// Advise returns advice for the given data. Generator failures are returned
// to the caller as is; they are never retried.
func (a *Advisor) Advise(ctx context.Context, txs []domain.Transaction, accounts []domain.Account) (string, error) {
	if !a.Enabled() {
		return NoCredentialMessage, nil
	}

	log := logger.FromContext(ctx)

	prompt, err := BuildPrompt(accounts, txs)
	if err != nil {
		return "", fmt.Errorf("Advise: %w", err)
	}

	log.Debug().Int("prompt_bytes", len(prompt)).Int("transactions", len(txs)).Msg("Requesting advice")

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Advice generation failed")
		return "", fmt.Errorf("Advise: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return EmptyAdviceMessage, nil
	}
	return text, nil
}

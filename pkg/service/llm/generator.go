package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// DefaultCompleteTimeout bounds a single generation call
const DefaultCompleteTimeout = 30 * time.Second

// systemPrompt frames every non-crisis completion. The crisis framing lives
// in the PromptContext itself so it survives even if this prompt changes.
const systemPrompt = `You are a compassionate mental wellness companion. You provide empathetic, supportive responses for mental health support.

Guidelines:
- Be warm, understanding, and non-judgmental
- Offer practical coping strategies grounded in the provided resources
- Suggest professional help when appropriate for serious issues
- Keep responses concise but caring
- Use encouraging, hopeful language`

// Generator adapts a gollem.LLMClient to the completion collaborator. The
// provider is treated as unreliable: timeouts and failures surface as typed
// errors and are never absorbed.
type Generator struct {
	client  gollem.LLMClient
	timeout time.Duration
}

var _ interfaces.Generator = &Generator{}

// GeneratorOption is a functional option for Generator configuration
type GeneratorOption func(*Generator)

// WithCompleteTimeout overrides the per-call timeout
func WithCompleteTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGenerator creates a Generator backed by the given LLM client
func NewGenerator(client gollem.LLMClient, opts ...GeneratorOption) (*Generator, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Generator{
		client:  client,
		timeout: DefaultCompleteTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Complete turns the assembled prompt into response text
func (g *Generator) Complete(ctx context.Context, prompt *model.PromptContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	session, err := g.client.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(types.ErrGenerator, "failed to create generator session", goerr.V("cause", err))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt.Render()))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", goerr.Wrap(types.ErrGeneratorTimeout, "generator timed out",
				goerr.V("timeout", g.timeout), goerr.V("userID", prompt.UserID))
		}
		return "", goerr.Wrap(types.ErrGenerator, "generation failed",
			goerr.V("cause", err), goerr.V("userID", prompt.UserID))
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if text == "" {
		return "", goerr.Wrap(types.ErrGenerator, "generator returned empty response",
			goerr.V("userID", prompt.UserID))
	}

	return text, nil
}

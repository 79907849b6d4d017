package model

import (
	"fmt"
	"strings"

	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// PromptContext is the bounded payload handed to the external text generator:
// a session summary, the accepted retrieval results, the recent turn window,
// and the new user message. Built once per turn, never persisted.
type PromptContext struct {
	UserID         types.UserID
	Topic          types.Topic
	EmotionalState types.EmotionalState
	Results        []RetrievalResult // ordered by score descending
	History        []Turn            // bounded recent window, oldest first
	Message        string            `masq:"secret"`
	Crisis         bool
}

// UsedContext reports whether any retrieval results survived thresholding
// and budget trimming.
func (p *PromptContext) UsedContext() bool {
	return len(p.Results) > 0
}

// Size returns the rendered size in characters, the unit of the prompt budget.
func (p *PromptContext) Size() int {
	return len(p.Render())
}

// TrimToBudget drops content until the rendered prompt fits the budget.
// Retrieval results go first (lowest score first), then the oldest history
// turns. The current user message and the session summary are never dropped.
func (p *PromptContext) TrimToBudget(budget int) {
	if budget <= 0 {
		return
	}
	for p.Size() > budget && len(p.Results) > 0 {
		p.Results = p.Results[:len(p.Results)-1]
	}
	for p.Size() > budget && len(p.History) > 0 {
		p.History = p.History[1:]
	}
}

// Render produces the prompt text for the generator
func (p *PromptContext) Render() string {
	var sb strings.Builder

	if p.Crisis {
		sb.WriteString(crisisSafetyPrompt)
		sb.WriteString("\n\n")
	} else {
		fmt.Fprintf(&sb, "Session summary: topic=%s, emotional_state=%s\n\n", p.Topic, p.EmotionalState)
	}

	if len(p.Results) > 0 {
		sb.WriteString("Relevant information from wellness resources:\n\n")
		for i, r := range p.Results {
			fmt.Fprintf(&sb, "%d. From %s (relevance: %.2f):\n%s\n\n", i+1, r.Chunk.SourceID, r.Score, r.Chunk.Text)
		}
	}

	if len(p.History) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, turn := range p.History {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Text)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "User message: %s\n", p.Message)

	return sb.String()
}

// crisisSafetyPrompt is the fixed safety context used when the classifier
// detects crisis indicators. It depends on no external infrastructure so the
// crisis path stays available even when retrieval or generation is degraded.
const crisisSafetyPrompt = `You are an emergency mental health assistant. This is a CRISIS situation.

CRITICAL PRIORITIES:
1. Express immediate care and concern
2. Encourage the user to seek professional help immediately
3. Provide crisis hotline numbers
4. Stay with the user and keep them talking
5. Do NOT minimize their feelings

Crisis Resources:
- National Suicide Prevention Lifeline: 988
- Crisis Text Line: Text HOME to 741741
- Emergency Services: 911`

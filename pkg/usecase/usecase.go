package usecase

import (
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/service/classifier"
	"github.com/wellspring-lab/wellspring/pkg/service/index"
	"github.com/wellspring-lab/wellspring/pkg/service/ingest"
	"github.com/wellspring-lab/wellspring/pkg/service/retrieval"
)

// DefaultPromptBudget bounds the rendered prompt size in characters
const DefaultPromptBudget = 4000

// DefaultHistoryWindow is how many recent turns are included in a prompt
const DefaultHistoryWindow = 8

type UseCases struct {
	repo interfaces.Repository

	promptBudget  int
	historyWindow int

	Turn    *TurnUseCase
	Session *SessionUseCase
	Mood    *MoodUseCase
	Ingest  *IngestUseCase
}

type Option func(*UseCases)

// WithPromptBudget overrides the prompt character budget
func WithPromptBudget(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.promptBudget = n
		}
	}
}

// WithHistoryWindow overrides the prompt history window
func WithHistoryWindow(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.historyWindow = n
		}
	}
}

func New(
	repo interfaces.Repository,
	cls *classifier.Classifier,
	retriever *retrieval.Engine,
	generator interfaces.Generator,
	idx *index.Index,
	ingestSvc *ingest.Service,
	opts ...Option,
) *UseCases {
	uc := &UseCases{
		repo:          repo,
		promptBudget:  DefaultPromptBudget,
		historyWindow: DefaultHistoryWindow,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Turn = NewTurnUseCase(repo, cls, retriever, generator, uc.historyWindow, uc.promptBudget)
	uc.Session = NewSessionUseCase(repo)
	uc.Mood = NewMoodUseCase(repo)
	uc.Ingest = NewIngestUseCase(repo, ingestSvc, idx)

	return uc
}

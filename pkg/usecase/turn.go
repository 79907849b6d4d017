package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/service/classifier"
	"github.com/wellspring-lab/wellspring/pkg/service/retrieval"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
)

// classifierContextTurns is how many recent user turns feed the classifier
const classifierContextTurns = 3

// TurnResult is the outcome of one completed exchange
type TurnResult struct {
	ResponseText string
	Topic        types.Topic
	Crisis       bool
	UsedContext  bool
}

// TurnUseCase runs the per-message pipeline: classify, retrieve, assemble a
// bounded prompt, generate, then persist both turns. Session writes happen
// only after generation succeeds, so a failed turn leaves the session exactly
// as it was.
type TurnUseCase struct {
	repo          interfaces.Repository
	classifier    *classifier.Classifier
	retriever     *retrieval.Engine
	generator     interfaces.Generator
	historyWindow int
	promptBudget  int
}

func NewTurnUseCase(
	repo interfaces.Repository,
	cls *classifier.Classifier,
	retriever *retrieval.Engine,
	generator interfaces.Generator,
	historyWindow, promptBudget int,
) *TurnUseCase {
	return &TurnUseCase{
		repo:          repo,
		classifier:    cls,
		retriever:     retriever,
		generator:     generator,
		historyWindow: historyWindow,
		promptBudget:  promptBudget,
	}
}

// HandleTurn processes one user message end to end. The per-user session lock
// is held for the whole turn, so concurrent messages from the same user are
// serialized while different users proceed in parallel.
func (u *TurnUseCase) HandleTurn(ctx context.Context, userID types.UserID, message string) (*TurnResult, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid user ID", goerr.V("cause", err))
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, goerr.Wrap(ErrInvalidRequest, "message is empty", goerr.V("userID", userID))
	}

	release := u.repo.Session().AcquireUser(ctx, userID)
	defer release()

	session, err := u.repo.Session().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load session", goerr.V("userID", userID))
	}

	cls := u.classifier.Classify(message, session.CurrentTopic, session.RecentUserTexts(classifierContextTurns))

	// Crisis turns skip retrieval entirely. The safety response must not
	// depend on index or embedding availability.
	var results []model.RetrievalResult
	if !cls.IsCrisis() {
		results, err = u.retriever.Retrieve(ctx, message, cls.Topic)
		if err != nil {
			return nil, goerr.Wrap(err, "retrieval failed", goerr.V("userID", userID))
		}
	}

	emotion := types.DetectEmotion(message, cls.Topic)

	prompt := &model.PromptContext{
		UserID:         userID,
		Topic:          cls.Topic,
		EmotionalState: emotion,
		Results:        results,
		History:        session.RecentTurns(u.historyWindow),
		Message:        message,
		Crisis:         cls.IsCrisis(),
	}
	prompt.TrimToBudget(u.promptBudget)

	responseText, err := u.generator.Complete(ctx, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "generation failed", goerr.V("userID", userID), goerr.V("topic", cls.Topic))
	}

	now := time.Now()
	if err := u.repo.Session().AppendTurn(ctx, userID, model.Turn{
		Role:      types.RoleUser,
		Text:      message,
		Timestamp: now,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to record user turn", goerr.V("userID", userID))
	}
	if err := u.repo.Session().AppendTurn(ctx, userID, model.Turn{
		Role:      types.RoleAssistant,
		Text:      responseText,
		Timestamp: now,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to record assistant turn", goerr.V("userID", userID))
	}
	if err := u.repo.Session().UpdateState(ctx, userID, cls.Topic, emotion); err != nil {
		return nil, goerr.Wrap(err, "failed to update session state", goerr.V("userID", userID))
	}

	logging.From(ctx).Info("turn completed",
		"user_id", userID,
		"topic", cls.Topic,
		"confidence", cls.Confidence,
		"crisis", cls.IsCrisis(),
		"used_context", prompt.UsedContext(),
		"prompt_size", prompt.Size(),
	)

	return &TurnResult{
		ResponseText: responseText,
		Topic:        cls.Topic,
		Crisis:       cls.IsCrisis(),
		UsedContext:  prompt.UsedContext(),
	}, nil
}

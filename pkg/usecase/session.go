package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
)

// SessionUseCase exposes read-only session introspection
type SessionUseCase struct {
	repo interfaces.Repository
}

func NewSessionUseCase(repo interfaces.Repository) *SessionUseCase {
	return &SessionUseCase{repo: repo}
}

// Get returns the user's session, or types.ErrSessionNotFound when no turn
// has ever been processed for the user.
func (u *SessionUseCase) Get(ctx context.Context, userID types.UserID) (*model.ConversationSession, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid user ID", goerr.V("cause", err))
	}

	session, err := u.repo.Session().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load session", goerr.V("userID", userID))
	}
	return session, nil
}

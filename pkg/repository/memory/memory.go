package memory

import (
	"github.com/wellspring-lab/wellspring/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	chunk   *chunkRepository
	session *sessionRepository
	mood    *moodRepository
}

var _ interfaces.Repository = &Memory{}

// Option configures the in-memory repository
type Option func(*Memory)

// WithHistoryCap overrides the retained turn history cap per session
func WithHistoryCap(cap int) Option {
	return func(m *Memory) {
		m.session.historyCap = cap
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		chunk:   newChunkRepository(),
		session: newSessionRepository(DefaultHistoryCap),
		mood:    newMoodRepository(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) Chunk() interfaces.ChunkRepository {
	return m.chunk
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Mood() interfaces.MoodRepository {
	return m.mood
}

func (m *Memory) Close() error {
	return nil
}

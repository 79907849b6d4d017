package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Chunk() ChunkRepository
	Session() SessionRepository
	Mood() MoodRepository

	Close() error
}

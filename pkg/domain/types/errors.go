package types

import "errors"

// Error taxonomy for the context assembly engine. Callers branch on these with
// errors.Is; layers add detail via goerr.Wrap without losing the sentinel.
var (
	// ErrIngestion marks a bad input document. Localized to that document;
	// previously ingested chunks are unaffected.
	ErrIngestion = errors.New("document ingestion failed")

	// ErrIndexNotReady is returned when the embedding index is queried before
	// a build has completed. Structural misuse, not retried.
	ErrIndexNotReady = errors.New("embedding index not ready")

	// ErrDimensionMismatch is returned when a query vector's dimensionality
	// disagrees with the index. Structural misuse, not retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingTimeout marks a timed-out embedding call. Recoverable:
	// retrieval degrades to empty results and the turn continues.
	ErrEmbeddingTimeout = errors.New("embedding call timed out")

	// ErrGeneratorTimeout marks a timed-out generator call. Fails the whole
	// turn with no session mutation.
	ErrGeneratorTimeout = errors.New("generator call timed out")

	// ErrGenerator marks a non-timeout generator failure. Never absorbed;
	// surfaced to the caller so no response is fabricated.
	ErrGenerator = errors.New("generator call failed")

	// ErrSessionNotFound is a programming-contract violation: appendTurn or
	// updateState called before getOrCreate for that user.
	ErrSessionNotFound = errors.New("session not found")
)

package jobs

// Queue provides an abstraction for enqueueing background generation work
type Queue interface {
	EnqueueGeneration() error
}

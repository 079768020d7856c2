package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/orchestrator"
)

// MockGenerator is a mock implementation of scheduler.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, []orchestrator.Attempt) {
	args := m.Called(ctx, gc)
	var attempts []orchestrator.Attempt
	if args.Get(1) != nil {
		attempts = args.Get(1).([]orchestrator.Attempt)
	}
	return args.Get(0).(*models.LessonResult), attempts
}

// MockChunker is a mock implementation of scheduler.SourceChunker
type MockChunker struct {
	mock.Mock
}

func (m *MockChunker) Chunk(ctx context.Context, sources []models.SourceDescriptor) []models.SourceChunk {
	args := m.Called(ctx, sources)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.SourceChunk)
}

// MockNotifier is a mock implementation of notify.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, id, message string) {
	m.Called(ctx, id, message)
}

// MockQueue is a mock implementation of jobs.Queue
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) EnqueueGeneration() error {
	args := m.Called()
	return args.Error(0)
}

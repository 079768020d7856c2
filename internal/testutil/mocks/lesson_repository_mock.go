package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mprates/dailylesson/internal/models"
)

// MockLessonRepository is a mock implementation of repository.LessonRepository
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) GetByDate(ctx context.Context, date string) (*models.Lesson, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) Recent(ctx context.Context, limit int) ([]models.Lesson, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) Upsert(ctx context.Context, lesson models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) TrimTo(ctx context.Context, keep int) error {
	args := m.Called(ctx, keep)
	return args.Error(0)
}

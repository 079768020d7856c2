package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mprates/dailylesson/internal/api"
	apperrors "github.com/mprates/dailylesson/internal/errors"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/scheduler"
	"github.com/mprates/dailylesson/internal/testutil/mocks"
)

type testDeps struct {
	lessons  *mocks.MockLessonRepository
	cards    *mocks.MockFlashcardRepository
	stats    *mocks.MockStatsRepository
	settings *mocks.MockSettingsRepository
	queue    *mocks.MockQueue
}

func newTestServer(t *testing.T) (*api.Server, *testDeps) {
	t.Helper()
	deps := &testDeps{
		lessons:  new(mocks.MockLessonRepository),
		cards:    new(mocks.MockFlashcardRepository),
		stats:    new(mocks.MockStatsRepository),
		settings: new(mocks.MockSettingsRepository),
		queue:    new(mocks.MockQueue),
	}
	sched := scheduler.New(scheduler.Deps{
		Lessons:  deps.lessons,
		Cards:    deps.cards,
		Stats:    deps.stats,
		Settings: deps.settings,
	})
	srv := api.NewServer(deps.lessons, deps.cards, deps.stats, deps.settings, sched, deps.queue)
	return srv, deps
}

func doRequest(srv *api.Server, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestState(t *testing.T) {
	srv, deps := newTestServer(t)

	deps.settings.On("Get", mock.Anything).Return(models.DefaultSettings(), nil)
	deps.lessons.On("Recent", mock.Anything, scheduler.MaxLessons).Return([]models.Lesson{
		{ID: "l1", Date: "2026-08-30", Title: "Tides and the moon"},
	}, nil)
	deps.cards.On("List", mock.Anything).Return([]models.Flashcard{
		{ID: "c1", Question: "What causes tides?"},
	}, nil)
	deps.stats.On("Get", mock.Anything).Return(models.Stats{Streak: 3, TotalLessons: 12}, nil)

	rec := doRequest(srv, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Settings   models.Settings    `json:"settings"`
		Lessons    []models.Lesson    `json:"lessons"`
		Flashcards []models.Flashcard `json:"flashcards"`
		Stats      models.Stats       `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "general knowledge", payload.Settings.Topic)
	assert.Len(t, payload.Lessons, 1)
	assert.Len(t, payload.Flashcards, 1)
	assert.Equal(t, 3, payload.Stats.Streak)
}

func TestState_RepositoryError(t *testing.T) {
	srv, deps := newTestServer(t)

	deps.settings.On("Get", mock.Anything).Return(models.Settings{}, assert.AnError)

	rec := doRequest(srv, http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestGradeFlashcard(t *testing.T) {
	srv, deps := newTestServer(t)

	card := &models.Flashcard{
		ID:           "c1",
		Question:     "What causes tides?",
		EaseFactor:   2.5,
		IntervalDays: 1,
	}
	deps.cards.On("Get", mock.Anything, "c1").Return(card, nil)
	deps.cards.On("Update", mock.Anything, mock.AnythingOfType("models.Flashcard")).Return(nil)
	deps.stats.On("IncrementReviewed", mock.Anything).Return(nil)

	rec := doRequest(srv, http.MethodPost, "/api/flashcards/c1/grade", map[string]int{"grade": 5})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Flashcard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "c1", updated.ID)
	deps.cards.AssertCalled(t, "Update", mock.Anything, mock.AnythingOfType("models.Flashcard"))
	deps.stats.AssertCalled(t, "IncrementReviewed", mock.Anything)
}

func TestGradeFlashcard_UnknownIDIsIgnored(t *testing.T) {
	srv, deps := newTestServer(t)

	deps.cards.On("Get", mock.Anything, "missing").Return(nil, nil)

	rec := doRequest(srv, http.MethodPost, "/api/flashcards/missing/grade", map[string]int{"grade": 4})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	deps.cards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	deps.stats.AssertNotCalled(t, "IncrementReviewed", mock.Anything)
}

func TestGradeFlashcard_MissingGrade(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/flashcards/c1/grade", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestGradeFlashcard_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/c1/grade", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestGenerate(t *testing.T) {
	srv, deps := newTestServer(t)

	deps.queue.On("EnqueueGeneration").Return(nil)

	rec := doRequest(srv, http.MethodPost, "/api/generate", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "queued")
	deps.queue.AssertExpectations(t)
}

func TestGenerate_QueueFull(t *testing.T) {
	srv, deps := newTestServer(t)

	deps.queue.On("EnqueueGeneration").Return(apperrors.NewUnavailableError("generation queue is full"))

	rec := doRequest(srv, http.MethodPost, "/api/generate", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAVAILABLE")
}

func TestUpdateSettings(t *testing.T) {
	srv, deps := newTestServer(t)

	deps.settings.On("Save", mock.Anything, mock.AnythingOfType("models.Settings")).Return(nil)

	body := map[string]any{
		"mode":             "curated",
		"topic":            "marine biology",
		"lesson_length":    "short",
		"cards_per_lesson": 3,
		"backend_order":    []string{"local", "cloud"},
		"generation_hour":  6,
		"sources": []map[string]any{
			{"kind": "text", "title": "Field notes", "text": "Kelp forests shelter otters."},
		},
	}

	rec := doRequest(srv, http.MethodPut, "/api/settings", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var saved models.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, models.ModeCurated, saved.Mode)
	assert.Equal(t, "marine biology", saved.Topic)
	require.Len(t, saved.Sources, 1)
	assert.NotEmpty(t, saved.Sources[0].ID, "sources without an id get one assigned")

	deps.settings.AssertExpectations(t)
}

func TestUpdateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "unknown mode",
			body: map[string]any{
				"mode": "psychic", "topic": "x", "lesson_length": "short",
				"cards_per_lesson": 3, "generation_hour": 6,
			},
		},
		{
			name: "hour out of range",
			body: map[string]any{
				"mode": "autonomous", "topic": "x", "lesson_length": "short",
				"cards_per_lesson": 3, "generation_hour": 25,
			},
		},
		{
			name: "unknown backend in order",
			body: map[string]any{
				"mode": "autonomous", "topic": "x", "lesson_length": "short",
				"cards_per_lesson": 3, "generation_hour": 6,
				"backend_order": []string{"mainframe"},
			},
		},
		{
			name: "source with invalid kind",
			body: map[string]any{
				"mode": "curated", "topic": "x", "lesson_length": "short",
				"cards_per_lesson": 3, "generation_hour": 6,
				"sources": []map[string]any{{"kind": "carrier-pigeon", "title": "t"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, deps := newTestServer(t)

			rec := doRequest(srv, http.MethodPut, "/api/settings", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
			deps.settings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGradeFlashcard_AppliesReview(t *testing.T) {
	srv, deps := newTestServer(t)

	now := time.Now()
	card := &models.Flashcard{
		ID:           "c9",
		Question:     "Define photosynthesis",
		EaseFactor:   2.5,
		IntervalDays: 1,
		Repetitions:  1,
		DueAt:        now,
	}
	deps.cards.On("Get", mock.Anything, "c9").Return(card, nil)
	deps.stats.On("IncrementReviewed", mock.Anything).Return(nil)

	var stored models.Flashcard
	deps.cards.On("Update", mock.Anything, mock.AnythingOfType("models.Flashcard")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(models.Flashcard)
		}).Return(nil)

	rec := doRequest(srv, http.MethodPost, "/api/flashcards/c9/grade", map[string]int{"grade": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, stored.Repetitions)
	assert.Equal(t, 6, stored.IntervalDays)
	assert.Equal(t, 4, stored.LastGrade)
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mprates/dailylesson/internal/errors"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/notify"
	"github.com/mprates/dailylesson/internal/orchestrator"
	"github.com/mprates/dailylesson/internal/repository"
	"github.com/mprates/dailylesson/internal/srs"
)

// Trigger identifies what started a generation run.
type Trigger string

const (
	// TriggerScheduled fires from the daily alarm. Suppressed when a
	// lesson already exists for the current day.
	TriggerScheduled Trigger = "scheduled"
	// TriggerManual is explicit user intent and always runs.
	TriggerManual Trigger = "manual"
	// TriggerCatchup is a single makeup run after a missed day.
	TriggerCatchup Trigger = "catchup"
)

const (
	// MaxLessons caps the retained lesson list; oldest evicted first.
	MaxLessons = 60
	// RecentLessonCount is how much history goes into the prompt.
	RecentLessonCount = 5

	notifySuccessID = "lesson-ready"
	notifyFailureID = "lesson-failed"
)

// Generator produces a canonical lesson result for a context. It never
// returns nil; exhausted backends yield the offline fallback.
type Generator interface {
	Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, []orchestrator.Attempt)
}

// SourceChunker turns curated source descriptors into prompt chunks.
type SourceChunker interface {
	Chunk(ctx context.Context, sources []models.SourceDescriptor) []models.SourceChunk
}

// Scheduler owns the generation pipeline: it decides when to run, builds
// the generation context, invokes the orchestrator and merges the result
// into persistent state. It also hosts the grading entry point.
type Scheduler struct {
	lessons  repository.LessonRepository
	cards    repository.FlashcardRepository
	stats    repository.StatsRepository
	settings repository.SettingsRepository
	gen      Generator
	chunker  SourceChunker
	notifier notify.Notifier

	now func() time.Time

	// Serializes pipeline runs so overlapping triggers cannot race on
	// persistence.
	mu sync.Mutex
}

type Deps struct {
	Lessons  repository.LessonRepository
	Cards    repository.FlashcardRepository
	Stats    repository.StatsRepository
	Settings repository.SettingsRepository
	Gen      Generator
	Chunker  SourceChunker
	Notifier notify.Notifier
	Now      func() time.Time
}

func New(deps Deps) *Scheduler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	return &Scheduler{
		lessons:  deps.Lessons,
		cards:    deps.Cards,
		stats:    deps.Stats,
		settings: deps.Settings,
		gen:      deps.Gen,
		chunker:  deps.Chunker,
		notifier: deps.Notifier,
		now:      deps.Now,
	}
}

// Run executes one generation pipeline pass for the given trigger.
// Scheduled triggers are suppressed when a lesson already exists for the
// current day; manual and catchup triggers always attempt generation.
func (s *Scheduler) Run(ctx context.Context, trigger Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("scheduler").WithField("trigger", string(trigger))
	ctx = logger.NewContext(ctx, log)

	now := s.now()
	today := models.DayKey(now)

	if trigger == TriggerScheduled {
		existing, err := s.lessons.GetByDate(ctx, today)
		if err != nil {
			return s.fail(ctx, err)
		}
		if existing != nil {
			log.Info("lesson already generated for %s, suppressing scheduled run", today)
			return nil
		}
	}

	gc, err := s.buildContext(ctx, now)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, attempts := s.gen.Generate(ctx, *gc)
	if len(attempts) > 0 {
		log.Warn("%d backend attempts failed before a result was produced", len(attempts))
	}

	lesson, newCards, err := s.persist(ctx, gc.Settings, result, now)
	if err != nil {
		return s.fail(ctx, err)
	}

	log.Info("lesson persisted: date=%s, title=%q, new_cards=%d", lesson.Date, lesson.Title, newCards)
	s.notifier.Notify(ctx, notifySuccessID, "Today's lesson is ready: "+lesson.Title)
	return nil
}

// CheckMissed performs at most one catch-up run when a full day or more
// has elapsed since the last generated lesson. It never replays every
// missed day.
func (s *Scheduler) CheckMissed(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	st, err := s.stats.Get(ctx)
	if err != nil {
		return err
	}
	if st.LastLessonDate == "" {
		return nil
	}

	last, err := time.ParseInLocation("2006-01-02", st.LastLessonDate, s.now().Location())
	if err != nil {
		log.Warn("unparseable last lesson date %q, skipping catch-up check", st.LastLessonDate)
		return nil
	}

	today := models.DayKey(s.now())
	if st.LastLessonDate == today || s.now().Sub(last) < 24*time.Hour {
		return nil
	}

	log.Info("last lesson was %s, running catch-up generation", st.LastLessonDate)
	return s.Run(ctx, TriggerCatchup)
}

// Grade applies an SM-2 review to a flashcard and persists the result.
// An unknown card id is a no-op, not an error.
func (s *Scheduler) Grade(ctx context.Context, cardID string, grade int) error {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if card == nil {
		log.Warn("grade for unknown flashcard %s ignored", cardID)
		return nil
	}

	updated := srs.Apply(*card, grade, s.now())
	log.Debug("graded card %s: grade=%d, interval=%d, ease=%.2f", cardID, grade, updated.IntervalDays, updated.EaseFactor)

	if err := s.cards.Update(ctx, updated); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.stats.IncrementReviewed(ctx); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// buildContext assembles the ephemeral per-run generation context.
func (s *Scheduler) buildContext(ctx context.Context, now time.Time) (*models.GenerationContext, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.lessons.Recent(ctx, RecentLessonCount)
	if err != nil {
		return nil, err
	}

	due, err := s.cards.Due(ctx, now)
	if err != nil {
		return nil, err
	}

	gc := &models.GenerationContext{
		Settings:      settings,
		RecentLessons: recent,
		DueFlashcards: due,
	}

	if settings.Mode == models.ModeCurated {
		gc.CuratedChunks = s.chunker.Chunk(ctx, settings.Sources)
		if len(gc.CuratedChunks) == 0 {
			return nil, apperrors.NewValidationError("sources", "curated mode produced no usable text")
		}
	}
	return gc, nil
}

// persist upserts the day's lesson, merges generated cards into the card
// list and updates the aggregate stats. Returns the stored lesson and the
// number of newly created cards.
func (s *Scheduler) persist(ctx context.Context, settings models.Settings, result *models.LessonResult, now time.Time) (*models.Lesson, int, error) {
	lesson := models.Lesson{
		ID:          uuid.NewString(),
		Date:        models.DayKey(now),
		Title:       result.Title,
		Summary:     result.Summary,
		Body:        result.Lesson,
		Sources:     result.Sources,
		Exercise:    result.Exercise,
		Mode:        settings.Mode,
		GeneratedAt: now,
	}

	if err := s.lessons.Upsert(ctx, lesson); err != nil {
		return nil, 0, err
	}
	if err := s.lessons.TrimTo(ctx, MaxLessons); err != nil {
		return nil, 0, err
	}

	newCards, err := s.mergeCards(ctx, lesson, result.Flashcards, now)
	if err != nil {
		return nil, 0, err
	}

	if err := s.updateStats(ctx, lesson.Date, now); err != nil {
		return nil, 0, err
	}
	return &lesson, newCards, nil
}

// mergeCards merges generated card drafts into the persistent list. The
// merge key is exact question text: an existing card keeps its accumulated
// ease and repetitions but adopts the new due date, interval and source
// lesson link; unseen questions become fresh cards.
func (s *Scheduler) mergeCards(ctx context.Context, lesson models.Lesson, drafts []models.CardDraft, now time.Time) (int, error) {
	log := logger.FromContext(ctx)

	created := 0
	for _, draft := range drafts {
		existing, err := s.cards.GetByQuestion(ctx, draft.Question)
		if err != nil {
			return created, err
		}
		if existing != nil {
			existing.Answer = draft.Answer
			existing.DueAt = now
			existing.IntervalDays = 1
			existing.SourceLessonID = lesson.ID
			if err := s.cards.Update(ctx, *existing); err != nil {
				return created, err
			}
			log.Debug("refreshed existing card %s", existing.ID)
			continue
		}

		card := models.Flashcard{
			ID:             uuid.NewString(),
			Question:       draft.Question,
			Answer:         draft.Answer,
			IntervalDays:   1,
			EaseFactor:     srs.DefaultEase,
			Repetitions:    0,
			DueAt:          now,
			LastGrade:      -1,
			SourceLessonID: lesson.ID,
			CreatedAt:      now,
		}
		if err := s.cards.Insert(ctx, card); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// updateStats advances the streak and lesson counters for a freshly
// persisted lesson. The reviewed-cards counter is deliberately untouched
// here; it only moves on grading.
func (s *Scheduler) updateStats(ctx context.Context, lessonDate string, now time.Time) error {
	st, err := s.stats.Get(ctx)
	if err != nil {
		return err
	}

	yesterday := models.DayKey(now.AddDate(0, 0, -1))
	switch st.LastLessonDate {
	case lessonDate:
		// Already counted today; a regenerated lesson replaces the stored
		// one, so both streak and lesson count stay put.
	case yesterday:
		st.Streak++
		st.TotalLessons++
	default:
		st.Streak = 1
		st.TotalLessons++
	}
	st.LastLessonDate = lessonDate

	return s.stats.Save(ctx, st)
}

func (s *Scheduler) fail(ctx context.Context, err error) error {
	logger.FromContext(ctx).Error("generation run failed: %v", err)
	s.notifier.Notify(ctx, notifyFailureID, "Lesson generation failed: "+err.Error())
	return err
}

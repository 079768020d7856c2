package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/repository"
	"github.com/mprates/dailylesson/internal/repository/sqlite"
	"github.com/mprates/dailylesson/internal/testutil"
)

type StatsRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	stats repository.StatsRepository
	set   repository.SettingsRepository
}

func (s *StatsRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.stats = sqlite.NewStatsRepository(s.db)
	s.set = sqlite.NewSettingsRepository(s.db)
}

func (s *StatsRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StatsRepositorySuite) TestStatsRoundTrip() {
	ctx := context.Background()

	initial, err := s.stats.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(models.Stats{}, initial, "fresh database starts at zero")

	saved := models.Stats{Streak: 4, LastLessonDate: "2025-03-10", TotalLessons: 12, TotalFlashcardsReviewed: 80}
	s.Require().NoError(s.stats.Save(ctx, saved))

	got, err := s.stats.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(saved, got)
}

func (s *StatsRepositorySuite) TestIncrementReviewed() {
	ctx := context.Background()

	s.Require().NoError(s.stats.IncrementReviewed(ctx))
	s.Require().NoError(s.stats.IncrementReviewed(ctx))

	got, err := s.stats.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(2, got.TotalFlashcardsReviewed)
}

func (s *StatsRepositorySuite) TestSettingsDefaultAndRoundTrip() {
	ctx := context.Background()

	got, err := s.set.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(models.DefaultSettings(), got, "missing row yields defaults")

	custom := models.DefaultSettings()
	custom.Mode = models.ModeCurated
	custom.Topic = "naval history"
	custom.Sources = []models.SourceDescriptor{{ID: "s1", Kind: models.SourceText, Title: "Notes", Text: "body"}}
	s.Require().NoError(s.set.Save(ctx, custom))

	got, err = s.set.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(models.ModeCurated, got.Mode)
	s.Assert().Equal("naval history", got.Topic)
	s.Require().Len(got.Sources, 1)
	s.Assert().Equal("Notes", got.Sources[0].Title)
}

func (s *StatsRepositorySuite) TestSettingsSeedOnlyOnFirstRun() {
	ctx := context.Background()

	seeded := models.DefaultSettings()
	seeded.GenerationHour = 21
	s.Require().NoError(s.set.Seed(ctx, seeded))

	got, err := s.set.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(21, got.GenerationHour, "seed populates an empty store")

	saved := models.DefaultSettings()
	saved.Topic = "naval history"
	s.Require().NoError(s.set.Save(ctx, saved))

	s.Require().NoError(s.set.Seed(ctx, seeded))

	got, err = s.set.Get(ctx)
	s.Require().NoError(err)
	s.Assert().Equal("naval history", got.Topic, "seeding never overwrites saved settings")
	s.Assert().Equal(saved.GenerationHour, got.GenerationHour)
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}

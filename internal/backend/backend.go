package backend

import (
	"context"

	"github.com/mprates/dailylesson/internal/models"
)

// Backend identifiers as they appear in the user-configured priority order.
const (
	NameCloud    = "cloud"
	NameLocal    = "local"
	NameOnDevice = "ondevice"
)

// Generator is the uniform contract every connector implements. Generate
// either returns a canonical lesson result or a descriptive error; parse
// failures are recovered internally and never surface as errors.
type Generator interface {
	Name() string
	Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, error)
}

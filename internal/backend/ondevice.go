package backend

import (
	"context"
	"fmt"

	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
)

// DeviceModel is the in-process prompt contract of an on-device model
// runtime. The runtime itself is out of scope; only availability and the
// prompt/response contract matter here.
type DeviceModel interface {
	Available(ctx context.Context) (bool, error)
	Prompt(ctx context.Context, prompt string) (string, error)
}

// OnDevice generates through an injected on-device model. The capability
// query must pass before any generation is attempted; a failing query
// counts as unavailable, not as a distinct error.
type OnDevice struct {
	model DeviceModel
}

func NewOnDevice(model DeviceModel) *OnDevice {
	return &OnDevice{model: model}
}

func (o *OnDevice) Name() string { return NameOnDevice }

func (o *OnDevice) Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, error) {
	log := logger.FromContext(ctx).WithPrefix("ondevice")

	if o.model == nil {
		return nil, fmt.Errorf("ondevice backend: no model wired")
	}

	available, err := o.model.Available(ctx)
	if err != nil {
		log.Debug("capability query failed: %v", err)
		available = false
	}
	if !available {
		return nil, fmt.Errorf("ondevice backend: model unavailable")
	}

	raw, err := o.model.Prompt(ctx, BuildPrompt(gc))
	if err != nil {
		return nil, fmt.Errorf("ondevice backend: %w", err)
	}
	return ParseResponse(raw, gc), nil
}

package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// PollRequest is the operator's poll selection. It is built once and not modified afterwards.
type PollRequest struct {
	Target     string        `validate:"required"`
	Endpoint   string        `validate:"required"`
	Params     domain.Params `validate:"-"`
	Interval   time.Duration `validate:"gte=0"`
	OutputPath string        `validate:"required"`
	Format     string        `validate:"omitempty,oneof=line csv"`
}

// Mode reports whether the request polls once or on a timer.
func (r PollRequest) Mode() domain.PollMode {
	if r.Interval > 0 {
		return domain.PollModeInterval
	}
	return domain.PollModeSingleShot
}

// NewPollRequest merges overrides onto the target defaults and validates the result.
// A target that requires an interval refuses a zero interval.
func NewPollRequest(target RouteTarget, overrides domain.Params, interval time.Duration, outputPath, format string) (PollRequest, error) {
	if interval < 0 {
		return PollRequest{}, fmt.Errorf("%w: %s", port.ErrInvalidInterval, interval)
	}
	if target.RequiresInterval && interval == 0 {
		return PollRequest{}, fmt.Errorf("%w: %s", port.ErrIntervalRequired, target.Name)
	}

	req := PollRequest{
		Target:     target.Name,
		Endpoint:   target.Endpoint,
		Params:     target.Defaults.Merge(overrides),
		Interval:   interval,
		OutputPath: strings.TrimSpace(outputPath),
		Format:     strings.ToLower(strings.TrimSpace(format)),
	}
	if err := requestValidator.Struct(req); err != nil {
		return PollRequest{}, fmt.Errorf("%w: %w", port.ErrInvalidRequest, err)
	}
	return req, nil
}

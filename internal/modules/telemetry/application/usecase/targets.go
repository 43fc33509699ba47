package usecase

import (
	"fmt"
	"sort"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/shared/normalization"
)

// RouteTarget is a CLI-facing name selecting an endpoint, its default parameters and whether
// it only makes sense when polled on an interval.
type RouteTarget struct {
	Name             string
	Endpoint         string
	Defaults         domain.Params
	RequiresInterval bool
}

var routeTargets = map[string]RouteTarget{
	"drivers": {
		Name:     "drivers",
		Endpoint: "drivers",
		Defaults: domain.Params{"session_key": domain.LatestValue()},
	},
	"sessions": {
		Name:     "sessions",
		Endpoint: "sessions",
		Defaults: domain.Params{"session_key": domain.LatestValue()},
	},
	"interval": {
		Name:             "interval",
		Endpoint:         "intervals",
		Defaults:         liveIntervalDefaults(),
		RequiresInterval: true,
	},
	"intervals": {
		Name:             "intervals",
		Endpoint:         "intervals",
		Defaults:         liveIntervalDefaults(),
		RequiresInterval: true,
	},
	"weather": {
		Name:             "weather",
		Endpoint:         "weather",
		Defaults:         domain.Params{"meeting_key": domain.LatestValue()},
		RequiresInterval: true,
	},
	"stints": {
		Name:     "stints",
		Endpoint: "stints",
		Defaults: domain.Params{"session_key": domain.LatestValue()},
	},
	"pit": {
		Name:     "pit",
		Endpoint: "pit",
		Defaults: domain.Params{"session_key": domain.LatestValue()},
	},
}

func liveIntervalDefaults() domain.Params {
	return domain.Params{
		"session_key": domain.LatestValue(),
		"interval":    domain.NumberValue(0.005),
	}
}

// ResolveTarget looks up a route target by any accepted spelling.
func ResolveTarget(name string) (RouteTarget, error) {
	target, ok := routeTargets[normalization.NormalizeTarget(name)]
	if !ok {
		return RouteTarget{}, fmt.Errorf("%w: %q", port.ErrUnknownTarget, name)
	}
	target.Defaults = target.Defaults.Clone()
	return target, nil
}

// TargetNames lists the valid route targets in sorted order.
func TargetNames() []string {
	names := make([]string, 0, len(routeTargets))
	for name := range routeTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

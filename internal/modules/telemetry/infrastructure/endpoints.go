package infrastructure

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/shared/normalization"
)

// DefaultBaseURL is the public OpenF1 API root.
const DefaultBaseURL = "https://api.openf1.org/v1"

// UnknownParamPolicy decides what BuildURL does with parameters an endpoint does not recognize.
type UnknownParamPolicy uint8

const (
	// RejectUnknown fails the build with port.ErrUnknownParameter.
	RejectUnknown UnknownParamPolicy = iota
	// IgnoreUnknown drops the parameter and logs a warning.
	IgnoreUnknown
)

type queryBuilder func(baseURL string, params domain.Params, policy UnknownParamPolicy) (string, error)

type endpointEntry struct {
	descriptor domain.EndpointDescriptor
	build      queryBuilder
}

// openF1Endpoints is built once at init and only read afterwards.
var openF1Endpoints = map[string]endpointEntry{
	"car_data": orderedEndpoint("car_data",
		numberParam("driver_number").required(),
		sessionKeyParam().required(),
		numberParam("speed").withOperator(domain.OpGreaterEqual),
	),
	"drivers": orderedEndpoint("drivers",
		sessionKeyParam().required(),
		numberParam("driver_number"),
	),
	"intervals": orderedEndpoint("intervals",
		sessionKeyParam().required(),
		numberParam("interval").withOperator(domain.OpLess),
	),
	"laps": orderedEndpoint("laps",
		sessionKeyParam().required(),
		numberParam("driver_number").required(),
		numberParam("lap_number").required(),
	),
	"location": orderedEndpoint("location",
		sessionKeyParam().required(),
		numberParam("driver_number").required(),
		stringParam("date_start").emittedAs("date").withOperator(domain.OpGreater).required(),
		stringParam("date_end").emittedAs("date").withOperator(domain.OpLess).required(),
	),
	"meetings": orderedEndpoint("meetings",
		numberParam("year").required(),
		stringParam("country_name").required(),
		meetingKeyParam(),
	),
	"pit": orderedEndpoint("pit",
		sessionKeyParam().required(),
		numberParam("pit_duration").withOperator(domain.OpLess),
	),
	"position": orderedEndpoint("position",
		meetingKeyParam().required(),
		numberParam("driver_number").required(),
		numberParam("position").withOperator(domain.OpLessEqual),
	),
	"race_control": orderedEndpoint("race_control",
		stringParam("flag").required(),
		numberParam("driver_number").required(),
		stringParam("date_start").emittedAs("date").withOperator(domain.OpGreaterEqual).required(),
		stringParam("date_end").emittedAs("date").withOperator(domain.OpLess).required(),
	),
	"sessions": orderedEndpoint("sessions",
		stringParam("country_name"),
		stringParam("session_name"),
		numberParam("year"),
		sessionKeyParam(),
	),
	"stints": orderedEndpoint("stints",
		sessionKeyParam().required(),
		numberParam("tyre_age_at_start").withOperator(domain.OpGreaterEqual),
	),
	"team_radio": orderedEndpoint("team_radio",
		sessionKeyParam().required(),
		numberParam("driver_number").required(),
	),
	"weather": orderedEndpoint("weather",
		meetingKeyParam().required(),
		numberParam("wind_direction").withOperator(domain.OpGreaterEqual),
		numberParam("track_temperature").withOperator(domain.OpGreaterEqual),
	),
}

type paramSpecBuilder domain.ParamSpec

func numberParam(name string) paramSpecBuilder {
	return paramSpecBuilder{Name: name, Key: name, Kind: domain.ParamNumber, Operator: domain.OpEqual}
}

func stringParam(name string) paramSpecBuilder {
	return paramSpecBuilder{Name: name, Key: name, Kind: domain.ParamString, Operator: domain.OpEqual}
}

func sessionKeyParam() paramSpecBuilder {
	spec := numberParam("session_key")
	spec.AllowLatest = true
	return spec
}

func meetingKeyParam() paramSpecBuilder {
	spec := numberParam("meeting_key")
	spec.AllowLatest = true
	return spec
}

func (b paramSpecBuilder) required() paramSpecBuilder {
	b.Required = true
	return b
}

func (b paramSpecBuilder) withOperator(op domain.Operator) paramSpecBuilder {
	b.Operator = op
	return b
}

func (b paramSpecBuilder) emittedAs(key string) paramSpecBuilder {
	b.Key = key
	return b
}

func orderedEndpoint(resource string, params ...paramSpecBuilder) endpointEntry {
	specs := make([]domain.ParamSpec, 0, len(params))
	for _, p := range params {
		specs = append(specs, domain.ParamSpec(p))
	}
	descriptor := domain.EndpointDescriptor{Name: resource, Resource: resource, Params: specs}
	return endpointEntry{descriptor: descriptor, build: orderedQueryBuilder(descriptor)}
}

// orderedQueryBuilder emits present parameters in the descriptor's order. Range parameters keep
// their operator in the key (interval<0.005), which is why url.Values cannot be used here.
func orderedQueryBuilder(descriptor domain.EndpointDescriptor) queryBuilder {
	return func(baseURL string, params domain.Params, policy UnknownParamPolicy) (string, error) {
		if err := checkUnknownParams(descriptor, params, policy); err != nil {
			return "", err
		}

		parts := make([]string, 0, len(descriptor.Params))
		for _, spec := range descriptor.Params {
			value, ok := params[spec.Name]
			if !ok || value.IsZero() {
				if spec.Required {
					return "", fmt.Errorf("%w: %s requires %s", port.ErrMissingParameter, descriptor.Name, spec.Name)
				}
				continue
			}
			if err := checkValueKind(descriptor.Name, spec, value); err != nil {
				return "", err
			}
			parts = append(parts, spec.Key+string(spec.Operator)+url.QueryEscape(value.String()))
		}

		endpointURL := strings.TrimRight(baseURL, "/") + "/" + descriptor.Resource
		if len(parts) == 0 {
			return endpointURL, nil
		}
		return endpointURL + "?" + strings.Join(parts, "&"), nil
	}
}

func checkUnknownParams(descriptor domain.EndpointDescriptor, params domain.Params, policy UnknownParamPolicy) error {
	unknown := make([]string, 0)
	for name := range params {
		if _, ok := descriptor.Param(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if policy == IgnoreUnknown {
		slog.Warn("openf1 parameters ignored", slog.String("endpoint", descriptor.Name), slog.Any("params", unknown))
		return nil
	}
	return fmt.Errorf("%w: %s does not accept %s", port.ErrUnknownParameter, descriptor.Name, strings.Join(unknown, ", "))
}

func checkValueKind(endpoint string, spec domain.ParamSpec, value domain.Value) error {
	switch value.Kind() {
	case domain.ValueLatest:
		if spec.AllowLatest {
			return nil
		}
	case domain.ValueNumber:
		if spec.Kind == domain.ParamNumber {
			return nil
		}
	case domain.ValueString:
		if spec.Kind == domain.ParamString {
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s expects %s, got %s", port.ErrInvalidParameter, endpoint, spec.Name, spec.Kind, value.Kind())
}

// EndpointRegistry builds OpenF1 request URLs from the closed endpoint table.
type EndpointRegistry struct {
	baseURL string
	policy  UnknownParamPolicy
}

// RegistryOption customizes an EndpointRegistry.
type RegistryOption func(*EndpointRegistry)

// WithUnknownParams sets how unrecognized parameters are handled.
func WithUnknownParams(policy UnknownParamPolicy) RegistryOption {
	return func(r *EndpointRegistry) {
		r.policy = policy
	}
}

// NewEndpointRegistry returns a registry rooted at baseURL, or the public API when empty.
func NewEndpointRegistry(baseURL string, opts ...RegistryOption) *EndpointRegistry {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	registry := &EndpointRegistry{baseURL: trimmed, policy: RejectUnknown}
	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

// BuildURL returns the fully qualified request URL for endpoint with params.
func (r *EndpointRegistry) BuildURL(endpoint string, params domain.Params) (string, error) {
	entry, ok := openF1Endpoints[normalization.NormalizeEndpoint(endpoint)]
	if !ok {
		return "", fmt.Errorf("%w: %q", port.ErrUnknownEndpoint, endpoint)
	}
	return entry.build(r.baseURL, params, r.policy)
}

// IsValidEndpoint reports whether name is one of the registered endpoints.
func (r *EndpointRegistry) IsValidEndpoint(name string) bool {
	return IsValidEndpoint(name)
}

// Descriptor exposes the parameter layout of an endpoint.
func (r *EndpointRegistry) Descriptor(name string) (domain.EndpointDescriptor, bool) {
	entry, ok := openF1Endpoints[normalization.NormalizeEndpoint(name)]
	if !ok {
		return domain.EndpointDescriptor{}, false
	}
	return entry.descriptor, true
}

// ParseParam converts operator-supplied text into a typed value for endpoint's key.
func (r *EndpointRegistry) ParseParam(endpoint, key, raw string) (domain.Value, error) {
	descriptor, ok := r.Descriptor(endpoint)
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: %q", port.ErrUnknownEndpoint, endpoint)
	}
	name := strings.TrimSpace(key)
	spec, ok := descriptor.Param(name)
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: %s does not accept %s", port.ErrUnknownParameter, descriptor.Name, name)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Value{}, fmt.Errorf("%w: %s.%s is empty", port.ErrInvalidParameter, descriptor.Name, name)
	}
	if spec.Kind == domain.ParamString {
		return domain.StringValue(trimmed), nil
	}
	value, ok := domain.ParseNumberValue(trimmed, spec.AllowLatest)
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: %s.%s expects a number, got %q", port.ErrInvalidParameter, descriptor.Name, name, trimmed)
	}
	return value, nil
}

// IsValidEndpoint reports whether name is one of the registered endpoints.
func IsValidEndpoint(name string) bool {
	_, ok := openF1Endpoints[normalization.NormalizeEndpoint(name)]
	return ok
}

// Endpoints lists the registered endpoint names in sorted order.
func Endpoints() []string {
	names := make([]string, 0, len(openF1Endpoints))
	for name := range openF1Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ port.URLBuilder = (*EndpointRegistry)(nil)

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"openF1Poll/internal/config"
	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/application/usecase"
	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/modules/telemetry/infrastructure"
	"openF1Poll/internal/platform/output"
)

var errUsage = errors.New("expected <filePath> <routeTarget> [interval]")

type options struct {
	format string
	params []string
}

// NewRootCommand builds the openf1poll command.
func NewRootCommand(cfg *config.Config, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "openf1poll <filePath> <routeTarget> [interval]",
		Short: "Poll the OpenF1 API and persist the records to a file",
		Long: "Poll the OpenF1 API and persist the records to a file.\n\n" +
			"Route targets: " + strings.Join(usecase.TargetNames(), ", ") + "\n" +
			"Endpoints: " + strings.Join(infrastructure.Endpoints(), ", ") + "\n" +
			"The interval is in milliseconds (2000) or a duration (2s). Without one the target is fetched once.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitWith(run(cmd, cfg, opts, args, stdout, stderr))
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", cfg.Output.Format, "output format: "+strings.Join(output.Formats(), " or "))
	flags.StringArrayVarP(&opts.params, "param", "p", nil, "extra query parameter as key=value, repeatable")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, opts *options, args []string, stdout, stderr io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(stderr, cmd.UsageString())
		return &ExitError{Code: 1, Err: errUsage}
	}

	target, err := usecase.ResolveTarget(args[1])
	if err != nil {
		fmt.Fprintf(stdout, "Unknown route target %q. Valid targets: %s\n", args[1], strings.Join(usecase.TargetNames(), ", "))
		return err
	}

	var interval time.Duration
	if len(args) == 3 {
		if interval, err = ParseInterval(args[2]); err != nil {
			return err
		}
	}

	registryOpts := make([]infrastructure.RegistryOption, 0, 1)
	if cfg.OpenF1.IgnoreUnknownParams {
		registryOpts = append(registryOpts, infrastructure.WithUnknownParams(infrastructure.IgnoreUnknown))
	}
	registry := infrastructure.NewEndpointRegistry(cfg.OpenF1.BaseURL, registryOpts...)

	overrides, err := parseParams(registry, target.Endpoint, opts.params, cfg.OpenF1.IgnoreUnknownParams)
	if err != nil {
		return err
	}

	req, err := usecase.NewPollRequest(target, overrides, interval, args[0], opts.format)
	if err != nil {
		if errors.Is(err, port.ErrIntervalRequired) {
			fmt.Fprintf(stderr, "Route target %q streams live data and needs an interval, e.g. openf1poll %s %s 2000\n", target.Name, args[0], target.Name)
		}
		return err
	}
	return runPoll(cmd.Context(), cfg, registry, req)
}

// maxIntervalMillis is the largest millisecond count a time.Duration can hold.
const maxIntervalMillis = math.MaxInt64 / int64(time.Millisecond)

// ParseInterval accepts a positive integer number of milliseconds or a duration string.
func ParseInterval(raw string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if ms <= 0 || ms > maxIntervalMillis {
			return 0, fmt.Errorf("%w: %q", port.ErrInvalidInterval, raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := str2duration.ParseDuration(trimmed)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", port.ErrInvalidInterval, raw)
	}
	return d, nil
}

func parseParams(registry *infrastructure.EndpointRegistry, endpoint string, raw []string, ignoreUnknown bool) (domain.Params, error) {
	params := make(domain.Params, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not key=value", port.ErrInvalidParameter, pair)
		}
		parsed, err := registry.ParseParam(endpoint, key, value)
		if err != nil {
			if ignoreUnknown && errors.Is(err, port.ErrUnknownParameter) {
				slog.Warn("parameter ignored", slog.String("endpoint", endpoint), slog.String("param", pair))
				continue
			}
			return nil, err
		}
		params[strings.TrimSpace(key)] = parsed
	}
	return params, nil
}

// Execute runs the command with args and returns the process exit code.
func Execute(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(cfg, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil && ExitCode(err) != 0 {
		fmt.Fprintf(stderr, "openf1poll: %v\n", err)
	}
	return ExitCode(err)
}

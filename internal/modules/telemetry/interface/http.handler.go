package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/modules/telemetry/infrastructure"
	"openF1Poll/internal/shared/auth"
	"openF1Poll/internal/shared/httputil"
	"openF1Poll/internal/shared/normalization"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusSource exposes the poller's current status.
type StatusSource interface {
	Status() domain.PollStatus
}

// ServerConfig wires the status server's collaborators. Validator may be nil, in which case
// the record stream is open to anyone who can reach the address.
type ServerConfig struct {
	Status    StatusSource
	Hub       *infrastructure.Hub
	Metrics   http.Handler
	Validator auth.TokenValidator
}

// NewServer builds the echo instance serving /healthz, /metrics and /ws/records.
func NewServer(cfg ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", NewStatusHandler(cfg.Status))
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}
	if cfg.Hub != nil {
		e.GET("/ws/records", NewRecordStreamHandler(cfg.Hub, cfg.Validator))
	}
	return e
}

// NewStatusHandler reports the poll status as JSON.
func NewStatusHandler(source StatusSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		if source == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		}
		return c.JSON(http.StatusOK, source.Status())
	}
}

var errEndpointForbidden = errors.New("endpoint not permitted")

var streamErrors = newStreamErrorMapper()

func newStreamErrorMapper() *httputil.ErrorMapper {
	mapper := httputil.NewErrorMapper()
	mapper.WithMapping(auth.ErrMissingToken, http.StatusUnauthorized, "missing token")
	mapper.WithMapping(auth.ErrInvalidToken, http.StatusUnauthorized, "invalid token")
	mapper.WithMapping(port.ErrUnknownEndpoint, http.StatusBadRequest, "unknown endpoint")
	mapper.WithMapping(errEndpointForbidden, http.StatusForbidden, "endpoint not permitted")
	mapper.WithMapping(port.ErrSinkClosed, http.StatusServiceUnavailable, "stream closed")
	return mapper
}

// NewRecordStreamHandler upgrades to a websocket that receives every persisted batch. Clients
// narrow the stream with repeated ?endpoint= query values or subscribe commands.
func NewRecordStreamHandler(hub *infrastructure.Hub, validator auth.TokenValidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, topics, err := authorizeStream(c, validator)
		if err != nil {
			info := streamErrors.Map(err)
			slog.Warn("ws stream rejected", slog.String("ip", c.RealIP()), slog.Int("status", info.Status), slog.Any("error", err))
			return echo.NewHTTPError(info.Status, info.Message)
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws stream upgrade failed", slog.Any("error", err))
			return err
		}

		client := infrastructure.NewClient(hub, conn, claims, 64)
		if err := hub.AttachClient(client, topics); err != nil {
			slog.Warn("ws stream attach failed", slog.Any("error", err))
			return nil
		}
		go client.WritePump()
		client.ReadPump()
		return nil
	}
}

func authorizeStream(c echo.Context, validator auth.TokenValidator) (*auth.StreamClaims, []string, error) {
	var claims *auth.StreamClaims
	if validator != nil {
		validated, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
		if err != nil {
			return nil, nil, err
		}
		claims = validated
	}

	topics := make([]string, 0)
	for _, raw := range c.QueryParams()["endpoint"] {
		for _, part := range strings.Split(raw, ",") {
			endpoint := normalization.NormalizeEndpoint(part)
			if endpoint == "" {
				continue
			}
			if !infrastructure.IsValidEndpoint(endpoint) {
				return nil, nil, fmt.Errorf("%w: %q", port.ErrUnknownEndpoint, endpoint)
			}
			if !claims.Allows(endpoint) {
				return nil, nil, fmt.Errorf("%w: %s", errEndpointForbidden, endpoint)
			}
			topics = append(topics, endpoint)
		}
	}
	return claims, topics, nil
}

// Serve runs e on addr until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("status server listening", slog.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("status server stopped")
	return nil
}

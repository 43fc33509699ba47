package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"openF1Poll/internal/modules/telemetry/domain"
	"openF1Poll/internal/modules/telemetry/infrastructure"
	"openF1Poll/internal/shared/auth"
)

type fixedStatus domain.PollStatus

func (s fixedStatus) Status() domain.PollStatus { return domain.PollStatus(s) }

func TestHealthzReportsStatus(t *testing.T) {
	e := NewServer(ServerConfig{Status: fixedStatus{RunID: "run-1", Endpoint: "drivers", Ticks: 4, Failures: 1}})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.PollStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Ticks != 4 || got.Failures != 1 {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestMetricsRouteIsOptional(t *testing.T) {
	e := NewServer(ServerConfig{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rec.Code)
	}

	e = NewServer(ServerConfig{Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("openf1_polls_total 1\n"))
	})})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "openf1_polls_total") {
		t.Fatalf("metrics route = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecordStreamRequiresToken(t *testing.T) {
	hub := infrastructure.NewHub()
	e := NewServer(ServerConfig{Hub: hub, Validator: auth.NewHMACValidator("s3cret")})

	cases := map[string]int{
		"/ws/records":               http.StatusUnauthorized,
		"/ws/records?token=garbage": http.StatusUnauthorized,
	}
	for target, want := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != want {
			t.Fatalf("%s: status = %d, want %d", target, rec.Code, want)
		}
	}
}

func TestRecordStreamRejectsUnknownEndpoint(t *testing.T) {
	e := NewServer(ServerConfig{Hub: infrastructure.NewHub()})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/records?endpoint=lap_times", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecordStreamDeliversBatches(t *testing.T) {
	hub := infrastructure.NewHub()
	server := httptest.NewServer(NewServer(ServerConfig{Hub: hub, Validator: auth.NewHMACValidator("s3cret")}))
	defer server.Close()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.StreamClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "pitwall", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/records?endpoint=intervals"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(&domain.StreamMessage{Endpoint: "weather", Tick: 1})
	hub.Broadcast(&domain.StreamMessage{
		RunID:    "run-9",
		Endpoint: "intervals",
		Tick:     2,
		Records:  []domain.Record{{"driver_number": json.Number("1")}},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg domain.StreamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Endpoint != "intervals" || msg.Tick != 2 || msg.RunID != "run-9" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentCLI, Writer: &buf})

	logger.Info("hello")
	logger.WithComponent(ComponentLedger).Debug("loaded")

	out := buf.String()
	if !strings.Contains(out, "component=cli") || !strings.Contains(out, "msg=hello") {
		t.Errorf("missing cli component in %q", out)
	}
	ledgerLine := strings.Split(strings.TrimSpace(out), "\n")[1]
	if strings.Count(ledgerLine, "component=") != 1 || !strings.Contains(ledgerLine, "component=ledger") {
		t.Errorf("component should be replaced, got %q", ledgerLine)
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Writer: &buf, JSON: true})
	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, `"msg":"loud"`) {
		t.Errorf("warn should be logged as JSON: %q", out)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Writer: &buf})

	var seenID string
	var seenLogger *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		seenLogger = FromContext(r.Context())
		http.Error(w, "nope", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/overview?year=2024", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seenID != "abc123" || rr.Header().Get(RequestIDHeader) != "abc123" {
		t.Errorf("request id not propagated: ctx=%q header=%q", seenID, rr.Header().Get(RequestIDHeader))
	}
	if seenLogger.Component() != ComponentHTTP {
		t.Errorf("context logger component = %q", seenLogger.Component())
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=404", "path=/api/overview", "request_id=abc123"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()).Logger == nil {
		t.Fatal("expected default logger")
	}
	if RequestID(context.Background()) != "" {
		t.Error("expected empty request id")
	}
	if id := NewRequestID(); !strings.HasPrefix(id, "req_") || len(id) != 20 {
		t.Errorf("NewRequestID() = %q", id)
	}
}

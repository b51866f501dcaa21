package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devmarvs/jokebox/store/memory"
)

func TestRegistryHandlerOK(t *testing.T) {
	reg := New()
	reg.Add("store", PingCheck(memory.New()))

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "ok" || len(report.Checks) != 1 || report.Checks[0].Name != "store" {
		t.Fatalf("unexpected report %+v", report)
	}
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("down") }

func TestRegistryReadyFail(t *testing.T) {
	reg := New(WithTimeout(10 * time.Millisecond))
	reg.AddReady("store", PingCheck(downStore{}))

	rec := httptest.NewRecorder()
	reg.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestPingCheckNil(t *testing.T) {
	if err := PingCheck(nil)(context.Background()); err == nil {
		t.Fatalf("expected error for missing pinger")
	}
}

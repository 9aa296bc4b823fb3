package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oceanvolt/voyage-optimizer/voyage"
)

type fakeScheduler struct {
	result *voyage.OptimizationResult
}

func (f *fakeScheduler) GetLatestResult() *voyage.OptimizationResult {
	return f.result
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLatestScheduleHandlerNoResultYet(t *testing.T) {
	s := NewServer(":0", []string{"*"}, &fakeScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with no solved result, got %d", rec.Code)
	}
}

func TestLatestScheduleHandlerReturnsResult(t *testing.T) {
	result := &voyage.OptimizationResult{
		TotalCostGBP: 3060,
		Steps: []voyage.Step{
			{PortName: "B", Operation: voyage.OpSwap, ContainersSwapped: 4},
		},
	}
	s := NewServer(":0", []string{"*"}, &fakeScheduler{result: result})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got voyage.OptimizationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.TotalCostGBP != 3060 {
		t.Errorf("expected total cost 3060, got %v", got.TotalCostGBP)
	}
}

func TestHealthHandler(t *testing.T) {
	s := NewServer(":0", []string{"*"}, &fakeScheduler{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

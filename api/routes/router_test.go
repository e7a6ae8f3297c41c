package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	disputesvc "github.com/giglane/giglane-backend/internal/disputes"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/logger"
)

type stubDisputesService struct {
	responds []disputesvc.RespondInput
}

func (s *stubDisputesService) Raise(ctx context.Context, input disputesvc.RaiseInput) (*models.ResolutionRequest, error) {
	return &models.ResolutionRequest{OrderID: input.OrderID}, nil
}

func (s *stubDisputesService) Respond(ctx context.Context, input disputesvc.RespondInput) error {
	s.responds = append(s.responds, input)
	return nil
}

func testRouter(disputes disputesvc.Service) http.Handler {
	return NewRouter(Deps{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Disputes: disputes,
	})
}

func TestPeerCanRespondToDispute(t *testing.T) {
	svc := &stubDisputesService{}
	router := testRouter(svc)
	buyerID := uuid.New()
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/dispute/respond", strings.NewReader(`{"accept":true}`))
	req.Header.Set("X-User-Id", buyerID.String())
	req.Header.Set("X-User-Role", "buyer")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.responds) != 1 {
		t.Fatalf("expected 1 respond call, got %d", len(svc.responds))
	}
	got := svc.responds[0]
	if got.OrderID != orderID || got.ActorID != buyerID {
		t.Fatalf("identifiers not threaded: %+v", got)
	}
	if got.IsAdmin {
		t.Fatal("peer response must not carry the admin flag")
	}
}

func TestAdminDisputeRespondRequiresAdminRole(t *testing.T) {
	svc := &stubDisputesService{}
	router := testRouter(svc)
	target := "/api/admin/v1/orders/" + uuid.NewString() + "/dispute/respond"

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"accept":true}`))
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "seller")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if len(svc.responds) != 0 {
		t.Fatal("handler must not run for a non-admin")
	}
}

func TestAdminDisputeRespondCarriesAdminFlag(t *testing.T) {
	svc := &stubDisputesService{}
	router := testRouter(svc)
	target := "/api/admin/v1/orders/" + uuid.NewString() + "/dispute/respond"

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"accept":false,"response":"reviewed"}`))
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "admin")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.responds) != 1 || !svc.responds[0].IsAdmin {
		t.Fatal("expected an admin-flagged respond call")
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkhalin/family-expenses/internal/service"
	"github.com/mkhalin/family-expenses/models"
)

func TestCreateFamily_Success(t *testing.T) {
	h := newTestHandler(&service.Services{
		FamilyService: &mockFamilyService{
			createFn: func(ctx context.Context, name string) (models.Family, error) {
				return models.Family{ID: "fam-1", Name: name, SyncID: "sync-1"}, nil
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/families", strings.NewReader(`{"name":"Khalins"}`)))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var family models.Family
	if err := json.NewDecoder(w.Body).Decode(&family); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if family.ID != "fam-1" || family.Name != "Khalins" {
		t.Errorf("unexpected family in response: %+v", family)
	}
}

func TestCreateFamily_EmptyName(t *testing.T) {
	h := newTestHandler(&service.Services{
		FamilyService: &mockFamilyService{
			createFn: func(ctx context.Context, name string) (models.Family, error) {
				return models.Family{}, service.ErrValidationNoFamilyName
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/families", strings.NewReader(`{"name":""}`)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestDeleteFamily_GuardAnswersConflict(t *testing.T) {
	h := newTestHandler(&service.Services{
		FamilyService: &mockFamilyService{
			deleteFn: func(ctx context.Context, id string) error {
				return service.ErrFamilyHasDependents
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/families/fam-1", nil))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}

	var body deleteFamilyConflict
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding conflict body: %v", err)
	}
	if body.Error == "" {
		t.Error("conflict body must carry the refusal reason")
	}
}

func TestDeleteFamily_Success(t *testing.T) {
	var deletedID string
	h := newTestHandler(&service.Services{
		FamilyService: &mockFamilyService{
			deleteFn: func(ctx context.Context, id string) error {
				deletedID = id
				return nil
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/families/fam-2", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if deletedID != "fam-2" {
		t.Errorf("expected delete of fam-2, got %q", deletedID)
	}
}

func TestAddFamilyMember_PathOverridesBody(t *testing.T) {
	h := newTestHandler(&service.Services{
		FamilyService: &mockFamilyService{
			addMemberFn: func(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error) {
				member.ID = "member-1"
				return member, nil
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/families/fam-1/members",
		strings.NewReader(`{"name":"Anna","familyId":"something-else"}`)))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var member models.FamilyMember
	if err := json.NewDecoder(w.Body).Decode(&member); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if member.FamilyID != "fam-1" {
		t.Errorf("family id must come from the path, got %q", member.FamilyID)
	}
}

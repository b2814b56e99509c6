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

func TestListCategories_RequiresFamilyID(t *testing.T) {
	h := newTestHandler(&service.Services{
		CategoryService: &mockCategoryService{
			listFn: func(ctx context.Context, familyID string) ([]models.Category, error) {
				t.Fatal("service must not be called without a family id")
				return nil, nil
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestListCategories_Success(t *testing.T) {
	h := newTestHandler(&service.Services{
		CategoryService: &mockCategoryService{
			listFn: func(ctx context.Context, familyID string) ([]models.Category, error) {
				return []models.Category{
					{ID: "cat-1", Name: "Groceries", FamilyID: familyID},
					{ID: "cat-2", Name: "Transport", FamilyID: familyID},
				}, nil
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories?familyId=fam-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var categories []models.Category
	if err := json.NewDecoder(w.Body).Decode(&categories); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
}

func TestUpdateCategory_PathOverridesBody(t *testing.T) {
	h := newTestHandler(&service.Services{
		CategoryService: &mockCategoryService{
			updateFn: func(ctx context.Context, category models.Category) (models.Category, error) {
				return category, nil
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/categories/cat-1",
		strings.NewReader(`{"id":"spoofed","name":"Groceries"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var category models.Category
	if err := json.NewDecoder(w.Body).Decode(&category); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if category.ID != "cat-1" {
		t.Errorf("id must come from the path, got %q", category.ID)
	}
}

func TestDeleteCategory_NotFound(t *testing.T) {
	h := newTestHandler(&service.Services{
		CategoryService: &mockCategoryService{
			deleteFn: func(ctx context.Context, id string) error {
				return service.ErrRecordNotFound
			},
		},
	})
	router := h.Init()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/categories/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

package rest

import (
	"net/http"
	"testing"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/server/models"
)

func seededResourceRouter(t *testing.T, ps ProjectService, ms ModelService) (http.Handler, string) {
	t.Helper()
	svc := newStubAuthService()
	_, token, err := svc.Register(t.Context(), "alice", nil, "s3cretpass")
	if err != nil {
		t.Fatalf("seed register error: %v", err)
	}
	router := newTestServer(t, svc, testServerOpts{projects: ps, models: ms}).Router()
	return router, token
}

func TestProjectHandlers(t *testing.T) {
	desc := "sandbox"
	ps := &stubProjectService{
		project: &models.Project{ID: 1, Name: "sandbox", Description: &desc, OwnerID: 1},
		items:   []*models.Project{{ID: 1, Name: "sandbox", OwnerID: 1}},
	}
	router, token := seededResourceRouter(t, ps, nil)

	w := doJSON(t, router, http.MethodPost, "/api/projects", token, `{"name":"sandbox"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/projects", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/projects/1", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["name"] != "sandbox" {
		t.Fatalf("unexpected project: %v", body)
	}

	w = doJSON(t, router, http.MethodPut, "/api/projects/1", token, `{"name":"renamed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/projects/1", token, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	// unauthenticated
	w = doJSON(t, router, http.MethodGet, "/api/projects", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status = %d", w.Code)
	}

	// bad id
	w = doJSON(t, router, http.MethodGet, "/api/projects/abc", token, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad id status = %d", w.Code)
	}
}

func TestProjectHandlers_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", common.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found", common.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"storage down", common.ErrStorageUnavailable, http.StatusInternalServerError, "STORAGE_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, token := seededResourceRouter(t, &stubProjectService{err: tt.err}, nil)

			w := doJSON(t, router, http.MethodGet, "/api/projects/1", token, "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if body := decodeBody(t, w); body["code"] != tt.code {
				t.Fatalf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}
}

func TestModelHandlers(t *testing.T) {
	key := "models/2026/1/2/abc"
	ms := &stubModelService{
		model: &models.Model{ID: 1, Name: "classifier", Type: "sklearn", Version: "1.0.0", Status: models.ModelStatusReady, ArtifactKey: &key, OwnerID: 1},
		items: []*models.Model{{ID: 1, Name: "classifier", OwnerID: 1}},
		url:   "https://s3.local/presigned",
	}
	router, token := seededResourceRouter(t, nil, ms)

	w := doJSON(t, router, http.MethodPost, "/api/models", token, `{"name":"classifier","type":"sklearn","version":"1.0.0"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/models", token, `{"name":"classifier"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing fields status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/models/1", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != models.ModelStatusReady {
		t.Fatalf("unexpected model: %v", body)
	}

	w = doJSON(t, router, http.MethodPost, "/api/models/1/artifact-upload-url", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("upload url status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["upload_url"] != "https://s3.local/presigned" {
		t.Fatalf("unexpected upload url: %v", body)
	}

	w = doJSON(t, router, http.MethodGet, "/api/models/1/artifact-download-url", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("download url status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["download_url"] != "https://s3.local/presigned" {
		t.Fatalf("unexpected download url: %v", body)
	}
}

func TestModelHandlers_ArtifactMissing(t *testing.T) {
	router, token := seededResourceRouter(t, nil, &stubModelService{err: common.ErrNotFound})

	w := doJSON(t, router, http.MethodGet, "/api/models/1/artifact-download-url", token, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CatalogRepository abstrai as consultas para facilitar testes com stubs.
type CatalogRepository interface {
	ListIslands(ctx context.Context) ([]Island, error)
	ListAreas(ctx context.Context, islandID uuid.UUID) ([]Area, error)
	ListMissions(ctx context.Context, islandID uuid.UUID, areaID *uuid.UUID) ([]Mission, error)
	ListTasks(ctx context.Context, missionID uuid.UUID) ([]Task, error)
}

// Handler orquestra as rotas de catálogo.
type Handler struct {
	repo CatalogRepository
}

func NewHandler(repo CatalogRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/islands", h.handleListIslands)
	r.Get("/islands/{id}/areas", h.handleListAreas)
	r.Get("/islands/{id}/missions", h.handleListMissions)
	r.Get("/missions/{id}/tasks", h.handleListTasks)
}

func (h *Handler) handleListIslands(w http.ResponseWriter, r *http.Request) {
	islands, err := h.repo.ListIslands(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyAsList(islands))
}

func (h *Handler) handleListAreas(w http.ResponseWriter, r *http.Request) {
	islandID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id de ilha inválido")
		return
	}

	areas, err := h.repo.ListAreas(r.Context(), islandID)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyAsList(areas))
}

func (h *Handler) handleListMissions(w http.ResponseWriter, r *http.Request) {
	islandID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id de ilha inválido")
		return
	}

	var areaID *uuid.UUID
	if raw := r.URL.Query().Get("area_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "area_id inválido")
			return
		}
		areaID = &parsed
	}

	missions, err := h.repo.ListMissions(r.Context(), islandID, areaID)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyAsList(missions))
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	missionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id de missão inválido")
		return
	}

	tasks, err := h.repo.ListTasks(r.Context(), missionID)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyAsList(tasks))
}

// emptyAsList garante [] no JSON quando a consulta não devolve linhas.
func emptyAsList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Helpers de resposta locais para não criar ciclo com internal/http.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("catalog handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}

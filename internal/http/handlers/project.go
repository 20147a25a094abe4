package handlers

import (
	"net/http"
	"strings"

	"devsync/internal/app"
	"devsync/internal/domain/project"
	"devsync/internal/http/middleware"
	"devsync/internal/http/response"
)

type ProjectHandler struct {
	projects *app.ProjectService
}

func NewProjectHandler(projects *app.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req app.ProjectInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.projects.Create(r.Context(), ownerID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	found, err := h.projects.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := project.ListFilter{
		Status:      project.Status(strings.TrimSpace(query.Get("status"))),
		Category:    strings.TrimSpace(query.Get("category")),
		ProjectType: project.Type(strings.TrimSpace(query.Get("type"))),
	}
	items, err := h.projects.List(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ProjectHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.projects.ListMine(r.Context(), ownerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.ProjectInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.projects.Update(r.Context(), id, actorID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.projects.Delete(r.Context(), id, actorID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProjectHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.SlotInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.projects.AddSlot(r.Context(), projectID, actorID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, updated)
}

func (h *ProjectHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	slotID, err := idFromPath(r, 3)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.SlotInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.projects.UpdateSlot(r.Context(), projectID, slotID, actorID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	slotID, err := idFromPath(r, 3)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.projects.RemoveSlot(r.Context(), projectID, slotID, actorID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

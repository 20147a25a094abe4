package handlers

import (
	"context"
	"net/http"
	"time"

	"devsync/internal/app"
	"devsync/internal/common"
	"devsync/internal/domain/application"
	"devsync/internal/http/middleware"
	"devsync/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter}
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req app.ApplyInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.ProjectID == "" || req.SlotID == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{
			"project_id": "project_id is required",
			"slot_id":    "slot_id is required",
		}))
		return
	}
	if h.limiter != nil && !h.limiter.Allow("apply:"+userID.String(), 10, time.Minute) {
		response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
		return
	}
	created, err := h.applications.Apply(r.Context(), userID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.applications.ListMine(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListByProject(r.Context(), projectID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.applications.Cancel)
}

func (h *ApplicationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.applications.Accept)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.applications.Reject)
}

// decide handles the shared shape of cancel/accept/reject: actor from the
// token, application id from the path, one service call.
func (h *ApplicationHandler) decide(w http.ResponseWriter, r *http.Request, operation func(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, error)) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := operation(r.Context(), applicationID, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

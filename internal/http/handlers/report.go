package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"devsync/internal/app"
	"devsync/internal/domain/report"
	"devsync/internal/http/middleware"
	"devsync/internal/http/response"
)

type ReportHandler struct {
	reports *app.ReportService
}

func NewReportHandler(reports *app.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	reporterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req app.ReportInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.reports.Create(r.Context(), reporterID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reporterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.reports.ListMine(r.Context(), reporterID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	actorRole, _ := middleware.RoleFromContext(r.Context())
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	found, err := h.reports.Get(r.Context(), id, actorID, actorRole)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

func (h *ReportHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.reports.Cancel(r.Context(), id, actorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ReportHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := report.ListFilter{
		ReportType: report.ContentType(strings.TrimSpace(query.Get("type"))),
		State:      report.State(strings.TrimSpace(query.Get("state"))),
		Action:     report.Action(strings.TrimSpace(query.Get("action"))),
		SortOldest: query.Get("sort") == "oldest",
	}
	if value := query.Get("from"); value != "" {
		from, err := time.Parse(time.RFC3339, value)
		if err == nil {
			filter.From = from
		}
	}
	if value := query.Get("to"); value != "" {
		to, err := time.Parse(time.RFC3339, value)
		if err == nil {
			filter.To = to
		}
	}
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))
	filter.Offset, _ = strconv.Atoi(query.Get("offset"))
	page, err := h.reports.AdminList(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.ResolveInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.reports.Resolve(r.Context(), id, adminID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

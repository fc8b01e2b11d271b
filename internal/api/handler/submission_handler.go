package handler

import (
	"encoding/json"
	"net/http"

	"github.com/devdesignersid/codetrack/internal/api/middleware"
	"github.com/devdesignersid/codetrack/internal/app/service"
	"github.com/devdesignersid/codetrack/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// RegisterProblemRoutes hangs the history listing off the problems subtree:
// GET /api/v1/problems/{problemSlug}/submissions
func (h *SubmissionHandler) RegisterProblemRoutes(r chi.Router) {
	r.Get("/{problemSlug}/submissions", h.listForProblem)
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{submissionID}", h.getSubmission)           // GET /api/v1/submissions/{id}
	r.Patch("/{submissionID}/solution", h.markSolution) // PATCH /api/v1/submissions/{id}/solution
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	submissionID := chi.URLParam(r, "submissionID")

	detail, err := h.submissionService.GetSubmission(r.Context(), userID, submissionID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *SubmissionHandler) listForProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	problemSlug := chi.URLParam(r, "problemSlug")

	submissions, err := h.submissionService.ListForProblem(r.Context(), userID, problemSlug)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

type markSolutionRequest struct {
	IsSolution   bool    `json:"is_solution"`
	SolutionName *string `json:"solution_name,omitempty"`
}

func (h *SubmissionHandler) markSolution(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	submissionID := chi.URLParam(r, "submissionID")

	var req markSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.submissionService.MarkSolution(r.Context(), userID, submissionID, req.IsSolution, req.SolutionName); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

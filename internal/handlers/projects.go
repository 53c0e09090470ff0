package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"article-reels/internal/models"
	"article-reels/internal/pipeline"
)

type createProjectRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostProject creates a project from an article URL, or from pasted text
// when content is given instead.
func (h *Handlers) PostProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		p   *models.Project
		err error
	)
	if req.URL == "" && req.Content != "" {
		p, err = h.pipeline.CreateProjectFromText(r.Context(), req.Title, req.Content)
	} else {
		p, err = h.pipeline.CreateProject(r.Context(), req.URL)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid limit"})
			return
		}
		limit = n
	}

	var status models.Status
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		status = st
	}

	projects, err := h.pipeline.ListProjects(r.Context(), limit, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	view, err := h.pipeline.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type patchProjectRequest struct {
	Title     *string `json:"title"`
	VoiceType *string `json:"voice_type"`
}

func (h *Handlers) PatchProject(w http.ResponseWriter, r *http.Request) {
	var req patchProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.pipeline.UpdateProject(r.Context(), mux.Vars(r)["id"], pipeline.ProjectChanges{
		Title:     req.Title,
		VoiceType: req.VoiceType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.DeleteProject(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renderReportRequest struct {
	VideoURL string `json:"video_url"`
	Error    string `json:"error"`
}

// PostRenderReport is called by the external renderer when a video is done
// or has failed.
func (h *Handlers) PostRenderReport(w http.ResponseWriter, r *http.Request) {
	var req renderReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.pipeline.ReportRender(r.Context(), mux.Vars(r)["id"], pipeline.RenderReport{
		VideoURL: req.VideoURL,
		Error:    req.Error,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) GetVoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Voices)
}

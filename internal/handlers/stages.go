package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"article-reels/internal/models"
	"article-reels/internal/pipeline"
)

func (h *Handlers) PostScript(w http.ResponseWriter, r *http.Request) {
	segments, err := h.pipeline.GenerateScript(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

func (h *Handlers) PostRegenerateScript(w http.ResponseWriter, r *http.Request) {
	segments, err := h.pipeline.RegenerateScript(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

type matchFailureResponse struct {
	Error          string               `json:"error"`
	Result         pipeline.MatchResult `json:"result"`
	FailedSegments []string             `json:"failed_segments"`
}

// PostMatchClips runs automatic clip matching. When some segments fail the
// response still carries the counts of what was matched.
func (h *Handlers) PostMatchClips(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.MatchClips(r.Context(), mux.Vars(r)["id"])
	var merr *pipeline.MatchError
	if errors.As(err, &merr) {
		writeJSON(w, http.StatusBadGateway, matchFailureResponse{
			Error:          merr.Error(),
			Result:         res,
			FailedSegments: merr.Failed,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type searchClipsRequest struct {
	Keywords string `json:"keywords"`
	Limit    int    `json:"limit"`
}

func (h *Handlers) PostSearchClips(w http.ResponseWriter, r *http.Request) {
	var req searchClipsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	clips, err := h.pipeline.SearchClips(r.Context(), req.Keywords, req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clips)
}

func (h *Handlers) PutSegmentClip(w http.ResponseWriter, r *http.Request) {
	var clip models.VideoClip
	if !decodeJSON(w, r, &clip) {
		return
	}
	seg, err := h.pipeline.SelectClip(r.Context(), mux.Vars(r)["id"], clip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

func (h *Handlers) PostVoice(w http.ResponseWriter, r *http.Request) {
	p, err := h.pipeline.GenerateVoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

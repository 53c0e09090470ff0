package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"article-reels/internal/models"
)

type segmentRequest struct {
	Text     *string `json:"text"`
	Keywords *string `json:"keywords"`
}

func (h *Handlers) PostSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var text, keywords string
	if req.Text != nil {
		text = *req.Text
	}
	if req.Keywords != nil {
		keywords = *req.Keywords
	}

	seg, err := h.pipeline.AddSegment(r.Context(), mux.Vars(r)["id"], text, keywords)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, seg)
}

func (h *Handlers) PatchSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	seg, err := h.pipeline.UpdateSegment(r.Context(), mux.Vars(r)["id"], models.SegmentUpdate{
		Text:     req.Text,
		Keywords: req.Keywords,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

func (h *Handlers) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.DeleteSegment(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// PostReorder moves one segment to a new position, as a drag in the editor
// does. Indices are 0-based positions in the current order.
func (h *Handlers) PostReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from and to are required"})
		return
	}

	segments, err := h.pipeline.ReorderSegments(r.Context(), mux.Vars(r)["id"], *req.From, *req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

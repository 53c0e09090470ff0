package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"article-reels/internal/pipeline"
)

type Handlers struct {
	pipeline  *pipeline.Controller
	publicURL string
}

// New creates the handlers. publicURL is the externally visible base URL
// used in feed links; empty means derive it from each request.
func New(p *pipeline.Controller, publicURL string) *Handlers {
	return &Handlers{pipeline: p, publicURL: publicURL}
}

// Router registers every endpoint. Middlewares wrap all routes in order.
func (h *Handlers) Router(mws ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(mws...)

	r.HandleFunc("/projects", h.ListProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.PostProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.GetProject).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}", h.PatchProject).Methods(http.MethodPatch)
	r.HandleFunc("/projects/{id}", h.DeleteProject).Methods(http.MethodDelete)

	r.HandleFunc("/projects/{id}/script", h.PostScript).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/script/regenerate", h.PostRegenerateScript).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/clips/match", h.PostMatchClips).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/voice", h.PostVoice).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/render", h.PostRenderReport).Methods(http.MethodPost)

	r.HandleFunc("/projects/{id}/segments", h.PostSegment).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/segments/reorder", h.PostReorder).Methods(http.MethodPost)
	r.HandleFunc("/segments/{id}", h.PatchSegment).Methods(http.MethodPatch)
	r.HandleFunc("/segments/{id}", h.DeleteSegment).Methods(http.MethodDelete)
	r.HandleFunc("/segments/{id}/clip", h.PutSegmentClip).Methods(http.MethodPut)

	r.HandleFunc("/clips/search", h.PostSearchClips).Methods(http.MethodPost)
	r.HandleFunc("/voices", h.GetVoices).Methods(http.MethodGet)
	r.HandleFunc("/feed.xml", h.GetNarrationFeed).Methods(http.MethodGet)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrAdapter), errors.Is(err, pipeline.ErrPartialMatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, errorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return false
	}
	return true
}

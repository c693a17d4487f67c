package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quizforge/internal/app"
	"quizforge/internal/domain"
	"quizforge/internal/extract"
	"quizforge/internal/logger"
)

// PastedStore persists pasted text so later runs can pick it up.
type PastedStore interface {
	SavePasted(text string) error
}

// Defaults fill in run parameters a request leaves out.
type Defaults struct {
	QuestionType string
	InputSource  string
	Seed         uint64
}

type Handler struct {
	runner   *app.Runner
	pasted   PastedStore
	defaults Defaults
	log      *logger.Logger
	ws       *WSHandler
}

func NewHandler(runner *app.Runner, pasted PastedStore, defaults Defaults, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{runner: runner, pasted: pasted, defaults: defaults, log: log}
	h.ws = NewWSHandler(h, log)
	return h
}

// Routes builds the chi router for the run trigger, status and download endpoints.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(api chi.Router) {
		api.Post("/runs", h.startRun)
		api.Get("/runs/{id}", h.runStatus)
		api.Get("/status", h.status)
		api.Get("/download", h.download)
	})
	r.Get("/ws", h.ws.ServeWS)
	return r
}

type runForm struct {
	QuestionType string `json:"question_type"`
	InputSource  string `json:"input_source"`
	Text         string `json:"text"`
}

type startResponse struct {
	RunID string `json:"runId"`
}

type statusResponse struct {
	Ready bool            `json:"ready"`
	State domain.RunState `json:"state"`
	RunID string          `json:"runId,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	var form runForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form body"})
			return
		}
		form = runForm{
			QuestionType: r.PostForm.Get("question_type"),
			InputSource:  r.PostForm.Get("input_source"),
			Text:         r.PostForm.Get("text"),
		}
	}

	id, err := h.start(r, form)
	switch {
	case errors.Is(err, errEmptyText):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrRunInProgress):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case err != nil:
		h.log.Error("could not start run", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusAccepted, startResponse{RunID: id})
	}
}

var errEmptyText = errors.New("input source is text but no text was supplied")

// start validates form and kicks off a background run.
func (h *Handler) start(r *http.Request, form runForm) (string, error) {
	req := app.RunRequest{
		Filter: firstNonEmpty(form.QuestionType, h.defaults.QuestionType),
		Input:  extract.Request{Mode: firstNonEmpty(form.InputSource, h.defaults.InputSource)},
		Seed:   h.defaults.Seed,
	}
	if strings.EqualFold(req.Input.Mode, extract.ModeText) {
		if strings.TrimSpace(form.Text) == "" {
			return "", errEmptyText
		}
		req.Input.Text = form.Text
		if h.pasted != nil {
			if err := h.pasted.SavePasted(form.Text); err != nil {
				h.log.Warn("could not persist pasted text", "error", err)
			}
		}
	}
	return h.runner.Start(r.Context(), req)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.runner.LastStatus(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Ready: h.runner.Ready(), State: st.State, RunID: st.RunID})
}

func (h *Handler) runStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.runner.Status(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrRunNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	if !h.runner.Ready() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no quiz has been generated yet"})
		return
	}
	http.ServeFile(w, r, h.runner.FinalPath())
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

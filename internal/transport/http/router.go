package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter mounts the REST API, the websocket endpoint and health checks.
func NewRouter(service *app.QuizService, logger *slog.Logger, allowedOrigins []string) http.Handler {
	api := NewAPIHandler(service)
	ws := NewWSHandler(service, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", api.ListUsers)
		r.Post("/sessions", api.CreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", api.GetSession)
			r.Delete("/", api.DeleteSession)
			r.Post("/user", api.SelectUser)
			r.Post("/answers", api.SubmitAnswer)
			r.Post("/continue", api.Continue)
		})
	})

	if len(allowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

type sessionResponse struct {
	SessionID string      `json:"sessionId"`
	View      domain.View `json:"view"`
}

type selectUserRequest struct {
	User string `json:"user"`
}

type answerRequest struct {
	Option string `json:"option"`
}

type answerResponse struct {
	Outcome domain.AnswerOutcome `json:"outcome"`
	View    domain.View          `json:"view"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"users": h.service.Users()})
}

func (h *APIHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	view := h.service.Open(r.Context(), "")
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: view.SessionID, View: view})
}

func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.service.Close(r.Context(), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SelectUser(w http.ResponseWriter, r *http.Request) {
	var req selectUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	view, err := h.service.SelectUser(r.Context(), chi.URLParam(r, "sessionID"), req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	outcome, view, err := h.service.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), req.Option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Outcome: outcome, View: view})
}

func (h *APIHandler) Continue(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ContinueAfterReview(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUnknownUser):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPreconditionViolated):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDataSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

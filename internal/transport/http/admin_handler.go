package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"ark-trip-service/internal/app"
	"ark-trip-service/internal/domain"
)

// AdminHandler is the host console's REST surface: question CRUD, the message
// log, trip-code rotation, and the event reset. Auth is the shared admin code
// in a header, same secret the websocket join uses.
type AdminHandler struct {
	svc       *app.TripService
	adminCode string
	log       zerolog.Logger
}

func NewAdminHandler(svc *app.TripService, adminCode string, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, adminCode: adminCode, log: log}
}

func (h *AdminHandler) Routes(r chi.Router) {
	r.Use(h.requireCode)

	r.Get("/questions", h.listQuestions)
	r.Post("/questions", h.createQuestion)
	r.Put("/questions/{id}", h.updateQuestion)
	r.Delete("/questions/{id}", h.deleteQuestion)

	r.Get("/messages", h.listMessages)
	r.Delete("/messages", h.clearMessages)

	r.Get("/users", h.listUsers)
	r.Post("/reset", h.reset)
	r.Put("/trip-code", h.setTripCode)
}

func (h *AdminHandler) requireCode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.Header.Get("X-Admin-Code")
		if !strings.EqualFold(strings.TrimSpace(code), h.adminCode) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "invalid admin code"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.svc.Bank().List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	render.JSON(w, r, questions)
}

func (h *AdminHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := render.DecodeJSON(r.Body, &q); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid question body"})
		return
	}
	saved, err := h.svc.Bank().Save(r.Context(), q)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, saved)
}

func (h *AdminHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := render.DecodeJSON(r.Body, &q); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid question body"})
		return
	}
	q.ID = chi.URLParam(r, "id")
	saved, err := h.svc.Bank().Save(r.Context(), q)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, saved)
}

func (h *AdminHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Bank().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *AdminHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs := h.svc.Messages()
	if msgs == nil {
		msgs = []domain.AdminMessage{}
	}
	render.JSON(w, r, msgs)
}

func (h *AdminHandler) clearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearMessages(r.Context()); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users := h.svc.Users()
	if users == nil {
		users = []domain.User{}
	}
	render.JSON(w, r, users)
}

func (h *AdminHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetLeaderboard(r.Context()); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *AdminHandler) setTripCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.svc.SetTripCode(r.Context(), body.Code); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"code": h.svc.TripCode()})
}

func (h *AdminHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTripCodeTooShort), errors.Is(err, domain.ErrEmptyMessage):
		status = http.StatusBadRequest
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("admin request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

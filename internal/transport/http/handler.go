package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"trainvoc-room-service/internal/app"
	"trainvoc-room-service/internal/domain"
)

// Options tune the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// AnswerRate and AnswerBurst bound answer submissions per player.
	AnswerRate  float64
	AnswerBurst int
	Now         func() time.Time
}

// Handler exposes the room service as a JSON API.
type Handler struct {
	service *app.RoomService
	limiter *answerLimiter
	origins []string
}

func NewHandler(service *app.RoomService, opts Options) *Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		service: service,
		limiter: newAnswerLimiter(opts.AnswerRate, opts.AnswerBurst, now),
		origins: origins,
	}
}

// Routes returns the router wrapped in CORS.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.listRooms)
		r.Post("/", h.createRoom)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", h.lobby)
			r.Put("/config", h.updateConfig)
			r.Post("/join", h.join)
			r.Post("/leave", h.leave)
			r.Post("/start", h.start)
			r.Get("/game", h.game)
		})
	})
	r.Post("/answers", h.submitAnswer)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
		},
		AllowedOrigins: h.origins,
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

type createRoomRequest struct {
	Host   domain.PlayerInput `json:"host"`
	Config domain.QuizConfig  `json:"config"`
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

type configRequest struct {
	PlayerID string            `json:"playerId"`
	Config   domain.QuizConfig `json:"config"`
}

type answerRequest struct {
	PlayerID            string `json:"playerId"`
	RoomCode            string `json:"roomCode"`
	QuestionID          string `json:"questionId"`
	SelectedOptionIndex *int   `json:"selectedOptionIndex"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errBadRequest = errors.New("malformed request")

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.service.ListRooms(r.Context())
	switch strings.ToLower(r.URL.Query().Get("status")) {
	case "":
	case "available":
		rooms = domain.FilterAvailable(rooms)
	case string(domain.StatusWaiting):
		rooms = domain.FilterByStatus(rooms, false)
	case string(domain.StatusStarted):
		rooms = domain.FilterByStatus(rooms, true)
	case string(domain.StatusFinished):
		rooms = filterFinished(rooms)
	default:
		writeError(w, errBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !decode(w, r, &req) {
		return
	}
	lobby, err := h.service.CreateRoom(r.Context(), req.Host, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lobby)
}

func (h *Handler) lobby(w http.ResponseWriter, r *http.Request) {
	lobby, err := h.service.Lobby(r.Context(), chi.URLParam(r, "code"), r.URL.Query().Get("playerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lobby)
}

func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if !decode(w, r, &req) {
		return
	}
	lobby, err := h.service.UpdateConfig(r.Context(), chi.URLParam(r, "code"), req.PlayerID, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lobby)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var req domain.PlayerInput
	if !decode(w, r, &req) {
		return
	}
	lobby, err := h.service.JoinRoom(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lobby)
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.LeaveRoom(r.Context(), chi.URLParam(r, "code"), req.PlayerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decode(w, r, &req) {
		return
	}
	gs, err := h.service.StartGame(r.Context(), chi.URLParam(r, "code"), req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (h *Handler) game(w http.ResponseWriter, r *http.Request) {
	gs, err := h.service.GameState(r.Context(), chi.URLParam(r, "code"), r.URL.Query().Get("playerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" || req.RoomCode == "" || req.QuestionID == "" || req.SelectedOptionIndex == nil {
		writeError(w, errBadRequest)
		return
	}
	if !h.limiter.allow(req.RoomCode + "/" + req.PlayerID) {
		writeError(w, domain.ErrRateLimited)
		return
	}
	ack, err := h.service.SubmitAnswer(r.Context(), domain.AnswerSubmission{
		PlayerID:            req.PlayerID,
		RoomCode:            req.RoomCode,
		QuestionID:          req.QuestionID,
		SelectedOptionIndex: *req.SelectedOptionIndex,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func filterFinished(rooms []domain.RoomSummary) []domain.RoomSummary {
	out := make([]domain.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		if r.Status == domain.StatusFinished {
			out = append(out, r)
		}
	}
	return out
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, errBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := domain.ErrorCode(err)
	if errors.Is(err, errBadRequest) {
		code = "bad_request"
	}
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		code = "internal"
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func statusFor(code string) int {
	switch code {
	case "room_not_found", "player_not_found", "words_not_found":
		return http.StatusNotFound
	case "room_already_started", "room_full", "phase_mismatch", "stale_question",
		"answer_window_closed", "config_locked", "not_enough_players":
		return http.StatusConflict
	case "not_host":
		return http.StatusForbidden
	case "invalid_config", "invalid_option", "bad_request":
		return http.StatusBadRequest
	case "not_enough_words":
		return http.StatusUnprocessableEntity
	case "rate_limited":
		return http.StatusTooManyRequests
	case "code_exhaustion":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zen-backend/internal/middleware"
	"zen-backend/internal/models"
)

type profileService interface {
	Create(ctx context.Context) (*models.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CompleteQuestionnaire(ctx context.Context, id uuid.UUID, req models.QuestionnaireRequest) (*models.Profile, error)
	AddCheckIn(ctx context.Context, id uuid.UUID, req models.CheckInRequest) (*models.Profile, error)
	CompletePomodoro(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CompleteLesson(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CompleteBreathing(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Rewards(ctx context.Context, id uuid.UUID) (*models.Rewards, error)
}

type tokenIssuer interface {
	GenerateProfileToken(profileID uuid.UUID) (string, error)
}

type ProfileHandler struct {
	profiles profileService
	tokens   tokenIssuer
	logger   *zap.Logger
}

func NewProfileHandler(profiles profileService, tokens tokenIssuer, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, tokens: tokens, logger: logger}
}

// Create starts an anonymous profile and returns the token that unlocks it.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Create(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	token, err := h.tokens.GenerateProfileToken(profile.ID)
	if err != nil {
		h.logger.Error("failed to sign profile token", zap.Error(err))
		writeError(w, models.CodeInternal, "Erro interno do servidor.")
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateProfileResponse{
		Profile:     profile,
		AccessToken: token,
		ExpiresIn:   int(middleware.ProfileTokenTTL.Seconds()),
	})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), middleware.GetProfileID(r.Context()))
	h.respond(w, profile, err)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), middleware.GetProfileID(r.Context())); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) CompleteQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionnaireRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.profiles.CompleteQuestionnaire(r.Context(), middleware.GetProfileID(r.Context()), req)
	h.respond(w, profile, err)
}

func (h *ProfileHandler) AddCheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.profiles.AddCheckIn(r.Context(), middleware.GetProfileID(r.Context()), req)
	h.respond(w, profile, err)
}

func (h *ProfileHandler) CompletePomodoro(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.CompletePomodoro(r.Context(), middleware.GetProfileID(r.Context()))
	h.respond(w, profile, err)
}

func (h *ProfileHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.CompleteLesson(r.Context(), middleware.GetProfileID(r.Context()))
	h.respond(w, profile, err)
}

func (h *ProfileHandler) CompleteBreathing(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.CompleteBreathing(r.Context(), middleware.GetProfileID(r.Context()))
	h.respond(w, profile, err)
}

func (h *ProfileHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.profiles.Rewards(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *ProfileHandler) respond(w http.ResponseWriter, profile *models.Profile, err error) {
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(r, dst); err != nil {
		if isTooLarge(err) {
			writeError(w, models.CodePayloadTooLarge, "Requisição muito grande.")
		} else {
			writeError(w, models.CodeValidation, "Invalid request body")
		}
		return false
	}
	return true
}

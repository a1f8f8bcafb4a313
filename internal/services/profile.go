package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zen-backend/internal/models"
)

// Points awarded per activity.
const (
	PointsCheckIn   = 10
	PointsPomodoro  = 20
	PointsLesson    = 15
	PointsBreathing = 5
	pointsPerLevel  = 100
)

// ErrProfileNotFound is returned by profile stores for unknown IDs.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore persists one JSON profile blob per storage key.
//
// Update runs apply against the stored profile and saves the result as one
// atomic step: concurrent updates of the same profile never lose a write.
// It returns ErrProfileNotFound for unknown IDs.
type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, id uuid.UUID, apply func(p *models.Profile)) (*models.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileService owns questionnaire results and gamification bookkeeping.
// Every mutation is an atomic read-modify-write of the whole blob.
type ProfileService struct {
	store  ProfileStore
	logger *zap.Logger
	now    func() time.Time
}

func NewProfileService(store ProfileStore, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{store: store, logger: logger, now: time.Now}
}

// NewProfile returns a profile with the onboarding defaults.
func NewProfile(id uuid.UUID, now time.Time) *models.Profile {
	return &models.Profile{
		ID:           id,
		StressLevel:  5,
		FocusLevel:   5,
		SleepQuality: 5,
		CheckIns:     []models.CheckIn{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *ProfileService) Create(ctx context.Context) (*models.Profile, error) {
	profile := NewProfile(uuid.New(), s.now().UTC())
	if err := s.store.Save(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info("profile created", zap.String("profile_id", profile.ID.String()))
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, &NotFoundError{Message: "Profile not found"}
	}
	return profile, err
}

func (s *ProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *ProfileService) CompleteQuestionnaire(ctx context.Context, id uuid.UUID, req models.QuestionnaireRequest) (*models.Profile, error) {
	fields := map[string]string{}
	checkScale(fields, "stress_level", req.StressLevel)
	checkScale(fields, "focus_level", req.FocusLevel)
	checkScale(fields, "sleep_quality", req.SleepQuality)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.mutate(ctx, id, func(p *models.Profile) {
		p.StressLevel = req.StressLevel
		p.FocusLevel = req.FocusLevel
		p.SleepQuality = req.SleepQuality
		p.HasCompletedQuestionnaire = true
	})
}

// AddCheckIn records today's mood; a second check-in on the same day
// replaces the first but still earns points.
func (s *ProfileService) AddCheckIn(ctx context.Context, id uuid.UUID, req models.CheckInRequest) (*models.Profile, error) {
	fields := map[string]string{}
	checkScale(fields, "mood", req.Mood)
	checkScale(fields, "energy", req.Energy)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	today := s.now().UTC().Format("2006-01-02")
	return s.mutate(ctx, id, func(p *models.Profile) {
		kept := p.CheckIns[:0]
		for _, c := range p.CheckIns {
			if c.Date != today {
				kept = append(kept, c)
			}
		}
		p.CheckIns = append(kept, models.CheckIn{Date: today, Mood: req.Mood, Energy: req.Energy})
		p.Points += PointsCheckIn
	})
}

func (s *ProfileService) CompletePomodoro(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.mutate(ctx, id, func(p *models.Profile) {
		p.PomodoroSessions++
		p.Points += PointsPomodoro
	})
}

func (s *ProfileService) CompleteLesson(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.mutate(ctx, id, func(p *models.Profile) {
		p.LessonsCompleted++
		p.Points += PointsLesson
	})
}

func (s *ProfileService) CompleteBreathing(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.mutate(ctx, id, func(p *models.Profile) {
		p.Points += PointsBreathing
	})
}

func (s *ProfileService) Rewards(ctx context.Context, id uuid.UUID) (*models.Rewards, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ComputeRewards(profile), nil
}

func (s *ProfileService) mutate(ctx context.Context, id uuid.UUID, apply func(p *models.Profile)) (*models.Profile, error) {
	profile, err := s.store.Update(ctx, id, func(p *models.Profile) {
		apply(p)
		p.UpdatedAt = s.now().UTC()
	})
	if errors.Is(err, ErrProfileNotFound) {
		return nil, &NotFoundError{Message: "Profile not found"}
	}
	return profile, err
}

func checkScale(fields map[string]string, name string, v int) {
	if v < 1 || v > 10 {
		fields[name] = "must be between 1 and 10"
	}
}

// ComputeRewards derives level and achievement state from the counters.
func ComputeRewards(p *models.Profile) *models.Rewards {
	checkIns := len(p.CheckIns)
	achievements := []models.Achievement{
		{ID: "first-checkin", Title: "Primeiro Passo", Description: "Complete seu primeiro check-in emocional",
			Points: 10, Unlocked: checkIns >= 1},
		{ID: "week-streak", Title: "Semana Consistente", Description: "Faça check-ins por 7 dias consecutivos",
			Points: 50, Unlocked: checkIns >= 7, Progress: checkIns, Total: 7},
		{ID: "first-pomodoro", Title: "Foco Inicial", Description: "Complete sua primeira sessão Pomodoro",
			Points: 20, Unlocked: p.PomodoroSessions >= 1},
		{ID: "pomodoro-master", Title: "Mestre do Foco", Description: "Complete 25 sessões Pomodoro",
			Points: 100, Unlocked: p.PomodoroSessions >= 25, Progress: p.PomodoroSessions, Total: 25},
		{ID: "student", Title: "Estudante Dedicado", Description: "Complete 5 aulas educativas",
			Points: 75, Unlocked: p.LessonsCompleted >= 5, Progress: p.LessonsCompleted, Total: 5},
		{ID: "scholar", Title: "Acadêmico", Description: "Complete todas as aulas educativas",
			Points: 150, Unlocked: p.LessonsCompleted >= 10, Progress: p.LessonsCompleted, Total: 10},
		{ID: "points-100", Title: "Centurião", Description: "Acumule 100 pontos",
			Unlocked: p.Points >= 100, Progress: p.Points, Total: 100},
		{ID: "points-500", Title: "Lenda", Description: "Acumule 500 pontos",
			Unlocked: p.Points >= 500, Progress: p.Points, Total: 500},
	}

	unlocked := 0
	for _, a := range achievements {
		if a.Unlocked {
			unlocked++
		}
	}

	return &models.Rewards{
		Points:            p.Points,
		Level:             p.Points/pointsPerLevel + 1,
		PointsInLevel:     p.Points % pointsPerLevel,
		PointsToNextLevel: pointsPerLevel - p.Points%pointsPerLevel,
		Achievements:      achievements,
		UnlockedCount:     unlocked,
	}
}

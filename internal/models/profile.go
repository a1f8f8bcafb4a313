package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileStorageKey prefixes every persisted profile blob.
const ProfileStorageKey = "zenUserData"

// Profile holds questionnaire results and gamification counters.
type Profile struct {
	ID                        uuid.UUID `json:"id"`
	HasCompletedQuestionnaire bool      `json:"has_completed_questionnaire"`
	StressLevel               int       `json:"stress_level"`
	FocusLevel                int       `json:"focus_level"`
	SleepQuality              int       `json:"sleep_quality"`
	Points                    int       `json:"points"`
	CheckIns                  []CheckIn `json:"check_ins"`
	PomodoroSessions          int       `json:"pomodoro_sessions"`
	LessonsCompleted          int       `json:"lessons_completed"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// StorageKey is the fixed key the profile blob is stored under.
func (p *Profile) StorageKey() string {
	return ProfileStorageKey + ":" + p.ID.String()
}

type CheckIn struct {
	Date   string `json:"date"` // YYYY-MM-DD, UTC
	Mood   int    `json:"mood"`
	Energy int    `json:"energy"`
}

type QuestionnaireRequest struct {
	StressLevel  int `json:"stress_level"`
	FocusLevel   int `json:"focus_level"`
	SleepQuality int `json:"sleep_quality"`
}

type CheckInRequest struct {
	Mood   int `json:"mood"`
	Energy int `json:"energy"`
}

// CreateProfileResponse carries the new profile and its bearer token.
type CreateProfileResponse struct {
	Profile     *Profile `json:"profile"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int      `json:"expires_in"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress,omitempty"`
	Total       int    `json:"total,omitempty"`
}

type Rewards struct {
	Points            int           `json:"points"`
	Level             int           `json:"level"`
	PointsInLevel     int           `json:"points_in_level"`
	PointsToNextLevel int           `json:"points_to_next_level"`
	Achievements      []Achievement `json:"achievements"`
	UnlockedCount     int           `json:"unlocked_count"`
}

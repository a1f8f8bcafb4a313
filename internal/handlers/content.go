package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"zen-backend/internal/content"
	"zen-backend/internal/models"
)

// ContentHandler serves the static educational catalog.
type ContentHandler struct{}

func NewContentHandler() *ContentHandler {
	return &ContentHandler{}
}

func (h *ContentHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"lessons": content.Lessons()})
}

func (h *ContentHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, ok := content.LessonBySlug(chi.URLParam(r, "slug"))
	if !ok {
		writeError(w, models.CodeNotFound, "Lesson not found")
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (h *ContentHandler) ListStudyTechniques(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"techniques": content.StudyTechniques()})
}

func (h *ContentHandler) ListPsychologists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"psychologists": content.Psychologists()})
}

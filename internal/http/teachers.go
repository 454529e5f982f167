package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

type teacherRequest struct {
	FullName   string `json:"fullName"`
	Department string `json:"department"`
}

type teacherSummary struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Department string `json:"department"`
}

func (s *Server) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req teacherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Department = strings.TrimSpace(req.Department)
	if req.FullName == "" || req.Department == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	now := time.Now().UTC()
	teacher := model.Teacher{
		ID:         uuid.NewString(),
		FullName:   req.FullName,
		Department: req.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateTeacher(r.Context(), teacher); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": teacher.ID})
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := s.store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(teachers) == 0 {
		writeError(w, http.StatusNotFound, "teachers_not_found")
		return
	}

	resp := make([]teacherSummary, 0, len(teachers))
	for _, teacher := range teachers {
		resp = append(resp, teacherSummary{
			ID:         teacher.ID,
			FullName:   teacher.FullName,
			Department: teacher.Department,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherId")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "missing_teacher_id")
		return
	}

	teacher, err := s.store.GetTeacher(r.Context(), teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "teacher_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, teacherSummary{
		ID:         teacher.ID,
		FullName:   teacher.FullName,
		Department: teacher.Department,
	})
}

func (s *Server) handleUpdateTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherId")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "missing_teacher_id")
		return
	}

	var req teacherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Department = strings.TrimSpace(req.Department)
	if req.FullName == "" || req.Department == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	updated, err := s.store.UpdateTeacher(r.Context(), model.Teacher{
		ID:         teacherID,
		FullName:   req.FullName,
		Department: req.Department,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "teacher_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherId")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "missing_teacher_id")
		return
	}

	deleted, err := s.store.DeleteTeacher(r.Context(), teacherID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "teacher_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAssignCourse(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherId")
	courseID := chi.URLParam(r, "courseId")
	if teacherID == "" || courseID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	exists, err := s.store.TeacherExists(r.Context(), teacherID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "teacher_not_found")
		return
	}

	assigned, err := s.store.SetCourseTeacher(r.Context(), courseID, &teacherID, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !assigned {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleUnassignTeacher(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if courseID == "" {
		writeError(w, http.StatusBadRequest, "missing_course_id")
		return
	}

	unassigned, err := s.store.SetCourseTeacher(r.Context(), courseID, nil, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !unassigned {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unassigned"})
}

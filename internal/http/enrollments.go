package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

type enrollRequest struct {
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
}

type gradeRequest struct {
	StudentID string   `json:"studentId"`
	CourseID  string   `json:"courseId"`
	Grade     *float64 `json:"grade"`
}

type enrollmentSummary struct {
	StudentID string   `json:"studentId"`
	CourseID  string   `json:"courseId"`
	Grade     *float64 `json:"grade,omitempty"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.StudentID == "" || req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	if _, err := s.store.GetStudent(r.Context(), req.StudentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "student_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	exists, err := s.store.CourseExists(r.Context(), req.CourseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "course_not_found")
		return
	}

	now := time.Now().UTC()
	enrollment := model.Enrollment{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateEnrollment(r.Context(), enrollment); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "already_enrolled")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "enrolled"})
}

func (s *Server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := s.store.ListEnrollments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(enrollments) == 0 {
		writeError(w, http.StatusNotFound, "enrollments_not_found")
		return
	}

	resp := make([]enrollmentSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		resp = append(resp, enrollmentSummary{
			StudentID: enrollment.StudentID,
			CourseID:  enrollment.CourseID,
			Grade:     enrollment.Grade,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAddOrUpdateGrade sets the grade on an existing enrollment; the
// student must already be assigned to the course.
func (s *Server) handleAddOrUpdateGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.StudentID == "" || req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	updated, err := s.store.UpdateEnrollmentGrade(r.Context(), req.StudentID, req.CourseID, req.Grade)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "enrollment_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "grade_saved"})
}

func (s *Server) handleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	courseID := chi.URLParam(r, "courseId")
	if studentID == "" || courseID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	deleted, err := s.store.DeleteEnrollment(r.Context(), studentID, courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "enrollment_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGradesByStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "missing_student_id")
		return
	}

	grades, err := s.store.ListGradesByStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(grades) == 0 {
		writeError(w, http.StatusNotFound, "grades_not_found")
		return
	}

	resp := make([]studentCourseSummary, 0, len(grades))
	for _, grade := range grades {
		resp = append(resp, studentCourseSummary{
			CourseID:    grade.CourseID,
			CourseTitle: grade.CourseTitle,
			Grade:       grade.Grade,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGradesByCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")
	if courseID == "" {
		writeError(w, http.StatusBadRequest, "missing_course_id")
		return
	}

	grades, err := s.store.ListGradesByCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(grades) == 0 {
		writeError(w, http.StatusNotFound, "grades_not_found")
		return
	}

	resp := make([]courseStudentSummary, 0, len(grades))
	for _, grade := range grades {
		resp = append(resp, courseStudentSummary{
			StudentID:   grade.StudentID,
			StudentName: grade.StudentName,
			Grade:       grade.Grade,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

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

const dateLayout = "2006-01-02"

type studentRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	DOB      string `json:"dob"`
}

type studentCourseSummary struct {
	CourseID    string   `json:"courseId"`
	CourseTitle string   `json:"courseTitle"`
	Grade       *float64 `json:"grade,omitempty"`
}

type studentSummary struct {
	ID       string                 `json:"id"`
	FullName string                 `json:"fullName"`
	Email    string                 `json:"email"`
	DOB      string                 `json:"dob"`
	Courses  []studentCourseSummary `json:"courses"`
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = model.NormalizeEmail(req.Email)
	if req.FullName == "" || req.Email == "" || req.DOB == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	dob, err := time.Parse(dateLayout, req.DOB)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_dob")
		return
	}

	exists, err := s.store.StudentEmailExists(r.Context(), req.Email, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "email_already_exists")
		return
	}

	now := time.Now().UTC()
	student := model.Student{
		ID:        uuid.NewString(),
		FullName:  req.FullName,
		Email:     req.Email,
		DOB:       dob,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateStudent(r.Context(), student); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "email_already_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": student.ID})
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(students) == 0 {
		writeError(w, http.StatusNotFound, "students_not_found")
		return
	}

	resp := make([]studentSummary, 0, len(students))
	for _, student := range students {
		summary, err := s.studentWithCourses(r, student)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		resp = append(resp, summary)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "missing_student_id")
		return
	}

	student, err := s.store.GetStudent(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "student_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	summary, err := s.studentWithCourses(r, student)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "missing_student_id")
		return
	}

	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = model.NormalizeEmail(req.Email)
	if req.FullName == "" || req.Email == "" || req.DOB == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	dob, err := time.Parse(dateLayout, req.DOB)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_dob")
		return
	}

	exists, err := s.store.StudentEmailExists(r.Context(), req.Email, studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "email_already_exists")
		return
	}

	updated, err := s.store.UpdateStudent(r.Context(), model.Student{
		ID:        studentID,
		FullName:  req.FullName,
		Email:     req.Email,
		DOB:       dob,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "student_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "missing_student_id")
		return
	}

	deleted, err := s.store.DeleteStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "student_not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) studentWithCourses(r *http.Request, student model.Student) (studentSummary, error) {
	courses, err := s.store.ListStudentCourses(r.Context(), student.ID)
	if err != nil {
		return studentSummary{}, err
	}

	summary := studentSummary{
		ID:       student.ID,
		FullName: student.FullName,
		Email:    student.Email,
		DOB:      student.DOB.Format(dateLayout),
		Courses:  make([]studentCourseSummary, 0, len(courses)),
	}
	for _, course := range courses {
		summary.Courses = append(summary.Courses, studentCourseSummary{
			CourseID:    course.CourseID,
			CourseTitle: course.CourseTitle,
			Grade:       course.Grade,
		})
	}
	return summary, nil
}

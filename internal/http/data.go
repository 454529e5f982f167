package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
	"github.com/RanaKhaled2002/Student-Management-System/internal/repository"
)

// CSV layouts match the export headers. Every import validates the
// whole file first and then applies it inside one transaction, so a
// rejected or failed import writes nothing.

func (s *Server) handleExportStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(students) == 0 {
		writeError(w, http.StatusNotFound, "students_not_found")
		return
	}

	records := [][]string{{"fullName", "email", "dob"}}
	for _, student := range students {
		records = append(records, []string{student.FullName, student.Email, student.DOB.Format(dateLayout)})
	}
	writeCSV(w, "students.csv", records)
}

func (s *Server) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	records, err := readCSVUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_csv")
		return
	}

	type studentRow struct {
		fullName string
		email    string
		dob      time.Time
	}

	rows := make([]studentRow, 0, len(records))
	seen := map[string]bool{}
	for i, record := range records {
		if len(record) != 3 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		fullName := strings.TrimSpace(record[0])
		email := model.NormalizeEmail(record[1])
		dob, err := time.Parse(dateLayout, strings.TrimSpace(record[2]))
		if fullName == "" || email == "" || err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		if seen[email] {
			writeError(w, http.StatusBadRequest, "duplicate_email_in_csv")
			return
		}
		seen[email] = true
		rows = append(rows, studentRow{fullName: fullName, email: email, dob: dob})
	}

	now := time.Now().UTC()
	err = s.store.WithTx(r.Context(), func(store *repository.Store) error {
		for _, row := range rows {
			existing, err := store.GetStudentByEmail(r.Context(), row.email)
			if err == nil {
				if existing.FullName == row.fullName && existing.DOB.Equal(row.dob) {
					continue
				}
				existing.FullName = row.fullName
				existing.DOB = row.dob
				existing.UpdatedAt = now
				if _, err := store.UpdateStudent(r.Context(), existing); err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			student := model.Student{
				ID:        uuid.NewString(),
				FullName:  row.fullName,
				Email:     row.email,
				DOB:       row.dob,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.CreateStudent(r.Context(), student); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func (s *Server) handleExportTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := s.store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(teachers) == 0 {
		writeError(w, http.StatusNotFound, "teachers_not_found")
		return
	}

	records := [][]string{{"fullName", "department"}}
	for _, teacher := range teachers {
		records = append(records, []string{teacher.FullName, teacher.Department})
	}
	writeCSV(w, "teachers.csv", records)
}

func (s *Server) handleImportTeachers(w http.ResponseWriter, r *http.Request) {
	records, err := readCSVUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_csv")
		return
	}

	type teacherRow struct {
		fullName   string
		department string
	}

	rows := make([]teacherRow, 0, len(records))
	for i, record := range records {
		if len(record) != 2 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		fullName := strings.TrimSpace(record[0])
		department := strings.TrimSpace(record[1])
		if fullName == "" || department == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		rows = append(rows, teacherRow{fullName: fullName, department: department})
	}

	now := time.Now().UTC()
	err = s.store.WithTx(r.Context(), func(store *repository.Store) error {
		for _, row := range rows {
			exists, err := store.TeacherNameExists(r.Context(), row.fullName)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			teacher := model.Teacher{
				ID:         uuid.NewString(),
				FullName:   row.fullName,
				Department: row.department,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := store.CreateTeacher(r.Context(), teacher); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func (s *Server) handleExportCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(courses) == 0 {
		writeError(w, http.StatusNotFound, "courses_not_found")
		return
	}

	records := [][]string{{"title", "description"}}
	for _, course := range courses {
		records = append(records, []string{course.Title, course.Description})
	}
	writeCSV(w, "courses.csv", records)
}

func (s *Server) handleImportCourses(w http.ResponseWriter, r *http.Request) {
	records, err := readCSVUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_csv")
		return
	}

	type courseRow struct {
		title       string
		description string
	}

	rows := make([]courseRow, 0, len(records))
	for i, record := range records {
		if len(record) != 2 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		title := strings.TrimSpace(record[0])
		description := strings.TrimSpace(record[1])
		if title == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		rows = append(rows, courseRow{title: title, description: description})
	}

	now := time.Now().UTC()
	err = s.store.WithTx(r.Context(), func(store *repository.Store) error {
		for _, row := range rows {
			exists, err := store.CourseTitleExists(r.Context(), row.title)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			course := model.Course{
				ID:          uuid.NewString(),
				Title:       row.title,
				Description: row.description,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := store.CreateCourse(r.Context(), course); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func (s *Server) handleExportGrades(w http.ResponseWriter, r *http.Request) {
	grades, err := s.store.ListGradeExportRows(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if len(grades) == 0 {
		writeError(w, http.StatusNotFound, "enrollments_not_found")
		return
	}

	records := [][]string{{"studentEmail", "courseTitle", "grade"}}
	for _, grade := range grades {
		value := ""
		if grade.Grade != nil {
			value = strconv.FormatFloat(*grade.Grade, 'f', -1, 64)
		}
		records = append(records, []string{grade.StudentEmail, grade.CourseTitle, value})
	}
	writeCSV(w, "grades.csv", records)
}

// handleImportGrades resolves each row against the roster by student
// email and course title, then upserts the enrollments. An empty grade
// column enrolls without grading.
func (s *Server) handleImportGrades(w http.ResponseWriter, r *http.Request) {
	records, err := readCSVUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_csv")
		return
	}

	type gradeRow struct {
		studentID string
		courseID  string
		grade     *float64
	}

	rows := make([]gradeRow, 0, len(records))
	for i, record := range records {
		if len(record) != 3 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}
		email := model.NormalizeEmail(record[0])
		title := strings.TrimSpace(record[1])
		if email == "" || title == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
			return
		}

		var grade *float64
		if value := strings.TrimSpace(record[2]); value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid_row_%d", i+2))
				return
			}
			grade = &parsed
		}

		student, err := s.store.GetStudentByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown_student_row_%d", i+2))
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		course, err := s.store.GetCourseByTitle(r.Context(), title)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown_course_row_%d", i+2))
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		rows = append(rows, gradeRow{studentID: student.ID, courseID: course.ID, grade: grade})
	}

	now := time.Now().UTC()
	err = s.store.WithTx(r.Context(), func(store *repository.Store) error {
		for _, row := range rows {
			updated, err := store.UpdateEnrollmentGrade(r.Context(), row.studentID, row.courseID, row.grade)
			if err != nil {
				return err
			}
			if updated {
				continue
			}
			enrollment := model.Enrollment{
				StudentID: row.studentID,
				CourseID:  row.courseID,
				Grade:     row.grade,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.CreateEnrollment(r.Context(), enrollment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func writeCSV(w http.ResponseWriter, filename string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writer := csv.NewWriter(w)
	_ = writer.WriteAll(records)
}

// readCSVUpload returns the data rows of the uploaded "file" part, with
// the header row stripped.
func readCSVUpload(r *http.Request) ([][]string, error) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv_empty")
	}
	return records[1:], nil
}

package repository

import (
	"context"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

type StudentGrade struct {
	StudentID   string
	StudentName string
	Grade       *float64
}

type CourseGrade struct {
	CourseID    string
	CourseTitle string
	Grade       *float64
}

type GradeExportRow struct {
	StudentEmail string
	CourseTitle  string
	Grade        *float64
}

func (s *Store) CreateEnrollment(ctx context.Context, enrollment model.Enrollment) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO enrollments (student_id, course_id, grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, enrollment.StudentID, enrollment.CourseID, enrollment.Grade, enrollment.CreatedAt, enrollment.UpdatedAt)
	return err
}

func (s *Store) GetEnrollment(ctx context.Context, studentID, courseID string) (model.Enrollment, error) {
	var enrollment model.Enrollment
	row := s.db.QueryRow(ctx, `
		SELECT student_id, course_id, grade, created_at, updated_at
		FROM enrollments
		WHERE student_id = $1 AND course_id = $2
	`, studentID, courseID)
	err := row.Scan(&enrollment.StudentID, &enrollment.CourseID, &enrollment.Grade, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	return enrollment, err
}

func (s *Store) ListEnrollments(ctx context.Context) ([]model.Enrollment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT student_id, course_id, grade, created_at, updated_at
		FROM enrollments
		ORDER BY student_id, course_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var enrollment model.Enrollment
		if err := rows.Scan(&enrollment.StudentID, &enrollment.CourseID, &enrollment.Grade, &enrollment.CreatedAt, &enrollment.UpdatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}

func (s *Store) UpdateEnrollmentGrade(ctx context.Context, studentID, courseID string, grade *float64) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE enrollments
		SET grade = $1, updated_at = now()
		WHERE student_id = $2 AND course_id = $3
	`, grade, studentID, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteEnrollment(ctx context.Context, studentID, courseID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2
	`, studentID, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListGradeExportRows(ctx context.Context) ([]GradeExportRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT st.email, c.title, e.grade
		FROM enrollments e
		JOIN students st ON st.id = e.student_id
		JOIN courses c ON c.id = e.course_id
		ORDER BY st.email, c.title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []GradeExportRow
	for rows.Next() {
		var grade GradeExportRow
		if err := rows.Scan(&grade.StudentEmail, &grade.CourseTitle, &grade.Grade); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, rows.Err()
}

func (s *Store) ListGradesByStudent(ctx context.Context, studentID string) ([]CourseGrade, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.title, e.grade
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1
		ORDER BY c.title
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []CourseGrade
	for rows.Next() {
		var grade CourseGrade
		if err := rows.Scan(&grade.CourseID, &grade.CourseTitle, &grade.Grade); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, rows.Err()
}

func (s *Store) ListGradesByCourse(ctx context.Context, courseID string) ([]StudentGrade, error) {
	rows, err := s.db.Query(ctx, `
		SELECT st.id, st.full_name, e.grade
		FROM enrollments e
		JOIN students st ON st.id = e.student_id
		WHERE e.course_id = $1
		ORDER BY st.full_name
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []StudentGrade
	for rows.Next() {
		var grade StudentGrade
		if err := rows.Scan(&grade.StudentID, &grade.StudentName, &grade.Grade); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, rows.Err()
}

package repository

import (
	"context"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

type StudentCourse struct {
	CourseID    string
	CourseTitle string
	Grade       *float64
}

func (s *Store) CreateStudent(ctx context.Context, student model.Student) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO students (id, full_name, email, dob, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)
	`, student.ID, student.FullName, student.Email, student.DOB, student.CreatedAt, student.UpdatedAt)
	return err
}

func (s *Store) GetStudent(ctx context.Context, studentID string) (model.Student, error) {
	var student model.Student
	row := s.db.QueryRow(ctx, `
		SELECT id, full_name, email, dob, created_at, updated_at
		FROM students
		WHERE id = $1
	`, studentID)
	err := row.Scan(&student.ID, &student.FullName, &student.Email, &student.DOB, &student.CreatedAt, &student.UpdatedAt)
	return student, err
}

func (s *Store) GetStudentByEmail(ctx context.Context, email string) (model.Student, error) {
	var student model.Student
	row := s.db.QueryRow(ctx, `
		SELECT id, full_name, email, dob, created_at, updated_at
		FROM students
		WHERE email = lower($1)
	`, email)
	err := row.Scan(&student.ID, &student.FullName, &student.Email, &student.DOB, &student.CreatedAt, &student.UpdatedAt)
	return student, err
}

func (s *Store) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, full_name, email, dob, created_at, updated_at
		FROM students
		ORDER BY full_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var student model.Student
		if err := rows.Scan(&student.ID, &student.FullName, &student.Email, &student.DOB, &student.CreatedAt, &student.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

func (s *Store) UpdateStudent(ctx context.Context, student model.Student) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE students
		SET full_name = $1, email = lower($2), dob = $3, updated_at = $4
		WHERE id = $5
	`, student.FullName, student.Email, student.DOB, student.UpdatedAt, student.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteStudent(ctx context.Context, studentID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM students WHERE id = $1
	`, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) StudentEmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM students WHERE email = lower($1) AND id <> $2)
	`, email, excludeID).Scan(&exists)
	return exists, err
}

func (s *Store) ListStudentCourses(ctx context.Context, studentID string) ([]StudentCourse, error) {
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

	var courses []StudentCourse
	for rows.Next() {
		var course StudentCourse
		if err := rows.Scan(&course.CourseID, &course.CourseTitle, &course.Grade); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

package repository

import (
	"context"
	"time"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

func (s *Store) CreateCourse(ctx context.Context, course model.Course) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO courses (id, title, description, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, course.ID, course.Title, course.Description, course.TeacherID, course.CreatedAt, course.UpdatedAt)
	return err
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (model.Course, error) {
	var course model.Course
	row := s.db.QueryRow(ctx, `
		SELECT id, title, description, teacher_id, created_at, updated_at
		FROM courses
		WHERE id = $1
	`, courseID)
	err := row.Scan(&course.ID, &course.Title, &course.Description, &course.TeacherID, &course.CreatedAt, &course.UpdatedAt)
	return course, err
}

func (s *Store) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, description, teacher_id, created_at, updated_at
		FROM courses
		ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.TeacherID, &course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (s *Store) UpdateCourse(ctx context.Context, course model.Course) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE courses
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, course.Title, course.Description, course.UpdatedAt, course.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteCourse(ctx context.Context, courseID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM courses WHERE id = $1
	`, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SetCourseTeacher(ctx context.Context, courseID string, teacherID *string, updatedAt time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE courses
		SET teacher_id = $1, updated_at = $2
		WHERE id = $3
	`, teacherID, updatedAt, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) GetCourseByTitle(ctx context.Context, title string) (model.Course, error) {
	var course model.Course
	row := s.db.QueryRow(ctx, `
		SELECT id, title, description, teacher_id, created_at, updated_at
		FROM courses
		WHERE title = $1
	`, title)
	err := row.Scan(&course.ID, &course.Title, &course.Description, &course.TeacherID, &course.CreatedAt, &course.UpdatedAt)
	return course, err
}

func (s *Store) CourseTitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM courses WHERE title = $1)
	`, title).Scan(&exists)
	return exists, err
}

func (s *Store) CourseExists(ctx context.Context, courseID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)
	`, courseID).Scan(&exists)
	return exists, err
}

package repository

import (
	"context"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

func (s *Store) CreateTeacher(ctx context.Context, teacher model.Teacher) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO teachers (id, full_name, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, teacher.ID, teacher.FullName, teacher.Department, teacher.CreatedAt, teacher.UpdatedAt)
	return err
}

func (s *Store) GetTeacher(ctx context.Context, teacherID string) (model.Teacher, error) {
	var teacher model.Teacher
	row := s.db.QueryRow(ctx, `
		SELECT id, full_name, department, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`, teacherID)
	err := row.Scan(&teacher.ID, &teacher.FullName, &teacher.Department, &teacher.CreatedAt, &teacher.UpdatedAt)
	return teacher, err
}

func (s *Store) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, full_name, department, created_at, updated_at
		FROM teachers
		ORDER BY full_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []model.Teacher
	for rows.Next() {
		var teacher model.Teacher
		if err := rows.Scan(&teacher.ID, &teacher.FullName, &teacher.Department, &teacher.CreatedAt, &teacher.UpdatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}
	return teachers, rows.Err()
}

func (s *Store) UpdateTeacher(ctx context.Context, teacher model.Teacher) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE teachers
		SET full_name = $1, department = $2, updated_at = $3
		WHERE id = $4
	`, teacher.FullName, teacher.Department, teacher.UpdatedAt, teacher.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteTeacher(ctx context.Context, teacherID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM teachers WHERE id = $1
	`, teacherID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) TeacherNameExists(ctx context.Context, fullName string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM teachers WHERE full_name = $1)
	`, fullName).Scan(&exists)
	return exists, err
}

func (s *Store) TeacherExists(ctx context.Context, teacherID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM teachers WHERE id = $1)
	`, teacherID).Scan(&exists)
	return exists, err
}

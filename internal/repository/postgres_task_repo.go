package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, project_id, assigned_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.Title, task.Description, task.Status,
		task.ProjectID, task.AssignedUserID, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, project_id, assigned_user_id, created_at, updated_at
		 FROM tasks WHERE id = $1`,
		id,
	).Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.ProjectID, &task.AssignedUserID, &task.CreatedAt, &task.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

// ListByProjectID は指定プロジェクト配下のタスク一覧を担当ユーザー付きで返す。
// 担当ユーザーはusersテーブルとのLEFT JOINで取得し、未割り当ての場合はnil。
func (r *PostgresTaskRepo) ListByProjectID(ctx context.Context, projectID string) ([]model.TaskWithAssignee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.title, t.description, t.status, t.project_id, t.assigned_user_id,
		        t.created_at, t.updated_at,
		        u.id, u.name, u.email, u.created_at, u.updated_at
		 FROM tasks t
		 LEFT JOIN users u ON u.id = t.assigned_user_id
		 WHERE t.project_id = $1
		 ORDER BY t.created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.TaskWithAssignee{}
	for rows.Next() {
		var t model.TaskWithAssignee
		var uID, uName, uEmail sql.NullString
		var uCreatedAt, uUpdatedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status,
			&t.ProjectID, &t.AssignedUserID, &t.CreatedAt, &t.UpdatedAt,
			&uID, &uName, &uEmail, &uCreatedAt, &uUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if uID.Valid {
			t.AssignedUser = &model.User{
				ID:        uID.String,
				Name:      uName.String,
				Email:     uEmail.String,
				CreatedAt: uCreatedAt.Time,
				UpdatedAt: uUpdatedAt.Time,
			}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Update はタスクレコード全体を上書き更新する。対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $2, description = $3, status = $4, assigned_user_id = $5, updated_at = $6
		 WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Status, task.AssignedUserID, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID は指定IDのタスクを削除する。対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresTaskRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Filter は指定された等値条件に一致するタスクを全プロジェクト横断で返す。
// nilの条件は無視され、指定された条件だけをANDで結合したWHERE句を構築する。
func (r *PostgresTaskRepo) Filter(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := `SELECT id, title, description, status, project_id, assigned_user_id, created_at, updated_at FROM tasks`

	conditions := []string{}
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedUserID != nil {
		args = append(args, *filter.AssignedUserID)
		conditions = append(conditions, fmt.Sprintf("assigned_user_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status,
			&t.ProjectID, &t.AssignedUserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)

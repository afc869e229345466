package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, status, owner_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		project.ID, project.Name, project.Description, project.Status,
		project.OwnerUserID, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	project := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, status, owner_user_id, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&project.ID, &project.Name, &project.Description, &project.Status,
		&project.OwnerUserID, &project.CreatedAt, &project.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}

	return project, nil
}

// ListByOwnerID は指定ユーザーが所有するプロジェクト一覧を、
// 各プロジェクト配下のタスク付きで返す。
// タスクはプロジェクトID一括指定（ANY）で1クエリにまとめて取得する。
func (r *PostgresProjectRepo) ListByOwnerID(ctx context.Context, ownerUserID string) ([]model.ProjectWithTasks, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, status, owner_user_id, created_at, updated_at
		 FROM projects WHERE owner_user_id = $1 ORDER BY created_at`,
		ownerUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []model.ProjectWithTasks{}
	projectIDs := []string{}
	index := map[string]int{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status,
			&p.OwnerUserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		index[p.ID] = len(projects)
		projects = append(projects, model.ProjectWithTasks{Project: p, Tasks: []model.Task{}})
		projectIDs = append(projectIDs, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	if len(projects) == 0 {
		return projects, nil
	}

	taskRows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, status, project_id, assigned_user_id, created_at, updated_at
		 FROM tasks WHERE project_id = ANY($1) ORDER BY created_at`,
		pq.Array(projectIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for projects: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var t model.Task
		if err := taskRows.Scan(&t.ID, &t.Title, &t.Description, &t.Status,
			&t.ProjectID, &t.AssignedUserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if i, ok := index[t.ProjectID]; ok {
			projects[i].Tasks = append(projects[i].Tasks, t)
		}
	}
	if err := taskRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return projects, nil
}

// Update はプロジェクトレコード全体を上書き更新する。
// 対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresProjectRepo) Update(ctx context.Context, project *model.Project) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`,
		project.ID, project.Name, project.Description, project.Status, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
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

// DeleteByID は指定IDのプロジェクトを削除する。配下のタスクはCASCADE削除される。
// 対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresProjectRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)

// Package task はタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はタスク管理のサービス層。
// プロジェクト配下の操作は、親プロジェクトを呼び出し元が所有していることを検証する。
// Filterのみ全プロジェクト横断の検索であり、所有チェックを行わない。
type Service struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *Service {
	return &Service{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// Create は指定プロジェクト配下にタスクを作成する。
// 親プロジェクトが存在しない、または呼び出し元が所有していない場合はNotFoundを返す。
func (s *Service) Create(ctx context.Context, callerUserID, projectID, title, description, status string, assignedUserID *string) (*model.Task, error) {
	if err := s.verifyProjectOwnership(ctx, callerUserID, projectID); err != nil {
		return nil, err
	}

	now := time.Now()
	task := &model.Task{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    description,
		Status:         status,
		ProjectID:      projectID,
		AssignedUserID: assignedUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	return task, nil
}

// ListByProject は指定プロジェクト配下のタスク一覧を担当ユーザー付きで返す。
// 親プロジェクトが存在しない、または呼び出し元が所有していない場合はNotFoundを返す。
func (s *Service) ListByProject(ctx context.Context, callerUserID, projectID string) ([]model.TaskWithAssignee, error) {
	if err := s.verifyProjectOwnership(ctx, callerUserID, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Update はタスクを部分更新する。nilのフィールドは既存の値を維持する。
// タスクの親プロジェクトを呼び出し元が所有していない場合はNotFoundを返す。
func (s *Service) Update(ctx context.Context, callerUserID, taskID string, upd model.TaskUpdate) (*model.Task, error) {
	task, err := s.findOwned(ctx, callerUserID, taskID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.AssignedUserID != nil {
		task.AssignedUserID = upd.AssignedUserID
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewTaskNotFoundError()
		}
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	return task, nil
}

// Delete はタスクを削除する。
// タスクの親プロジェクトを呼び出し元が所有していない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, callerUserID, taskID string) error {
	if _, err := s.findOwned(ctx, callerUserID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.DeleteByID(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewTaskNotFoundError()
		}
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}

	return nil
}

// Filter は指定された等値条件に一致するタスクを全プロジェクト横断で返す。
// status・assignedUserIDのうち指定された条件のみがAND結合され、未指定の条件は無視される。
func (s *Service) Filter(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	tasks, err := s.taskRepo.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("タスクの検索に失敗しました: %w", err)
	}
	return tasks, nil
}

// verifyProjectOwnership は指定プロジェクトが存在し、呼び出し元が所有していることを検証する。
// 未検出と非所有はどちらも同じNotFoundを返す。
func (s *Service) verifyProjectOwnership(ctx context.Context, callerUserID, projectID string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil || project.OwnerUserID != callerUserID {
		return model.NewProjectNotFoundError()
	}
	return nil
}

// findOwned は指定タスクを取得し、親プロジェクトの所有権を検証する。
func (s *Service) findOwned(ctx context.Context, callerUserID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}

	if err := s.verifyProjectOwnership(ctx, callerUserID, task.ProjectID); err != nil {
		// 親プロジェクトが他ユーザー所有の場合もタスクの存在を漏らさない
		return nil, model.NewTaskNotFoundError()
	}

	return task, nil
}

// Package project はプロジェクト管理のドメインロジックを提供する。
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はプロジェクト管理のサービス層。
// すべての変更操作は呼び出し元がプロジェクトを所有していることを検証する。
type Service struct {
	projectRepo repository.ProjectRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(projectRepo repository.ProjectRepository) *Service {
	return &Service{projectRepo: projectRepo}
}

// Create は認証済みユーザーを所有者とするプロジェクトを作成する。
func (s *Service) Create(ctx context.Context, ownerUserID, name, description, status string) (*model.Project, error) {
	now := time.Now()
	project := &model.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      status,
		OwnerUserID: ownerUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	return project, nil
}

// ListByOwner は呼び出し元が所有するプロジェクト一覧を、配下のタスク付きで返す。
func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]model.ProjectWithTasks, error) {
	projects, err := s.projectRepo.ListByOwnerID(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	return projects, nil
}

// Update はプロジェクトを部分更新する。nilのフィールドは既存の値を維持する。
// プロジェクトが存在しない、または呼び出し元が所有していない場合はNotFoundを返す。
func (s *Service) Update(ctx context.Context, callerUserID, projectID string, upd model.ProjectUpdate) (*model.Project, error) {
	project, err := s.findOwned(ctx, callerUserID, projectID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	if upd.Status != nil {
		project.Status = *upd.Status
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewProjectNotFoundError()
		}
		return nil, fmt.Errorf("プロジェクトの更新に失敗しました: %w", err)
	}

	return project, nil
}

// Delete はプロジェクトを削除する。配下のタスクも削除される。
// プロジェクトが存在しない、または呼び出し元が所有していない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, callerUserID, projectID string) error {
	if _, err := s.findOwned(ctx, callerUserID, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.DeleteByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewProjectNotFoundError()
		}
		return fmt.Errorf("プロジェクトの削除に失敗しました: %w", err)
	}

	return nil
}

// findOwned は指定プロジェクトを取得し、呼び出し元が所有者であることを検証する。
// 未検出と非所有はどちらも同じNotFoundを返し、他ユーザーのプロジェクトの存在を漏らさない。
func (s *Service) findOwned(ctx context.Context, callerUserID, projectID string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil || project.OwnerUserID != callerUserID {
		return nil, model.NewProjectNotFoundError()
	}
	return project, nil
}

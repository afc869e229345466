package project

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// mockProjectRepository はProjectRepositoryの関数フィールド型モック。
type mockProjectRepository struct {
	createFn        func(ctx context.Context, project *model.Project) error
	findByIDFn      func(ctx context.Context, id string) (*model.Project, error)
	listByOwnerIDFn func(ctx context.Context, ownerUserID string) ([]model.ProjectWithTasks, error)
	updateFn        func(ctx context.Context, project *model.Project) error
	deleteByIDFn    func(ctx context.Context, id string) error
}

func (m *mockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return m.createFn(ctx, project)
}

func (m *mockProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockProjectRepository) ListByOwnerID(ctx context.Context, ownerUserID string) ([]model.ProjectWithTasks, error) {
	return m.listByOwnerIDFn(ctx, ownerUserID)
}

func (m *mockProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return m.updateFn(ctx, project)
}

func (m *mockProjectRepository) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFn(ctx, id)
}

func assertProjectNotFound(t *testing.T, err error) {
	t.Helper()

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeProjectNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeProjectNotFound)
	}
}

func TestCreate_SetsOwnerFromCaller(t *testing.T) {
	var created *model.Project
	repo := &mockProjectRepository{
		createFn: func(_ context.Context, project *model.Project) error {
			created = project
			return nil
		},
	}
	svc := NewService(repo)

	project, err := svc.Create(context.Background(), "user-1", "新規サービス開発", "説明", "active")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if project.OwnerUserID != "user-1" {
		t.Errorf("OwnerUserID = %q, want %q", project.OwnerUserID, "user-1")
	}
	if project.ID == "" {
		t.Error("expected generated project ID")
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
}

func TestListByOwner_DelegatesToRepository(t *testing.T) {
	repo := &mockProjectRepository{
		listByOwnerIDFn: func(_ context.Context, ownerUserID string) ([]model.ProjectWithTasks, error) {
			if ownerUserID != "user-1" {
				t.Errorf("ownerUserID = %q, want %q", ownerUserID, "user-1")
			}
			return []model.ProjectWithTasks{
				{Project: model.Project{ID: "proj-1", OwnerUserID: ownerUserID}},
			}, nil
		},
	}
	svc := NewService(repo)

	projects, err := svc.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("len(projects) = %d, want 1", len(projects))
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	var updated *model.Project
	repo := &mockProjectRepository{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{
				ID:          id,
				Name:        "旧プロジェクト名",
				Description: "旧説明",
				Status:      "active",
				OwnerUserID: "user-1",
			}, nil
		},
		updateFn: func(_ context.Context, project *model.Project) error {
			updated = project
			return nil
		},
	}
	svc := NewService(repo)

	newStatus := "completed"
	project, err := svc.Update(context.Background(), "user-1", "proj-1", model.ProjectUpdate{Status: &newStatus})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if project.Status != "completed" {
		t.Errorf("Status = %q, want %q", project.Status, "completed")
	}
	// 未指定フィールドは維持される
	if project.Name != "旧プロジェクト名" {
		t.Errorf("Name = %q, want unchanged", project.Name)
	}
	if updated == nil {
		t.Fatal("expected Update to be called")
	}
}

func TestUpdate_NotOwnedByCaller(t *testing.T) {
	repo := &mockProjectRepository{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, OwnerUserID: "other-user"}, nil
		},
		updateFn: func(context.Context, *model.Project) error {
			t.Fatal("Update should not be called for a foreign project")
			return nil
		},
	}
	svc := NewService(repo)

	newName := "乗っ取り"
	_, err := svc.Update(context.Background(), "user-1", "proj-1", model.ProjectUpdate{Name: &newName})

	// 非所有は未検出と同じエラーになる（存在を漏らさない）
	assertProjectNotFound(t, err)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockProjectRepository{
		findByIDFn: func(context.Context, string) (*model.Project, error) {
			return nil, nil
		},
	}
	svc := NewService(repo)

	newName := "更新"
	_, err := svc.Update(context.Background(), "user-1", "unknown", model.ProjectUpdate{Name: &newName})
	assertProjectNotFound(t, err)
}

func TestDelete_Owned(t *testing.T) {
	deleted := false
	repo := &mockProjectRepository{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, OwnerUserID: "user-1"}, nil
		},
		deleteByIDFn: func(_ context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "user-1", "proj-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Error("expected DeleteByID to be called")
	}
}

func TestDelete_NotOwnedByCaller(t *testing.T) {
	repo := &mockProjectRepository{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, OwnerUserID: "other-user"}, nil
		},
		deleteByIDFn: func(context.Context, string) error {
			t.Fatal("DeleteByID should not be called for a foreign project")
			return nil
		},
	}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), "user-1", "proj-1")
	assertProjectNotFound(t, err)
}

func TestDelete_RepositoryNotFoundRace(t *testing.T) {
	// 所有確認とDELETEの間に別リクエストが削除したケース
	repo := &mockProjectRepository{
		findByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, OwnerUserID: "user-1"}, nil
		},
		deleteByIDFn: func(context.Context, string) error {
			return repository.ErrNotFound
		},
	}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), "user-1", "proj-1")
	assertProjectNotFound(t, err)
}

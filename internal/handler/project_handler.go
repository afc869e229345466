package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/model"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	// Create は認証済みユーザーを所有者とするプロジェクトを作成する。
	Create(ctx context.Context, ownerUserID, name, description, status string) (*model.Project, error)
	// ListByOwner は呼び出し元が所有するプロジェクト一覧をタスク付きで返す。
	ListByOwner(ctx context.Context, ownerUserID string) ([]model.ProjectWithTasks, error)
	// Update はプロジェクトを部分更新する。所有チェックを行う。
	Update(ctx context.Context, callerUserID, projectID string, upd model.ProjectUpdate) (*model.Project, error)
	// Delete はプロジェクトを削除する。所有チェックを行う。
	Delete(ctx context.Context, callerUserID, projectID string) error
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{
		service: service,
	}
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// projectWithTasksResponse はプロジェクトと配下のタスク一覧のAPIレスポンス。
type projectWithTasksResponse struct {
	projectResponse
	Tasks []taskResponse `json:"tasks"`
}

// createProjectRequest はプロジェクト作成リクエストのボディ。
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// updateProjectRequest はプロジェクト更新リクエストのボディ。
// 省略されたフィールドは変更されない。
type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Create は認証済みユーザーを所有者とするプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "nameは必須です。"})
		return
	}

	project, err := h.service.Create(r.Context(), userID, req.Name, req.Description, req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(project))
}

// List は呼び出し元が所有するプロジェクト一覧を配下のタスク付きで取得する。
// GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projects, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]projectWithTasksResponse, len(projects))
	for i, p := range projects {
		tasks := make([]taskResponse, len(p.Tasks))
		for j := range p.Tasks {
			tasks[j] = toTaskResponse(&p.Tasks[j])
		}
		results[i] = projectWithTasksResponse{
			projectResponse: toProjectResponse(&p.Project),
			Tasks:           tasks,
		}
	}
	writeJSON(w, http.StatusOK, results)
}

// Update はプロジェクトを部分更新する。
// PUT /api/projects/:projectId
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectId")

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	project, err := h.service.Update(r.Context(), userID, projectID, model.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(project))
}

// Delete はプロジェクトを削除する。
// DELETE /api/projects/:projectId
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectId")

	if err := h.service.Delete(r.Context(), userID, projectID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "プロジェクトを削除しました。"})
}

// toProjectResponse はmodel.ProjectからAPIレスポンスに変換する。
func toProjectResponse(project *model.Project) projectResponse {
	return projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		OwnerUserID: project.OwnerUserID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// Create は指定プロジェクト配下にタスクを作成する。親プロジェクトの所有チェックを行う。
	Create(ctx context.Context, callerUserID, projectID, title, description, status string, assignedUserID *string) (*model.Task, error)
	// ListByProject は指定プロジェクト配下のタスク一覧を担当ユーザー付きで返す。
	ListByProject(ctx context.Context, callerUserID, projectID string) ([]model.TaskWithAssignee, error)
	// Update はタスクを部分更新する。親プロジェクトの所有チェックを行う。
	Update(ctx context.Context, callerUserID, taskID string, upd model.TaskUpdate) (*model.Task, error)
	// Delete はタスクを削除する。親プロジェクトの所有チェックを行う。
	Delete(ctx context.Context, callerUserID, taskID string) error
	// Filter は等値条件に一致するタスクを全プロジェクト横断で返す。
	Filter(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// taskResponse はタスク情報のAPIレスポンス。
type taskResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	ProjectID      string    `json:"project_id"`
	AssignedUserID *string   `json:"assigned_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// taskWithAssigneeResponse はタスクと担当ユーザーのAPIレスポンス。
// 担当者未割り当ての場合、assigned_userはnull。
type taskWithAssigneeResponse struct {
	taskResponse
	AssignedUser *userResponse `json:"assigned_user"`
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	AssignedUserID *string `json:"assigned_user_id"`
}

// updateTaskRequest はタスク更新リクエストのボディ。
// 省略されたフィールドは変更されない。
type updateTaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
	AssignedUserID *string `json:"assigned_user_id"`
}

// Create は指定プロジェクト配下にタスクを作成する。
// POST /api/projects/:projectId/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectId")

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "titleは必須です。"})
		return
	}

	task, err := h.service.Create(r.Context(), userID, projectID, req.Title, req.Description, req.Status, req.AssignedUserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

// List は指定プロジェクト配下のタスク一覧を担当ユーザー付きで取得する。
// GET /api/projects/:projectId/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectId")

	tasks, err := h.service.ListByProject(r.Context(), userID, projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]taskWithAssigneeResponse, len(tasks))
	for i, t := range tasks {
		results[i] = taskWithAssigneeResponse{
			taskResponse: toTaskResponse(&t.Task),
		}
		if t.AssignedUser != nil {
			u := toUserResponse(t.AssignedUser)
			results[i].AssignedUser = &u
		}
	}
	writeJSON(w, http.StatusOK, results)
}

// Update はタスクを部分更新する。
// PUT /api/tasks/:id
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	task, err := h.service.Update(r.Context(), userID, taskID, model.TaskUpdate{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		AssignedUserID: req.AssignedUserID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// Delete はタスクを削除する。
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "タスクを削除しました。"})
}

// Filter はクエリパラメータの等値条件でタスクを全プロジェクト横断検索する。
// GET /api/tasks?status=&assignedUserId=
// 指定されなかったパラメータの条件は無視される。
func (h *TaskHandler) Filter(w http.ResponseWriter, r *http.Request) {
	filter := model.TaskFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	if assignedUserID := r.URL.Query().Get("assignedUserId"); assignedUserID != "" {
		filter.AssignedUserID = &assignedUserID
	}

	tasks, err := h.service.Filter(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]taskResponse, len(tasks))
	for i := range tasks {
		results[i] = toTaskResponse(&tasks[i])
	}
	writeJSON(w, http.StatusOK, results)
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(task *model.Task) taskResponse {
	return taskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		ProjectID:      task.ProjectID,
		AssignedUserID: task.AssignedUserID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

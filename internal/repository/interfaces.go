// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrDuplicateEmail はusers.emailの一意制約違反を表す。
// 存在チェックとINSERTの間のレースでも重複を検出できるよう、
// ドライバのエラーコードから変換して返す。
var ErrDuplicateEmail = errors.New("email already exists")

// ErrNotFound は更新・削除対象のレコードが存在しないことを表す。
var ErrNotFound = errors.New("record not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。email重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを作成日時昇順で返す。
	List(ctx context.Context) ([]model.User, error)

	// Update はユーザーレコード全体を上書き更新する。
	// 対象が存在しない場合はErrNotFound、email重複時はErrDuplicateEmailを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error

	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// ListByOwnerID は指定ユーザーが所有するプロジェクト一覧を、
	// 各プロジェクト配下のタスク付きで返す。
	ListByOwnerID(ctx context.Context, ownerUserID string) ([]model.ProjectWithTasks, error)

	// Update はプロジェクトレコード全体を上書き更新する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, project *model.Project) error

	// DeleteByID は指定IDのプロジェクトを削除する。配下のタスクはCASCADE削除される。
	// 対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByProjectID は指定プロジェクト配下のタスク一覧を担当ユーザー付きで返す。
	// 担当ユーザーはusersテーブルとのLEFT JOINで取得する。
	ListByProjectID(ctx context.Context, projectID string) ([]model.TaskWithAssignee, error)

	// Update はタスクレコード全体を上書き更新する。対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, task *model.Task) error

	// DeleteByID は指定IDのタスクを削除する。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error

	// Filter は指定された等値条件に一致するタスクを全プロジェクト横断で返す。
	// nilの条件は無視される。
	Filter(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
}

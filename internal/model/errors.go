// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はサービス層が返すエラーの分類を表す。
// Codeはハンドラー層でのHTTPステータス決定にのみ使用し、
// クライアントへのレスポンスにはMessageフィールドだけを含める。
type APIError struct {
	Code    string // エラーコード（内部分類用）
	Message string // クライアント向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeProjectNotFound    = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
)

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
// 登録時と、別ユーザーが使用中のメールアドレスへの更新時に返される。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateEmail,
		Message: "このメールアドレスは既に使用されています。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "ユーザーが見つかりません。",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
// 呼び出し元が所有していないプロジェクトに対しても同じエラーを返し、
// 他ユーザーのプロジェクトの存在を漏らさない。
func NewProjectNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeProjectNotFound,
		Message: "プロジェクトが見つかりません。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeTaskNotFound,
		Message: "タスクが見つかりません。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// ログイン時のパスワード不一致で返される。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "メールアドレスまたはパスワードが正しくありません。",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
// Authorizationヘッダーが存在しないリクエストに対して返される。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: "認証が必要です。トークンを指定してください。",
	}
}

// NewInvalidTokenError は無効トークンエラーを生成する。
// 署名不正または期限切れのトークンに対して返される。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidToken,
		Message: "トークンが無効または期限切れです。",
	}
}

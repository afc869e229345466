// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
// 公開用の射影はハンドラー層のレスポンス型で定義する。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate はユーザーの部分更新を表す。
// nilのフィールドは変更せず、既存の値を維持する。
// Passwordは平文で受け取り、サービス層でハッシュ化してから保存する。
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

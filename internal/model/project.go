// Package model はドメインモデルを定義する。
package model

import "time"

// Project はユーザーが所有するプロジェクトを表す。
// OwnerUserIDは作成時の認証済みユーザーIDが設定され、以後変更されない。
type Project struct {
	ID          string
	Name        string
	Description string
	Status      string
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectWithTasks はプロジェクトと配下のタスク一覧を結合したモデル。
// プロジェクト一覧APIで使用される。
type ProjectWithTasks struct {
	Project
	Tasks []Task
}

// ProjectUpdate はプロジェクトの部分更新を表す。
// nilのフィールドは変更せず、既存の値を維持する。
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
}

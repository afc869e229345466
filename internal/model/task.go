// Package model はドメインモデルを定義する。
package model

import "time"

// Task はプロジェクト配下のタスクを表す。
// AssignedUserIDは任意で、担当者が未割り当ての場合はnil。
type Task struct {
	ID             string
	Title          string
	Description    string
	Status         string
	ProjectID      string
	AssignedUserID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskWithAssignee はタスクと担当ユーザーを結合したモデル。
// usersテーブルとLEFT JOINして取得され、担当者未割り当ての場合AssignedUserはnil。
type TaskWithAssignee struct {
	Task
	AssignedUser *User
}

// TaskUpdate はタスクの部分更新を表す。
// nilのフィールドは変更せず、既存の値を維持する。
type TaskUpdate struct {
	Title          *string
	Description    *string
	Status         *string
	AssignedUserID *string
}

// TaskFilter はタスク横断検索の等値フィルタを表す。
// nilの条件は無視され、指定された条件のみがAND結合される。
type TaskFilter struct {
	Status         *string
	AssignedUserID *string
}

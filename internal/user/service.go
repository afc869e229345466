// Package user はユーザー管理と認証のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// TokenIssuer はトークン発行インターフェース。
// auth.TokenServiceの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// AuthRecorder は認証試行のメトリクス記録インターフェース。
type AuthRecorder interface {
	RecordAuthAttempt(success bool)
}

// Service はユーザー管理のサービス層。
// 登録・ログイン・CRUDのビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	recorder   AuthRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnil可（メトリクス収集なしで動作する）。
func NewService(userRepo repository.UserRepository, tokens TokenIssuer, bcryptCost int, recorder AuthRecorder) *Service {
	return &Service{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		recorder:   recorder,
	}
}

// Register は新規ユーザーを登録し、発行したトークンと作成されたユーザーを返す。
// メールアドレスが既に使用されている場合はDuplicateEmailエラーを返す。
func (s *Service) Register(ctx context.Context, name, email, password string) (string, *model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		s.recordAuth(false)
		return "", nil, model.NewDuplicateEmailError()
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 存在チェックとINSERTの間のレースは一意制約違反として現れる
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.recordAuth(false)
			return "", nil, model.NewDuplicateEmailError()
		}
		return "", nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	s.recordAuth(true)
	return token, user, nil
}

// Login は認証情報を検証し、発行したトークンとユーザーを返す。
// メールアドレスが未登録の場合はNotFound、パスワード不一致の場合はInvalidCredentialsを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		s.recordAuth(false)
		return "", nil, model.NewUserNotFoundError()
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.recordAuth(false)
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	s.recordAuth(true)
	return token, user, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はNotFoundを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Update はユーザーを部分更新する。nilのフィールドは既存の値を維持する。
// 指定されたメールアドレスが別ユーザーに使用されている場合はDuplicateEmailを返す。
// パスワードは指定された場合のみ再ハッシュされる。
func (s *Service) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if upd.Email != nil {
		// 別ユーザーが同じメールアドレスを使用していないか確認する
		other, err := s.userRepo.FindByEmail(ctx, *upd.Email)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
		}
		if other != nil && other.ID != id {
			return nil, model.NewDuplicateEmailError()
		}
		user.Email = *upd.Email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, model.NewDuplicateEmailError()
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	return user, nil
}

// Delete は指定IDのユーザーを削除する。存在しない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("user deleted", slog.String("user_id", id))
	return nil
}

// recordAuth は認証試行をメトリクスに記録する。recorder未設定の場合は何もしない。
func (s *Service) recordAuth(success bool) {
	if s.recorder != nil {
		s.recorder.RecordAuthAttempt(success)
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/model"
)

// mockUserService はUserServiceInterfaceの関数フィールド型モック。
type mockUserService struct {
	registerFn func(ctx context.Context, name, email, password string) (string, *model.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *model.User, error)
	listFn     func(ctx context.Context) ([]model.User, error)
	getFn      func(ctx context.Context, id string) (*model.User, error)
	updateFn   func(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockUserService) Register(ctx context.Context, name, email, password string) (string, *model.User, error) {
	return m.registerFn(ctx, name, email, password)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockUserService) List(ctx context.Context) ([]model.User, error) {
	return m.listFn(ctx)
}

func (m *mockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	return m.getFn(ctx, id)
}

func (m *mockUserService) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	return m.updateFn(ctx, id, upd)
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

var _ UserServiceInterface = (*mockUserService)(nil)

// withURLParam はchiのルートコンテキストにURLパラメータを設定したリクエストを返す。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testUser() *model.User {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.User{
		ID:           "user-1",
		Name:         "田中太郎",
		Email:        "tanaka@example.com",
		PasswordHash: "$2a$10$secret-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserHandler_Register(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(_ context.Context, name, email, password string) (string, *model.User, error) {
			if name != "田中太郎" || email != "tanaka@example.com" || password != "password123" {
				t.Errorf("unexpected args: %q %q %q", name, email, password)
			}
			return "issued-token", testUser(), nil
		},
	}
	h := NewUserHandler(svc)

	body := `{"name":"田中太郎","email":"tanaka@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "issued-token" {
		t.Errorf("token = %q, want %q", resp.Token, "issued-token")
	}
	if resp.User["id"] != "user-1" {
		t.Errorf("user.id = %v, want user-1", resp.User["id"])
	}
}

func TestUserHandler_Register_MissingFields(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(context.Context, string, string, string) (string, *model.User, error) {
			t.Fatal("Register should not be called with missing fields")
			return "", nil, nil
		},
	}
	h := NewUserHandler(svc)

	body := `{"name":"田中太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(context.Context, string, string, string) (string, *model.User, error) {
			return "", nil, model.NewDuplicateEmailError()
		},
	}
	h := NewUserHandler(svc)

	body := `{"name":"田中太郎","email":"tanaka@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Register_InvalidJSON(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader([]byte("{invalid")))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Login_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"未登録メールアドレス", model.NewUserNotFoundError(), http.StatusNotFound},
		{"パスワード不一致", model.NewInvalidCredentialsError(), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				loginFn: func(context.Context, string, string) (string, *model.User, error) {
					return "", nil, tt.serviceErr
				},
			}
			h := NewUserHandler(svc)

			body := `{"email":"tanaka@example.com","password":"password123"}`
			req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUserHandler_Login_Success(t *testing.T) {
	svc := &mockUserService{
		loginFn: func(context.Context, string, string) (string, *model.User, error) {
			return "issued-token", testUser(), nil
		},
	}
	h := NewUserHandler(svc)

	body := `{"email":"tanaka@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUserHandler_ResponsesOmitPasswordHash(t *testing.T) {
	// いかなるユーザーレスポンスにもパスワードハッシュを含めない
	svc := &mockUserService{
		getFn: func(_ context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	h := NewUserHandler(svc)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/users/user-1", nil), "id", "user-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var fields map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"password", "password_hash", "PasswordHash"} {
		if _, ok := fields[key]; ok {
			t.Errorf("response must not contain %q field", key)
		}
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Error("response must not contain the password hash value")
	}
}

func TestUserHandler_List(t *testing.T) {
	svc := &mockUserService{
		listFn: func(context.Context) ([]model.User, error) {
			return []model.User{*testUser()}, nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
}

func TestUserHandler_Update_PassesPointerFields(t *testing.T) {
	svc := &mockUserService{
		updateFn: func(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
			if id != "user-1" {
				t.Errorf("id = %q, want user-1", id)
			}
			if upd.Name == nil || *upd.Name != "田中次郎" {
				t.Errorf("upd.Name = %v, want 田中次郎", upd.Name)
			}
			// 省略されたフィールドはnilで渡される
			if upd.Email != nil {
				t.Errorf("upd.Email = %v, want nil", upd.Email)
			}
			if upd.Password != nil {
				t.Errorf("upd.Password = %v, want nil", upd.Password)
			}
			u := testUser()
			u.Name = *upd.Name
			return u, nil
		},
	}
	h := NewUserHandler(svc)

	body := `{"name":"田中次郎"}`
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/users/user-1", strings.NewReader(body)), "id", "user-1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(_ context.Context, id string) error {
			if id != "user-1" {
				t.Errorf("id = %q, want user-1", id)
			}
			return nil
		},
	}
	h := NewUserHandler(svc)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/users/user-1", nil), "id", "user-1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["message"] == "" {
		t.Error("expected confirmation message in response")
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(context.Context, string) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(svc)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/users/unknown", nil), "id", "unknown")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

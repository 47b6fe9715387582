package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletap/api/internal/auth"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
	"github.com/tabletap/api/internal/handler"
	"github.com/tabletap/api/internal/service"
)

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, email, password string) (database.User, error)
	getFn          func(ctx context.Context, id uuid.UUID) (database.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (database.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return database.User{}, service.ErrInvalidCredentials
}

func (m *mockAuthenticator) Get(ctx context.Context, id uuid.UUID) (database.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return database.User{}, service.ErrUserNotFound
}

func setupAuthRouter(users *mockAuthenticator) *chi.Mux {
	h := handler.NewAuthHandler(users, testJWTSecret)
	r := chi.NewRouter()
	r.Route("/auth", h.RegisterRoutes)
	return r
}

func testDBUser(role string) database.User {
	return database.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		FullName:  "Ada Lovelace",
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func TestLogin_HappyPath(t *testing.T) {
	user := testDBUser(enum.RoleWaiter)

	users := &mockAuthenticator{
		authenticateFn: func(ctx context.Context, email, password string) (database.User, error) {
			if email != "ada@example.com" {
				t.Errorf("email: got %q", email)
			}
			if password != "hunter22" {
				t.Errorf("password: got %q", password)
			}
			return user, nil
		},
	}

	router := setupAuthRouter(users)
	rr := doRequest(t, router, "POST", "/auth/login", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "hunter22",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := dataObject(t, rr)
	access, _ := resp["access_token"].(string)
	if access == "" {
		t.Fatal("access_token missing from response")
	}
	claims, err := auth.ValidateToken(testJWTSecret, access)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user_id: got %v, want %v", claims.UserID, user.ID)
	}
	if claims.Role != enum.RoleWaiter {
		t.Errorf("token role: got %v, want WAITER", claims.Role)
	}
	if resp["refresh_token"] == "" || resp["refresh_token"] == nil {
		t.Error("refresh_token missing from response")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	router := setupAuthRouter(&mockAuthenticator{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "wrong",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

func TestRefresh_HappyPath(t *testing.T) {
	user := testDBUser(enum.RoleClient)

	refresh, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	users := &mockAuthenticator{
		getFn: func(ctx context.Context, id uuid.UUID) (database.User, error) {
			if id != user.ID {
				t.Errorf("user_id: got %v, want %v", id, user.ID)
			}
			return user, nil
		},
	}

	router := setupAuthRouter(users)
	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": refresh,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := dataObject(t, rr)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("access_token missing from response")
	}
}

func TestRefresh_GarbageToken(t *testing.T) {
	router := setupAuthRouter(&mockAuthenticator{})

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": "not-a-jwt",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

func TestRefresh_UnknownUser(t *testing.T) {
	refresh, err := auth.GenerateRefreshToken(testJWTSecret, uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	router := setupAuthRouter(&mockAuthenticator{})
	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": refresh,
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

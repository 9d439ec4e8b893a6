package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campushub/registrar/internal/auth"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	getByIDFn func(ctx context.Context, id int64) (user.User, error)
}

func (f *fakeResolver) GetByID(ctx context.Context, id int64) (user.User, error) {
	return f.getByIDFn(ctx, id)
}

func protectedRouter(mw *middlewares.AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"msg": "ok", "role": role})
	})

	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRequireAuth(t *testing.T) {
	manager := auth.NewManager("test-secret-key", time.Hour)

	token, err := manager.GenerateAccessToken(7, "jdoe@example.com", user.RoleStudent)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	liveUser := &fakeResolver{
		getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
			return user.User{ID: id, Email: "jdoe@example.com", Role: user.RoleStudent}, nil
		},
	}

	tests := []struct {
		name           string
		resolver       middlewares.UserResolver
		authHeader     string
		wantStatusCode int
	}{
		{"no_header", liveUser, "", http.StatusUnauthorized},
		{"not_bearer", liveUser, "Basic abc123", http.StatusUnauthorized},
		{"empty_token", liveUser, "Bearer ", http.StatusUnauthorized},
		{"garbage_token", liveUser, "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid_token", liveUser, "Bearer " + token, http.StatusOK},
		{
			name: "deleted_account",
			resolver: &fakeResolver{
				getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
					return user.User{}, user.ErrNotFound
				},
			},
			authHeader:     "Bearer " + token,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(middlewares.NewAuthMiddleware(manager, tt.resolver))

			w := get(r, tt.authHeader)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireAuthRejectsTokenSignedElsewhere(t *testing.T) {
	manager := auth.NewManager("test-secret-key", time.Hour)
	other := auth.NewManager("another-secret", time.Hour)

	token, err := other.GenerateAccessToken(7, "jdoe@example.com", user.RoleStudent)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	resolver := &fakeResolver{
		getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
			t.Error("resolver should not be reached with a bad signature")
			return user.User{}, user.ErrNotFound
		},
	}

	r := protectedRouter(middlewares.NewAuthMiddleware(manager, resolver))

	w := get(r, "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}
}

// The stored role wins over the role baked into the token: a demoted
// admin loses access as soon as the row changes, not at next login.
func TestRequireAuthUsesStoredRole(t *testing.T) {
	manager := auth.NewManager("test-secret-key", time.Hour)

	token, err := manager.GenerateAccessToken(7, "jdoe@example.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	resolver := &fakeResolver{
		getByIDFn: func(ctx context.Context, id int64) (user.User, error) {
			return user.User{ID: id, Email: "jdoe@example.com", Role: user.RoleStudent}, nil
		},
	}

	r := gin.New()
	mw := middlewares.NewAuthMiddleware(manager, resolver)
	r.GET("/admin-only", mw.RequireAuth(), mw.RequireRole(user.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
	}
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkowalczyk/libreserve/internal/auth"
	"github.com/mkowalczyk/libreserve/internal/domain/user"
	"github.com/mkowalczyk/libreserve/internal/http/handlers"
	"github.com/mkowalczyk/libreserve/internal/security"
)

type fakeUsersRepo struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, u user.User) error

	created []user.User
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) error {
	f.created = append(f.created, u)
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func testJWT() *auth.Manager {
	return auth.NewManager("test-secret-key", time.Hour)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFn       func(ctx context.Context, u user.User) error
		wantStatusCode int
		wantBroadcasts int
	}{
		{
			name:           "success",
			body:           `{"name": "Ada Lovelace", "email": "ada@example.com", "phoneNumber": "0901946736", "password": "hunter22"}`,
			wantStatusCode: http.StatusOK,
			wantBroadcasts: 1,
		},
		{
			name: "email_taken",
			body: `{"name": "Ada Lovelace", "email": "ada@example.com", "password": "hunter22"}`,
			createFn: func(ctx context.Context, u user.User) error {
				return user.ErrEmailTaken
			},
			wantStatusCode: http.StatusBadRequest,
			wantBroadcasts: 0,
		},
		{
			name:           "invalid_email",
			body:           `{"name": "Ada", "email": "nope", "password": "hunter22"}`,
			wantStatusCode: http.StatusBadRequest,
			wantBroadcasts: 0,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{createFn: tt.createFn}
			notifier := &fakeNotifier{}

			h := handlers.NewAuthHandler(repo, repo, testJWT(), notifier)

			r := setupRouter(http.MethodPost, "/auth/register", nil, h.Register)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if len(notifier.broadcasts) != tt.wantBroadcasts {
				t.Fatalf("got %d admin broadcasts, want %d", len(notifier.broadcasts), tt.wantBroadcasts)
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			u := repo.created[0]

			if u.IsApproved {
				t.Fatalf("new account must start unapproved")
			}
			if u.IsAdmin {
				t.Fatalf("new account must not be admin")
			}

			if !strings.Contains(notifier.broadcasts[0].message, "Ada Lovelace") {
				t.Fatalf("broadcast missing new user name: %q", notifier.broadcasts[0].message)
			}

			var resp struct {
				Token  string `json:"token"`
				UserID string `json:"userId"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if resp.Token == "" || resp.UserID != u.ID {
				t.Fatalf("register response incomplete: %+v", resp)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}

	approved := user.User{
		ID:           newUUID(),
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: hash,
		IsApproved:   true,
	}

	pending := approved
	pending.IsApproved = false

	admin := approved
	admin.ID = newUUID()
	admin.IsAdmin = true

	tests := []struct {
		name           string
		body           string
		stored         user.User
		storedErr      error
		wantStatusCode int
		wantIsAdmin    bool
	}{
		{
			name:           "success",
			body:           `{"email": "ada@example.com", "password": "hunter22"}`,
			stored:         approved,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "admin_flag_in_response",
			body:           `{"email": "ada@example.com", "password": "hunter22"}`,
			stored:         admin,
			wantStatusCode: http.StatusOK,
			wantIsAdmin:    true,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "nobody@example.com", "password": "hunter22"}`,
			storedErr:      user.ErrNotFound,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "wrong_password",
			body:           `{"email": "ada@example.com", "password": "wrong"}`,
			stored:         approved,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "pending_approval",
			body:           `{"email": "ada@example.com", "password": "hunter22"}`,
			stored:         pending,
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{
				getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
					if tt.storedErr != nil {
						return user.User{}, tt.storedErr
					}
					return tt.stored, nil
				},
			}

			h := handlers.NewAuthHandler(repo, repo, testJWT(), &fakeNotifier{})

			r := setupRouter(http.MethodPost, "/auth/login", nil, h.Login)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Token   string `json:"token"`
				IsAdmin bool   `json:"isAdmin"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if resp.Token == "" {
				t.Fatalf("login response missing token")
			}

			if resp.IsAdmin != tt.wantIsAdmin {
				t.Fatalf("isAdmin = %v, want %v", resp.IsAdmin, tt.wantIsAdmin)
			}
		})
	}
}

// register-then-approve-then-login against one in-memory directory
func TestApprovalGateScenario(t *testing.T) {
	store := map[string]user.User{}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			u, ok := store[email]
			if !ok {
				return user.User{}, user.ErrNotFound
			}
			return u, nil
		},
		createFn: func(ctx context.Context, u user.User) error {
			store[u.Email] = u
			return nil
		},
	}

	h := handlers.NewAuthHandler(repo, repo, testJWT(), &fakeNotifier{})

	register := setupRouter(http.MethodPost, "/auth/register", nil, h.Register)
	login := setupRouter(http.MethodPost, "/auth/login", nil, h.Login)

	doJSON := func(r http.Handler, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := doJSON(register, "/auth/register", `{"name": "Ada Lovelace", "email": "ada@example.com", "password": "hunter22"}`); w.Code != http.StatusOK {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	loginBody := `{"email": "ada@example.com", "password": "hunter22"}`

	if w := doJSON(login, "/auth/login", loginBody); w.Code != http.StatusForbidden {
		t.Fatalf("login before approval = %d, want 403", w.Code)
	}

	// admin approves
	u := store["ada@example.com"]
	u.IsApproved = true
	store["ada@example.com"] = u

	w := doJSON(login, "/auth/login", loginBody)
	if w.Code != http.StatusOK {
		t.Fatalf("login after approval = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token after approved login: %v %s", err, w.Body.String())
	}
}

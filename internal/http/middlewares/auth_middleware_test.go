package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/auth"
	"github.com/mkowalczyk/libreserve/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRequireAuth(t *testing.T) {
	mgr := auth.NewManager("test-secret-key", time.Hour)
	mw := middlewares.NewAuthMiddleware(mgr)

	valid, err := mgr.GenerateAccessToken("user-1", "Ada Lovelace", false)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	expiredMgr := auth.NewManager("test-secret-key", -time.Hour)
	expired, err := expiredMgr.GenerateAccessToken("user-1", "Ada Lovelace", false)
	if err != nil {
		t.Fatalf("mint expired token: %v", err)
	}

	otherSecret, err := auth.NewManager("some-other-secret", time.Hour).GenerateAccessToken("user-1", "Ada Lovelace", false)
	if err != nil {
		t.Fatalf("mint foreign token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
	}{
		{name: "valid", header: "Bearer " + valid, wantStatusCode: http.StatusOK},
		{name: "missing_header", header: "", wantStatusCode: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc", wantStatusCode: http.StatusUnauthorized},
		{name: "empty_token", header: "Bearer ", wantStatusCode: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", wantStatusCode: http.StatusUnauthorized},
		{name: "expired_token", header: "Bearer " + expired, wantStatusCode: http.StatusUnauthorized},
		{name: "wrong_secret", header: "Bearer " + otherSecret, wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/protected", mw.RequireAuth(), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireAuthSeedsIdentity(t *testing.T) {
	mgr := auth.NewManager("test-secret-key", time.Hour)
	mw := middlewares.NewAuthMiddleware(mgr)

	token, err := mgr.GenerateAccessToken("user-42", "Grace Hopper", true)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotID, gotName string
	var gotAdmin bool

	r := gin.New()
	r.GET("/whoami", mw.RequireAuth(), func(c *gin.Context) {
		gotID, _ = middlewares.UserIDFromContext(c)
		gotName, _ = middlewares.NameFromContext(c)
		gotAdmin = middlewares.IsAdminFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	if gotID != "user-42" || gotName != "Grace Hopper" || !gotAdmin {
		t.Fatalf("identity not seeded: id=%q name=%q admin=%v", gotID, gotName, gotAdmin)
	}
}

func TestRequireAdmin(t *testing.T) {
	mgr := auth.NewManager("test-secret-key", time.Hour)
	mw := middlewares.NewAuthMiddleware(mgr)

	adminToken, err := mgr.GenerateAccessToken("admin-1", "Admin", true)
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}

	userToken, err := mgr.GenerateAccessToken("user-1", "Ada Lovelace", false)
	if err != nil {
		t.Fatalf("mint user token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
	}{
		{name: "admin_passes", header: "Bearer " + adminToken, wantStatusCode: http.StatusOK},
		{name: "non_admin_forbidden", header: "Bearer " + userToken, wantStatusCode: http.StatusForbidden},
		{name: "anonymous_unauthorized", header: "", wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", mw.RequireAuth(), mw.RequireAdmin(), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// RequireAdmin without RequireAuth first: missing identity is a 401,
// not a 403.
func TestRequireAdminWithoutIdentity(t *testing.T) {
	mw := middlewares.NewAuthMiddleware(auth.NewManager("test-secret-key", time.Hour))

	r := gin.New()
	r.GET("/admin", mw.RequireAdmin(), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

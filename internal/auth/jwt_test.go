package auth_test

import (
	"testing"
	"time"

	"github.com/mkowalczyk/libreserve/internal/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := auth.NewManager("test-secret-key", time.Hour)

	token, err := mgr.GenerateAccessToken("user-1", "Ada Lovelace", true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := mgr.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "user-1" || claims.Name != "Ada Lovelace" || !claims.IsAdmin {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	if claims.JTI == "" {
		t.Fatalf("jti missing")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	mgr := auth.NewManager("test-secret-key", -time.Minute)

	token, err := mgr.GenerateAccessToken("user-1", "Ada Lovelace", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := mgr.VerifyAccessToken(token); err == nil {
		t.Fatalf("expired token verified")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewManager("secret-a", time.Hour).GenerateAccessToken("user-1", "Ada Lovelace", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := auth.NewManager("secret-b", time.Hour).VerifyAccessToken(token); err == nil {
		t.Fatalf("token signed with another secret verified")
	}
}

package auth

import (
	"strings"
	"testing"
	"time"
)

func withSecret(t *testing.T) {
	t.Helper()
	ResetSecretForTests()
	t.Setenv("COOPRA_AUTH_SECRET", "unit-test-secret")
	t.Cleanup(ResetSecretForTests)
}

func TestGenerateAndParseToken(t *testing.T) {
	withSecret(t)

	token, err := GenerateToken(Identity{
		UserID:        "user-1",
		Name:          "Siti",
		Role:          "COOP_ADMIN",
		CooperativeID: "coop-7",
		MemberRole:    "Admin",
	}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Role != "coop_admin" {
		t.Fatalf("role not normalized: %q", claims.Role)
	}
	if claims.MemberRole != "admin" {
		t.Fatalf("member role not normalized: %q", claims.MemberRole)
	}
	id := claims.Identity()
	if id.CooperativeID != "coop-7" || id.Name != "Siti" {
		t.Fatalf("identity round trip broken: %#v", id)
	}
}

func TestGenerateTokenRequiresRole(t *testing.T) {
	withSecret(t)
	if _, err := GenerateToken(Identity{UserID: "u1"}, time.Minute); err == nil {
		t.Fatal("expected error for missing role")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	withSecret(t)
	token, err := GenerateToken(Identity{UserID: "u1", Role: "member"}, time.Millisecond)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ParseAndValidate(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseRejectsTampering(t *testing.T) {
	withSecret(t)
	token, err := GenerateToken(Identity{UserID: "u1", Role: "member"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := ParseAndValidate(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch to fail")
	}
	if err := VerifyPassword("not-a-hash", "x"); err == nil {
		t.Fatal("expected malformed hash to fail")
	}
}

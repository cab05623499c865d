package access

import (
	"errors"
	"testing"

	"github.com/krishkalaria12/snap-album/apperr"
)

func TestRules(t *testing.T) {
	alice := Principal{UserID: 1, Username: "alice", Role: RoleUser}
	root := Principal{UserID: 9, Username: "root", Role: RoleAdmin}
	anon := Principal{}

	cases := []struct {
		name string
		got  Decision
		want Decision
	}{
		{"self reads self", SelfOrAdmin(alice, 1), Authorized},
		{"user reads other user", SelfOrAdmin(alice, 2), Forbidden},
		{"admin reads other user", SelfOrAdmin(root, 2), Authorized},
		{"owner edits own photo", OwnerOnly(alice, 1), Authorized},
		{"owner edits foreign photo", OwnerOnly(alice, 2), Forbidden},
		{"admin has no override on photos", OwnerOnly(root, 1), Forbidden},
		{"admin lists users", AdminOnly(root), Authorized},
		{"user lists users", AdminOnly(alice), Forbidden},
		{"anonymous owner zero", OwnerOnly(anon, 0), Forbidden},
		{"anonymous admin role", AdminOnly(Principal{Role: RoleAdmin}), Forbidden},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestDecisionErr(t *testing.T) {
	if err := Authorized.Err("nope"); err != nil {
		t.Fatalf("authorized decision returned %v", err)
	}
	err := Forbidden.Err("Forbidden")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden kind, got %v", err)
	}
	if apperr.MessageOf(err, "") != "Forbidden" {
		t.Fatalf("unexpected message %q", apperr.MessageOf(err, ""))
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("admin") != RoleAdmin {
		t.Fatalf("admin not parsed")
	}
	if ParseRole("superuser") != RoleUser {
		t.Fatalf("unknown roles must fall back to user")
	}
}

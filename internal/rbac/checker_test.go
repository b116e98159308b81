package rbac_test

import (
	"testing"

	"github.com/brightpath/brightpath-lms/internal/rbac"
)

func TestCheckerHas(t *testing.T) {
	c := rbac.NewChecker(nil)

	cases := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "attempt:create", true},
		{"student", "content:author", false},
		{"teacher", "content:author", true},
		{"teacher", "attempt:submit", false},
		{"admin", "anything:at-all", true},
		{"ghost", "content:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := rbac.NewChecker(map[string][]string{"auditor": {"attempt:*"}})
	if !c.Has("auditor", "attempt:view-all") {
		t.Fatal("prefix wildcard should match")
	}
	if c.Has("auditor", "content:view") {
		t.Fatal("prefix wildcard must not match other prefixes")
	}
}

func TestCheckerAny(t *testing.T) {
	c := rbac.NewChecker(nil)
	if !c.Any("teacher", "attempt:view-own", "attempt:view-all") {
		t.Fatal("teacher should satisfy view-all")
	}
	if c.Any("student", "content:author", "users:list") {
		t.Fatal("student satisfies neither")
	}
}

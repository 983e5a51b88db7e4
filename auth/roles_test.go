package auth_test

import (
	"reflect"
	"testing"

	"github.com/jiayueytl/malaymeta-eval/auth"
)

func TestRolesMembership(t *testing.T) {

	roles := auth.NewRoles(
		[]string{"Bob", " carol ", "", "dave"},
		[]string{"ZARA", "dave"}, // dave is in both sets
	)

	if !roles.IsQa1("bob") {
		t.Fatal("expected bob to be qa1")
	}
	if !roles.IsQa1("BOB") {
		t.Fatal("expected role checks to be case-insensitive")
	}
	if !roles.IsQa2("zara") {
		t.Fatal("expected zara to be qa2")
	}
	if roles.IsQa2("bob") {
		t.Fatal("bob is not qa2")
	}
	if !roles.IsQaUser("carol") || !roles.IsQaUser("zara") {
		t.Fatal("expected qa union to cover both tiers")
	}
	if roles.IsQaUser("alice") {
		t.Fatal("alice has no qa role")
	}

	// overlap is allowed, qa2 takes precedence where both apply
	if !roles.IsQa1("dave") || !roles.IsQa2("dave") {
		t.Fatal("expected dave in both role sets")
	}
}

func TestQa1MembersSorted(t *testing.T) {

	roles := auth.NewRoles([]string{"carol", "bob", "dave"}, nil)

	want := []string{"bob", "carol", "dave"}
	if got := roles.Qa1Members(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestClean(t *testing.T) {
	if got := auth.Clean("  Alice "); got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}
}

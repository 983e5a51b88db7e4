package core_test

import (
	"errors"
	"testing"

	"github.com/jiayueytl/malaymeta-eval/core"
)

func TestAssignQa1(t *testing.T) {

	db, mem := newCoreDB()
	seedTask(mem, "t1", 1, "alice")
	seedTask(mem, "t2", 2, "alice")
	seedTask(mem, "t3", 3, "dan")

	assigned, err := db.AssignQa1("zara", []string{"t1", "t2", "t3"}, "Bob")
	if err != nil {
		t.Fatalf("AssignQa1 failed: %v", err)
	}
	if assigned != 3 {
		t.Fatalf("expected 3 assigned, got %d", assigned)
	}

	groups, err := db.ListAssignedGroupedMasked("bob")
	if err != nil {
		t.Fatalf("ListAssignedGroupedMasked failed: %v", err)
	}
	var total int
	for _, g := range groups {
		total += len(g.Tasks)
	}
	if total != 3 {
		t.Fatalf("expected bob to see 3 assigned tasks, got %d", total)
	}

	// reassignment overwrites
	if _, err := db.AssignQa1("zara", []string{"t1"}, "carol"); err != nil {
		t.Fatalf("reassignment failed: %v", err)
	}
	stored, _ := mem.GetTask("t1")
	if stored.Qa1Username != "carol" {
		t.Fatalf("expected carol, got %q", stored.Qa1Username)
	}
}

func TestAssignQa1Forbidden(t *testing.T) {

	db, mem := newCoreDB()
	seedTask(mem, "t1", 1, "alice")

	// neither annotators nor qa1 users may assign, however valid the input
	for _, requester := range []string{"alice", "bob"} {
		if _, err := db.AssignQa1(requester, []string{"t1"}, "carol"); !errors.Is(err, core.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", requester, err)
		}
	}
}

func TestAssignQa1InvalidInput(t *testing.T) {

	db, _ := newCoreDB()

	if _, err := db.AssignQa1("zara", nil, "bob"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty ids, got %v", err)
	}
	if _, err := db.AssignQa1("zara", []string{"t1"}, "  "); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty username, got %v", err)
	}
}

package planner

import (
	"errors"
	"fmt"
	"testing"
)

func newDoc(ids ...string) *Document {
	d := &Document{}
	for _, id := range ids {
		d.Add(Node{ID: id, Topic: "topic-" + id})
	}
	return d
}

func TestAddRejectsDuplicateID(t *testing.T) {
	d := newDoc("a")
	if err := d.Add(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	d := newDoc("a")

	node, _ := d.Node("a")
	if node.Status != StatusPlanned {
		t.Fatalf("new node should be planned, got %s", node.Status)
	}

	// Completing straight from planned must fail
	err := d.Complete("a", NodeResult{TotalQuestions: 10, CorrectAnswers: 10})
	if !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}

	if err := d.Start("a"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	// Starting twice must fail
	if err := d.Start("a"); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition on double start, got %v", err)
	}

	if err := d.Complete("a", NodeResult{TotalQuestions: 10, CorrectAnswers: 6, WrongAnswers: 3, EmptyAnswers: 1, Duration: 600}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	node, _ = d.Node("a")
	if node.Status != StatusCompleted || node.Result == nil || node.Result.CorrectAnswers != 6 {
		t.Fatalf("unexpected node after complete: %+v", node)
	}
}

func TestCompleteRejectsMismatchedCounts(t *testing.T) {
	d := newDoc("a")
	d.Start("a")

	err := d.Complete("a", NodeResult{TotalQuestions: 10, CorrectAnswers: 6, WrongAnswers: 3, EmptyAnswers: 2})
	if !errors.Is(err, ErrResultMismatch) {
		t.Fatalf("expected ErrResultMismatch, got %v", err)
	}

	// Failed completion must not advance the state machine
	node, _ := d.Node("a")
	if node.Status != StatusInProgress {
		t.Fatalf("status should remain in_progress, got %s", node.Status)
	}
}

func TestTrashIsBoundedFIFO(t *testing.T) {
	ids := []string{"n1", "n2", "n3", "n4", "n5", "n6"}
	d := newDoc(ids...)

	for _, id := range ids {
		if err := d.Delete(id); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
	}

	if len(d.Trash) != TrashCapacity {
		t.Fatalf("trash should hold %d nodes, got %d", TrashCapacity, len(d.Trash))
	}
	// n1 was evicted; n2..n6 remain in insertion order
	for i, want := range []string{"n2", "n3", "n4", "n5", "n6"} {
		if d.Trash[i].ID != want {
			t.Errorf("trash[%d] = %s, want %s", i, d.Trash[i].ID, want)
		}
	}

	if err := d.Restore("n1"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("evicted node should not be restorable, got %v", err)
	}
}

func TestRestoreIsVerbatim(t *testing.T) {
	d := newDoc("a", "b")
	d.Link("a", "b")
	d.Start("b")

	if err := d.Delete("b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := d.Node("b"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("deleted node still live: %v", err)
	}

	if err := d.Restore("b"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	node, err := d.Node("b")
	if err != nil {
		t.Fatalf("restored node missing: %v", err)
	}
	if node.Status != StatusInProgress {
		t.Fatalf("restore changed status to %s", node.Status)
	}
	// The link from a survived the delete/restore round trip
	a, _ := d.Node("a")
	if a.NextSessionID == nil || *a.NextSessionID != "b" {
		t.Fatalf("link from a lost: %+v", a)
	}
}

func TestLinkRejectsSelfAndCycles(t *testing.T) {
	d := newDoc("a", "b", "c")

	if err := d.Link("a", "a"); !errors.Is(err, ErrSelfLink) {
		t.Fatalf("expected ErrSelfLink, got %v", err)
	}

	if err := d.Link("a", "b"); err != nil {
		t.Fatalf("link a→b: %v", err)
	}
	if err := d.Link("b", "c"); err != nil {
		t.Fatalf("link b→c: %v", err)
	}

	// Direct two-node cycle
	if err := d.Link("b", "a"); !errors.Is(err, ErrCyclicLink) {
		t.Fatalf("expected ErrCyclicLink for b→a, got %v", err)
	}
	// Cycle through a longer chain
	if err := d.Link("c", "a"); !errors.Is(err, ErrCyclicLink) {
		t.Fatalf("expected ErrCyclicLink for c→a, got %v", err)
	}

	// Relinking away from the chain is fine
	if err := d.Unlink("a"); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if err := d.Link("c", "a"); err != nil {
		t.Fatalf("link c→a after unlink: %v", err)
	}
}

func TestAutoLayoutChains(t *testing.T) {
	d := newDoc("a", "b", "c", "solo")
	d.Link("a", "b")
	d.Link("b", "c")

	d.AutoLayout()

	get := func(id string) *Node {
		n, err := d.Node(id)
		if err != nil {
			t.Fatalf("node %s: %v", id, err)
		}
		return n
	}

	// Chain a→b→c lays out by depth on one row
	a, b, c := get("a"), get("b"), get("c")
	if a.X != 0 || b.X != LayoutHorizontalGap || c.X != 2*LayoutHorizontalGap {
		t.Errorf("chain columns wrong: %v %v %v", a.X, b.X, c.X)
	}
	if a.Y != b.Y || b.Y != c.Y {
		t.Errorf("chain rows differ: %v %v %v", a.Y, b.Y, c.Y)
	}

	// The unlinked node is its own root on another row
	solo := get("solo")
	if solo.X != 0 {
		t.Errorf("solo column = %v, want 0", solo.X)
	}
	if solo.Y == a.Y {
		t.Errorf("solo shares a row with the chain")
	}
}

func TestAutoLayoutTerminatesOnCycle(t *testing.T) {
	// A cycle can only enter a document through a wholesale write; layout
	// must not loop on it.
	b := "b"
	a := "a"
	d := &Document{Nodes: []Node{
		{ID: "a", Status: StatusPlanned, NextSessionID: &b},
		{ID: "b", Status: StatusPlanned, NextSessionID: &a},
	}}

	d.AutoLayout() // must terminate

	for _, n := range d.Nodes {
		if n.X != 0 {
			t.Errorf("cycle member %s should be laid out as a root, X=%v", n.ID, n.X)
		}
	}
}

func TestNormalizeTruncatesTrash(t *testing.T) {
	d := &Document{}
	for i := 0; i < 9; i++ {
		d.Trash = append(d.Trash, Node{ID: fmt.Sprintf("t%d", i)})
	}
	d.Normalize()

	if len(d.Trash) != TrashCapacity {
		t.Fatalf("trash = %d, want %d", len(d.Trash), TrashCapacity)
	}
	// The newest entries survive
	if d.Trash[0].ID != "t4" || d.Trash[4].ID != "t8" {
		t.Fatalf("wrong survivors: %s..%s", d.Trash[0].ID, d.Trash[4].ID)
	}
}

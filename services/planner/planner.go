// Package planner holds the study-plan canvas document and the operations
// applied to it: node lifecycle, the bounded undo buffer, session linking
// and automatic layout. It is pure logic; persistence of the document is the
// plan handler's concern.
package planner

import (
	"errors"
	"fmt"
)

const (
	// TrashCapacity bounds the undo buffer; eviction is strict FIFO.
	TrashCapacity = 5

	// Auto-layout grid gaps in canvas pixels.
	LayoutHorizontalGap = 260.0
	LayoutVerticalGap   = 140.0
)

var (
	ErrNodeNotFound   = errors.New("plan node not found")
	ErrDuplicateNode  = errors.New("plan node id already exists")
	ErrSelfLink       = errors.New("a session cannot link to itself")
	ErrCyclicLink     = errors.New("link would create a cycle")
	ErrBadTransition  = errors.New("invalid session status transition")
	ErrMissingResult  = errors.New("completing a session requires its result")
	ErrResultMismatch = errors.New("correct, wrong and empty answers must add up to the total")
)

// NodeStatus is the lifecycle state of a planned session.
// Transitions are strictly planned → in_progress → completed.
type NodeStatus string

const (
	StatusPlanned    NodeStatus = "planned"
	StatusInProgress NodeStatus = "in_progress"
	StatusCompleted  NodeStatus = "completed"
)

// NodeResult captures the outcome counters of a completed session node.
type NodeResult struct {
	TotalQuestions int `json:"total_questions"`
	CorrectAnswers int `json:"correct_answers"`
	WrongAnswers   int `json:"wrong_answers"`
	EmptyAnswers   int `json:"empty_answers"`
	Duration       int `json:"duration"` // seconds
}

// Validate checks the answer-count invariant.
func (r NodeResult) Validate() error {
	if r.CorrectAnswers+r.WrongAnswers+r.EmptyAnswers != r.TotalQuestions {
		return ErrResultMismatch
	}
	return nil
}

// Node is a single planned study session on the canvas.
type Node struct {
	ID              string      `json:"id"`
	CourseID        *uint       `json:"course_id,omitempty"`
	Topic           string      `json:"topic"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	TargetQuestions int         `json:"target_questions"`
	PlannedDuration int         `json:"planned_duration"` // seconds
	Status          NodeStatus  `json:"status"`
	Result          *NodeResult `json:"result,omitempty"`
	NextSessionID   *string     `json:"next_session_id,omitempty"`
}

// Document is one user's whole canvas: live nodes plus the undo buffer.
type Document struct {
	Nodes []Node `json:"nodes"`
	Trash []Node `json:"trash,omitempty"`
}

// Normalize brings a document written wholesale (e.g. via a full PUT) back
// within invariants: trash truncated to capacity, empty statuses defaulted.
func (d *Document) Normalize() {
	for i := range d.Nodes {
		if d.Nodes[i].Status == "" {
			d.Nodes[i].Status = StatusPlanned
		}
	}
	if len(d.Trash) > TrashCapacity {
		d.Trash = d.Trash[len(d.Trash)-TrashCapacity:]
	}
}

func (d *Document) find(id string) int {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns the live node with the given id.
func (d *Document) Node(id string) (*Node, error) {
	i := d.find(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return &d.Nodes[i], nil
}

// Add inserts a new node. Fresh nodes always start out planned.
func (d *Document) Add(node Node) error {
	if d.find(node.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	if node.Status == "" {
		node.Status = StatusPlanned
	}
	d.Nodes = append(d.Nodes, node)
	return nil
}

// Start moves a node from planned to in_progress.
func (d *Document) Start(id string) error {
	node, err := d.Node(id)
	if err != nil {
		return err
	}
	if node.Status != StatusPlanned {
		return fmt.Errorf("%w: %s is %s", ErrBadTransition, id, node.Status)
	}
	node.Status = StatusInProgress
	return nil
}

// Complete moves a node from in_progress to completed and records its
// result. The answer counters must satisfy the sum invariant.
func (d *Document) Complete(id string, result NodeResult) error {
	node, err := d.Node(id)
	if err != nil {
		return err
	}
	if node.Status != StatusInProgress {
		return fmt.Errorf("%w: %s is %s", ErrBadTransition, id, node.Status)
	}
	if err := result.Validate(); err != nil {
		return err
	}
	node.Status = StatusCompleted
	node.Result = &result
	return nil
}

// Delete removes a node and pushes it onto the undo buffer. At capacity the
// oldest trashed node is evicted. Links pointing at the deleted node are
// left in place so a restore brings the graph back verbatim.
func (d *Document) Delete(id string) error {
	i := d.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	node := d.Nodes[i]
	d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)

	d.Trash = append(d.Trash, node)
	if len(d.Trash) > TrashCapacity {
		d.Trash = d.Trash[1:]
	}
	return nil
}

// Restore re-inserts a trashed node verbatim.
func (d *Document) Restore(id string) error {
	for i := range d.Trash {
		if d.Trash[i].ID == id {
			node := d.Trash[i]
			d.Trash = append(d.Trash[:i], d.Trash[i+1:]...)
			return d.Add(node)
		}
	}
	return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

// Link sets src's single outgoing pointer to dst. Self-loops are refused,
// and so is any link that would close a cycle: the next-pointer chain from
// dst must not lead back to src.
func (d *Document) Link(srcID, dstID string) error {
	if srcID == dstID {
		return ErrSelfLink
	}
	src, err := d.Node(srcID)
	if err != nil {
		return err
	}
	if _, err := d.Node(dstID); err != nil {
		return err
	}

	seen := map[string]bool{srcID: true}
	cur := dstID
	for {
		if seen[cur] {
			return ErrCyclicLink
		}
		seen[cur] = true
		node, err := d.Node(cur)
		if err != nil || node.NextSessionID == nil {
			break // dangling or end of chain
		}
		cur = *node.NextSessionID
	}

	next := dstID
	src.NextSessionID = &next
	return nil
}

// Unlink clears src's outgoing pointer.
func (d *Document) Unlink(srcID string) error {
	src, err := d.Node(srcID)
	if err != nil {
		return err
	}
	src.NextSessionID = nil
	return nil
}

// AutoLayout positions every node on a grid by breadth-first traversal:
// one root per chain (any node with no incoming link), column = depth ×
// horizontal gap, row = root index × vertical gap. A visited set guards the
// walk, so even a document that was PUT with a cycle in it terminates; nodes
// only reachable through a cycle are laid out as extra roots.
func (d *Document) AutoLayout() {
	hasIncoming := make(map[string]bool, len(d.Nodes))
	for i := range d.Nodes {
		if next := d.Nodes[i].NextSessionID; next != nil {
			hasIncoming[*next] = true
		}
	}

	visited := make(map[string]bool, len(d.Nodes))
	row := 0

	place := func(rootID string) {
		depth := 0
		cur := rootID
		for {
			if visited[cur] {
				return
			}
			visited[cur] = true
			node, err := d.Node(cur)
			if err != nil {
				return // dangling pointer into the trash
			}
			node.X = float64(depth) * LayoutHorizontalGap
			node.Y = float64(row) * LayoutVerticalGap
			if node.NextSessionID == nil {
				return
			}
			cur = *node.NextSessionID
			depth++
		}
	}

	for i := range d.Nodes {
		if id := d.Nodes[i].ID; !hasIncoming[id] && !visited[id] {
			place(id)
			row++
		}
	}

	// Leftovers are nodes every one of which has an incoming link, i.e. a
	// cycle written from outside. Treat each as its own root.
	for i := range d.Nodes {
		if id := d.Nodes[i].ID; !visited[id] {
			place(id)
			row++
		}
	}
}

// Package workflow describes the per-turn process graph, renders it as BPMN and runs turns on Zeebe.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"frontdesk-workers/internal/intent"
)

type NodeKind string

const (
	NodeStart       NodeKind = "start"
	NodeServiceTask NodeKind = "serviceTask"
	NodeGateway     NodeKind = "exclusiveGateway"
	NodeEnd         NodeKind = "end"
)

const (
	ClassifyTaskType = "classify-intent"
	RouteVariable    = "route"

	startID    = "turn_start"
	classifyID = "classify_intent"
	gatewayID  = "route_intent"
	endID      = "turn_end"
)

type Node struct {
	ID       string
	Name     string
	Kind     NodeKind
	TaskType string
	Retries  int
}

// Edge connects two nodes. Edges leaving a gateway carry either a Condition (the value of the
// gateway's route variable) or Default.
type Edge struct {
	ID        string
	From      string
	To        string
	Condition string
	Default   bool
}

type Graph struct {
	ProcessID     string
	Name          string
	RouteVariable string
	Nodes         []Node
	Edges         []Edge
}

var (
	ErrNoStart          = errors.New("graph has no start node")
	ErrMultipleStarts   = errors.New("graph has more than one start node")
	ErrUnknownNode      = errors.New("edge references unknown node")
	ErrDuplicateNode    = errors.New("duplicate node id")
	ErrUnreachable      = errors.New("node is unreachable from start")
	ErrDeadEnd          = errors.New("non-end node has no outgoing edge")
	ErrGatewayDefault   = errors.New("gateway must have exactly one default flow")
	ErrDuplicateRoute   = errors.New("gateway condition values must be unique")
	ErrMissingCondition = errors.New("gateway flow has neither condition nor default")
	ErrMissingTaskType  = errors.New("service task has no task type")
)

// FrontDesk builds start -> classify -> gateway -> one specialist per handler -> end. The gateway's
// default flow goes to the general receptionist.
func FrontDesk(processID string) *Graph {
	g := &Graph{
		ProcessID:     processID,
		Name:          "Front desk turn",
		RouteVariable: RouteVariable,
	}

	g.Nodes = append(g.Nodes,
		Node{ID: startID, Name: "Caller utterance", Kind: NodeStart},
		Node{ID: classifyID, Name: "Classify intent", Kind: NodeServiceTask, TaskType: ClassifyTaskType, Retries: 1},
		Node{ID: gatewayID, Name: "Route by intent", Kind: NodeGateway},
	)
	g.Edges = append(g.Edges,
		Edge{ID: "flow_start_classify", From: startID, To: classifyID},
		Edge{ID: "flow_classify_route", From: classifyID, To: gatewayID},
	)

	for _, h := range intent.Handlers() {
		id := string(h)
		g.Nodes = append(g.Nodes, Node{
			ID:       id,
			Name:     displayName(h),
			Kind:     NodeServiceTask,
			TaskType: h.TaskType(),
			Retries:  1,
		})

		edge := Edge{ID: "flow_route_" + id, From: gatewayID, To: id}
		if h == intent.HandlerGeneral {
			edge.Default = true
		} else {
			edge.Condition = id
		}
		g.Edges = append(g.Edges, edge, Edge{ID: "flow_" + id + "_end", From: id, To: endID})
	}

	g.Nodes = append(g.Nodes, Node{ID: endID, Name: "Reply ready", Kind: NodeEnd})
	return g
}

func displayName(h intent.Handler) string {
	parts := strings.Split(string(h), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks the structural rules the engine relies on.
func (g *Graph) Validate() error {
	nodes := make(map[string]Node, len(g.Nodes))
	var start string
	for _, n := range g.Nodes {
		if _, exists := nodes[n.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		nodes[n.ID] = n
		switch n.Kind {
		case NodeStart:
			if start != "" {
				return ErrMultipleStarts
			}
			start = n.ID
		case NodeServiceTask:
			if n.TaskType == "" {
				return fmt.Errorf("%w: %s", ErrMissingTaskType, n.ID)
			}
		}
	}
	if start == "" {
		return ErrNoStart
	}

	outgoing := make(map[string][]Edge)
	for _, e := range g.Edges {
		if _, ok := nodes[e.From]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, e.From)
		}
		if _, ok := nodes[e.To]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, e.To)
		}
		outgoing[e.From] = append(outgoing[e.From], e)
	}

	for _, n := range g.Nodes {
		if n.Kind != NodeEnd && len(outgoing[n.ID]) == 0 {
			return fmt.Errorf("%w: %s", ErrDeadEnd, n.ID)
		}
		if n.Kind == NodeGateway {
			if err := validateGateway(n.ID, outgoing[n.ID]); err != nil {
				return err
			}
		}
	}

	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range outgoing[id] {
			if !reached[e.To] {
				reached[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	for _, n := range g.Nodes {
		if !reached[n.ID] {
			return fmt.Errorf("%w: %s", ErrUnreachable, n.ID)
		}
	}
	return nil
}

func validateGateway(id string, edges []Edge) error {
	defaults := 0
	seen := make(map[string]bool)
	for _, e := range edges {
		switch {
		case e.Default:
			defaults++
		case e.Condition == "":
			return fmt.Errorf("%w: %s", ErrMissingCondition, e.ID)
		case seen[e.Condition]:
			return fmt.Errorf("%w: %s", ErrDuplicateRoute, e.Condition)
		default:
			seen[e.Condition] = true
		}
	}
	if defaults != 1 {
		return fmt.Errorf("%w: %s", ErrGatewayDefault, id)
	}
	return nil
}

// TaskTypes lists the service task types in node order.
func (g *Graph) TaskTypes() []string {
	var out []string
	for _, n := range g.Nodes {
		if n.Kind == NodeServiceTask {
			out = append(out, n.TaskType)
		}
	}
	return out
}

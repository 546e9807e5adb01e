package engine

import (
	"fmt"

	"github.com/piwi3910/PathOrder/internal/model"
)

// VerifyPlan checks the emitted order against the dependency graph. Every
// node attached below the root must appear in the plan, and every node must
// appear after each node it depends on.
func VerifyPlan(doc *model.Document, plan *Plan) []model.PlanViolation {
	pos := make(map[model.NodeID]int, len(plan.Order))
	for i, id := range plan.Order {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}

	var violations []model.PlanViolation
	doc.Walk(doc.Root(), func(n *model.Node) bool {
		at, ok := pos[n.ID]
		if !ok {
			violations = append(violations, model.PlanViolation{
				Node:      n.ID,
				NodeLabel: doc.Label(n.ID),
				DependsOn: model.NoNode,
				NodeIndex: -1,
				DepIndex:  -1,
				Missing:   true,
			})
			return true
		}
		for _, dep := range n.DependsOn {
			depAt, depOK := pos[dep]
			if depOK && depAt < at {
				continue
			}
			if !depOK {
				depAt = -1
			}
			violations = append(violations, model.PlanViolation{
				Node:      n.ID,
				NodeLabel: doc.Label(n.ID),
				DependsOn: dep,
				DepLabel:  doc.Label(dep),
				NodeIndex: at,
				DepIndex:  depAt,
			})
		}
		return true
	})
	return deduplicateViolations(violations)
}

// deduplicateViolations keeps at most one violation per (node, dependency) pair.
func deduplicateViolations(violations []model.PlanViolation) []model.PlanViolation {
	type key struct {
		node, dep model.NodeID
	}
	seen := make(map[key]bool)
	var result []model.PlanViolation

	for _, v := range violations {
		k := key{v.Node, v.DependsOn}
		if !seen[k] {
			seen[k] = true
			result = append(result, v)
		}
	}
	return result
}

// FormatViolations produces human-readable messages from violation data.
func FormatViolations(violations []model.PlanViolation) []string {
	var msgs []string
	for _, v := range violations {
		var msg string
		if v.Missing {
			msg = fmt.Sprintf("%s was never emitted", v.NodeLabel)
		} else if v.DepIndex < 0 {
			msg = fmt.Sprintf("%s (position %d) depends on %s, which was never emitted",
				v.NodeLabel, v.NodeIndex+1, v.DepLabel)
		} else {
			msg = fmt.Sprintf("%s (position %d) was emitted before its dependency %s (position %d)",
				v.NodeLabel, v.NodeIndex+1, v.DepLabel, v.DepIndex+1)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

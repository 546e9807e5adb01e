package model

// PlanViolation describes a dependency edge the emitted order does not
// honour, or a node that was never emitted.
type PlanViolation struct {
	Node      NodeID `json:"node"`
	NodeLabel string `json:"node_label"`
	DependsOn NodeID `json:"depends_on"` // NoNode when the node itself is missing
	DepLabel  string `json:"dep_label,omitempty"`
	NodeIndex int    `json:"node_index"` // Position in the emitted order, -1 if missing
	DepIndex  int    `json:"dep_index"`
	Missing   bool   `json:"missing"`
}

// TravelComparison holds the non-cutting travel of a program in its original
// and its emitted order.
type TravelComparison struct {
	Before      float64 `json:"before"`
	After       float64 `json:"after"`
	RapidsAfter int     `json:"rapids_after"`

	// ConnectorsAfter counts emitted feed moves that do not start where
	// they started in the original program.
	ConnectorsAfter int `json:"connectors_after"`
}

// Saved returns the travel removed by reordering.
func (c TravelComparison) Saved() float64 {
	return c.Before - c.After
}

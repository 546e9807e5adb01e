package model

// NodeID is a stable handle into a Document's node arena.
type NodeID int

// NoNode is the nil handle.
const NoNode NodeID = -1

// Kind represents the type of a document node.
type Kind int

const (
	KindRaw       Kind = iota // Unparsed text line, passed through verbatim
	KindMovement              // Resolved linear G0/G1 motion
	KindContainer             // Grouping node without geometry of its own
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindMovement:
		return "movement"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Elevation tells whether an endpoint's Z is a real program coordinate or
// the symbolic safe height reached by a machine-coordinate lift.
type Elevation int

const (
	ElevationWork Elevation = iota // Z is a numeric work coordinate
	ElevationSafe                  // Z is the retract height, resolved after interpretation
)

// Node is the single entity of the document tree. Geometry fields are only
// meaningful for movements, except Start which doubles as a container's
// entry point once HasEntry is set.
type Node struct {
	ID   NodeID `json:"id"`
	Kind Kind   `json:"kind"`
	Seq  int    `json:"seq"`
	Name string `json:"name,omitempty"`

	Parent   NodeID   `json:"parent"`
	Index    int      `json:"index"` // Position among the parent's children
	Children []NodeID `json:"children,omitempty"`

	Bounds     Bounds  `json:"bounds"`
	PathLength float64 `json:"path_length"`

	Start        Point3    `json:"start"`
	End          Point3    `json:"end"`
	StartElev    Elevation `json:"start_elev"`
	EndElev      Elevation `json:"end_elev"`
	Feed         float64   `json:"feed"`
	GLevel       int       `json:"g_level"`
	ToolDiameter float64   `json:"tool_diameter"`
	HasEntry     bool      `json:"has_entry"`

	// HasTarget marks a raw G0/G1 line whose absolute target parsed while
	// the start position was unknown. End holds the target.
	HasTarget bool `json:"has_target,omitempty"`

	// Movable marks a container that opens with a positioning move and
	// closes with a retract, so it can run anywhere among its siblings.
	Movable bool `json:"movable,omitempty"`

	Retract      bool `json:"retract"`
	Vertical     bool `json:"vertical"`
	Positioning  bool `json:"positioning"`
	Barrier      bool `json:"barrier"`
	SplitAlready bool `json:"split_already"`
	Emitted      bool `json:"emitted"`

	// SafeLift marks a movement decoded from the machine-coordinate lift
	// idiom; it is re-emitted from RawText.
	SafeLift bool   `json:"safe_lift"`
	RawText  string `json:"raw_text,omitempty"`

	DependsOn  []NodeID `json:"depends_on,omitempty"`
	Dependents []NodeID `json:"dependents,omitempty"`
	Pending    int      `json:"pending"`
}

// IsMovement reports whether the node is a resolved motion.
func (n *Node) IsMovement() bool { return n.Kind == KindMovement }

// IsContainer reports whether the node groups other nodes.
func (n *Node) IsContainer() bool { return n.Kind == KindContainer }

// IsRapid reports whether the node is a G0 movement.
func (n *Node) IsRapid() bool { return n.Kind == KindMovement && n.GLevel == 0 }

// MovesTool reports whether emitting the node leaves the tool at End.
func (n *Node) MovesTool() bool { return n.Kind == KindMovement || n.HasTarget }

// Eligible reports whether the node may be emitted now.
func (n *Node) Eligible() bool { return !n.Emitted && n.Pending == 0 }

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_HasSingleRoot(t *testing.T) {
	d := NewDocument()
	root := d.Node(d.Root())
	require.NotNil(t, root)
	assert.Equal(t, KindContainer, root.Kind)
	assert.Equal(t, RootName, root.Name)
	assert.Equal(t, NoNode, root.Parent)
	assert.Equal(t, 1, d.Len())
}

func TestSequenceStrictlyIncreases(t *testing.T) {
	d := NewDocument()
	a := d.AppendRaw(d.Root(), "G90")
	b := d.AppendRaw(d.Root(), "G21")
	c := d.NewContainer("group")

	assert.Less(t, d.Node(a).Seq, d.Node(b).Seq)
	assert.Less(t, d.Node(b).Seq, d.Node(c).Seq)
	assert.Nil(t, d.Node(NodeID(99)))
	assert.Nil(t, d.Node(NoNode))
}

func TestReplace_MovesRangeIntoContainer(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	var ids []NodeID
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, d.AppendRaw(root, line))
	}

	group := d.NewContainer("Cut path 1")
	require.NoError(t, d.Replace(root, 1, 3, group))

	assert.Equal(t, []NodeID{ids[0], group, ids[4]}, d.Node(root).Children)
	assert.Equal(t, []NodeID{ids[1], ids[2], ids[3]}, d.Node(group).Children)
	assert.Equal(t, root, d.Node(group).Parent)
	for _, id := range ids[1:4] {
		assert.Equal(t, group, d.Node(id).Parent)
	}
}

func TestReplace_InvalidRange(t *testing.T) {
	d := NewDocument()
	d.AppendRaw(d.Root(), "a")
	group := d.NewContainer("x")

	assert.Error(t, d.Replace(d.Root(), 0, 1, group))
	assert.Error(t, d.Replace(d.Root(), 1, 0, group))
}

func TestDependOn_CountsPending(t *testing.T) {
	d := NewDocument()
	a := d.AppendRaw(d.Root(), "a")
	b := d.AppendRaw(d.Root(), "b")
	c := d.AppendRaw(d.Root(), "c")

	require.NoError(t, d.DependOn(c, a))
	require.NoError(t, d.DependOn(c, b))
	require.NoError(t, d.DependOn(c, b)) // duplicate is a no-op

	assert.Equal(t, 2, d.Node(c).Pending)
	assert.Equal(t, []NodeID{a, b}, d.Node(c).DependsOn)
	assert.Equal(t, []NodeID{c}, d.Node(a).Dependents)
	assert.Equal(t, 2, d.EdgeCount())

	d.MarkEmitted(a)
	assert.Equal(t, 1, d.Node(c).Pending)
	assert.False(t, d.Node(c).Eligible())

	d.MarkEmitted(a) // idempotent
	assert.Equal(t, 1, d.Node(c).Pending)

	d.MarkEmitted(b)
	assert.Equal(t, 0, d.Node(c).Pending)
	assert.True(t, d.Node(c).Eligible())
}

func TestDependOn_RejectsInvalidEdges(t *testing.T) {
	d := NewDocument()
	a := d.AppendRaw(d.Root(), "a")
	b := d.AppendRaw(d.Root(), "b")
	group := d.NewContainer("g")
	d.Append(d.Root(), group)
	inner := d.AppendRaw(group, "inner")

	assert.ErrorIs(t, d.DependOn(a, a), ErrSelfEdge)
	assert.ErrorIs(t, d.DependOn(a, b), ErrBackwardEdge)
	assert.ErrorIs(t, d.DependOn(inner, a), ErrNotSibling)
	assert.ErrorIs(t, d.DependOn(inner, group), ErrNotSibling)
	assert.Equal(t, 0, d.EdgeCount())
}

func TestDependOn_AlreadyEmittedTargetAddsNoPending(t *testing.T) {
	d := NewDocument()
	a := d.AppendRaw(d.Root(), "a")
	b := d.AppendRaw(d.Root(), "b")
	d.MarkEmitted(a)

	require.NoError(t, d.DependOn(b, a))
	assert.Equal(t, 0, d.Node(b).Pending)
}

func TestWalkAndMovements(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	d.AppendRaw(root, "G90")
	m1 := d.AppendRaw(root, "G1X1")
	group := d.NewContainer("g")
	d.Append(root, group)
	m2 := d.AppendRaw(group, "G1X2")
	d.Node(m1).Kind = KindMovement
	d.Node(m2).Kind = KindMovement

	moves := d.Movements(root)
	require.Len(t, moves, 2)
	assert.Equal(t, m1, moves[0].ID)
	assert.Equal(t, m2, moves[1].ID)

	assert.Equal(t, m2, d.FirstMovement(group).ID)
	assert.Nil(t, d.FirstMovement(d.Node(root).Children[0]))

	visited := 0
	d.Walk(root, func(n *Node) bool {
		visited++
		return n.ID != group
	})
	assert.Equal(t, 4, visited, "children of group are skipped")
}

func TestLabel(t *testing.T) {
	d := NewDocument()
	raw := d.AppendRaw(d.Root(), "M5")
	assert.Contains(t, d.Label(raw), `"M5"`)
	assert.Contains(t, d.Label(d.Root()), RootName)
	assert.Contains(t, d.Label(NodeID(42)), "invalid")
}

func TestMotionsIncludeRawTargets(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	d.AppendRaw(root, "G21")
	lead := d.AppendRaw(root, "G0X1Y1Z1")
	m := d.AppendRaw(root, "G1Z-1")
	d.Node(lead).HasTarget = true
	d.Node(m).Kind = KindMovement

	assert.Len(t, d.Movements(root), 1)
	motions := d.Motions(root)
	require.Len(t, motions, 2)
	assert.Equal(t, lead, motions[0].ID)
	assert.Equal(t, m, motions[1].ID)
}

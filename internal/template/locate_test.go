package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offsetOf(t *testing.T, source, needle string) int {
	t.Helper()
	idx := strings.Index(source, needle)
	require.GreaterOrEqual(t, idx, 0, "needle %q not found", needle)
	return idx
}

func TestNodeAt(t *testing.T) {
	source := `<div [hidden]="flag" (click)="toggle()" #box>{{label}}</div>`
	ast := mustParse(t, source)

	t.Run("element tag", func(t *testing.T) {
		node, twoWay := ast.NodeAt(offsetOf(t, source, "div"))
		require.Nil(t, twoWay)
		el, ok := node.(*Element)
		require.True(t, ok)
		assert.Equal(t, "div", el.Name)
	})

	t.Run("bound attribute key", func(t *testing.T) {
		node, twoWay := ast.NodeAt(offsetOf(t, source, "hidden"))
		require.Nil(t, twoWay)
		in, ok := node.(*BoundAttribute)
		require.True(t, ok)
		assert.Equal(t, "hidden", in.Name)
	})

	t.Run("expression inside a binding value", func(t *testing.T) {
		node, twoWay := ast.NodeAt(offsetOf(t, source, "flag"))
		require.Nil(t, twoWay)
		expr, ok := node.(*Expr)
		require.True(t, ok)
		assert.Equal(t, "flag", expr.Name)
	})

	t.Run("event handler expression", func(t *testing.T) {
		node, _ := ast.NodeAt(offsetOf(t, source, "toggle"))
		expr, ok := node.(*Expr)
		require.True(t, ok)
		assert.Equal(t, "toggle", expr.Name)
	})

	t.Run("reference declaration", func(t *testing.T) {
		node, _ := ast.NodeAt(offsetOf(t, source, "box"))
		ref, ok := node.(*Reference)
		require.True(t, ok)
		assert.Equal(t, "box", ref.Name)
	})

	t.Run("interpolation token", func(t *testing.T) {
		node, _ := ast.NodeAt(offsetOf(t, source, "label"))
		expr, ok := node.(*Expr)
		require.True(t, ok)
		assert.Equal(t, "label", expr.Name)
	})

	t.Run("offset outside any node", func(t *testing.T) {
		node, twoWay := ast.NodeAt(len(source) + 10)
		assert.Nil(t, node)
		assert.Nil(t, twoWay)
	})
}

func TestNodeAtTwoWay(t *testing.T) {
	source := `<input [(value)]="name">`
	ast := mustParse(t, source)

	t.Run("key span yields both halves", func(t *testing.T) {
		node, twoWay := ast.NodeAt(offsetOf(t, source, "value"))
		assert.Nil(t, node)
		require.NotNil(t, twoWay)
		assert.Equal(t, "value", twoWay.Bound.Name)
		assert.True(t, twoWay.Bound.TwoWay)
		assert.Equal(t, "valueChange", twoWay.Event.Name)
		assert.True(t, twoWay.Event.FromTwoWay)
	})

	t.Run("value span yields the expression", func(t *testing.T) {
		node, twoWay := ast.NodeAt(offsetOf(t, source, "name"))
		require.Nil(t, twoWay)
		expr, ok := node.(*Expr)
		require.True(t, ok)
		assert.Equal(t, "name", expr.Name)
	})
}

func TestSourceSpan(t *testing.T) {
	span := NewSourceSpan(2, 6)

	assert.True(t, span.Contains(2))
	assert.True(t, span.Contains(5))
	assert.False(t, span.Contains(6), "span end is exclusive")
	assert.False(t, span.Contains(1))

	assert.Equal(t, 4, span.Length())
	assert.Equal(t, NewSourceSpan(5, 9), span.Shift(3))
	assert.False(t, span.Empty())
	assert.True(t, NewSourceSpan(3, 3).Empty())
	assert.Equal(t, "[2,6)", span.String())
}

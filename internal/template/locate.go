package template

// TwoWay carries the node pair of a banana-in-a-box binding; a cursor
// on the shared key resolves both halves
type TwoWay struct {
	Bound *BoundAttribute
	Event *BoundEvent
}

// NodeAt returns the tightest node containing the given byte offset.
// For a cursor on the key of a two-way binding it returns the
// property/event pair instead of a single node. Returns (nil, nil)
// when nothing encloses the offset.
func (a *AST) NodeAt(offset int) (Node, *TwoWay) {
	var best Node
	a.Visit(func(n Node) {
		span := n.Span()
		if !span.Contains(offset) {
			return
		}
		// strict < keeps the first-visited node on ties, so the
		// bound half of a two-way pair wins over the event half
		if best == nil || span.Length() < best.Span().Length() {
			best = n
		}
	})
	if best == nil {
		return nil, nil
	}

	// A cursor on a [(key)] span hits both halves of the binding
	switch node := best.(type) {
	case *BoundAttribute:
		if node.TwoWay && node.KeySpan.Contains(offset) {
			if ev := a.twoWayEvent(node); ev != nil {
				return nil, &TwoWay{Bound: node, Event: ev}
			}
		}
	case *BoundEvent:
		if node.FromTwoWay && node.KeySpan.Contains(offset) {
			if in := a.twoWayBound(node); in != nil {
				return nil, &TwoWay{Bound: in, Event: node}
			}
		}
	}
	return best, nil
}

func (a *AST) twoWayEvent(in *BoundAttribute) *BoundEvent {
	owner := a.parents[in]
	for _, out := range ownerOutputs(owner) {
		if out.FromTwoWay && out.KeySpan == in.KeySpan {
			return out
		}
	}
	return nil
}

func (a *AST) twoWayBound(out *BoundEvent) *BoundAttribute {
	owner := a.parents[out]
	for _, in := range ownerInputs(owner) {
		if in.TwoWay && in.KeySpan == out.KeySpan {
			return in
		}
	}
	return nil
}

func ownerInputs(owner Node) []*BoundAttribute {
	switch o := owner.(type) {
	case *Element:
		return o.Inputs
	case *Template:
		return o.Inputs
	}
	return nil
}

func ownerOutputs(owner Node) []*BoundEvent {
	switch o := owner.(type) {
	case *Element:
		return o.Outputs
	case *Template:
		return o.Outputs
	}
	return nil
}

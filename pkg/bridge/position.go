package bridge

import (
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/layout"
)

// rootPosition returns the oracle's absolute position for a root-level
// element, unmodified.
func rootPosition(id string, geo layout.Result) (Position, error) {
	g, ok := geo.Geometry(id)
	if !ok {
		return Position{}, errors.New(errors.ErrCodeMissingLayout, "no layout entry for %q", id)
	}
	return Position{X: g.X, Y: g.Y}, nil
}

// childPosition returns the element's position relative to its immediate
// parent, as child_absolute - parent_absolute per axis. The caller must
// ensure the parent was converted first; ancestor-before-descendant
// ordering is what makes the parent's position available here.
//
// A missing oracle entry for either element fails the pass. Defaulting to
// the origin would silently corrupt every descendant offset.
func childPosition(id, parent string, geo layout.Result) (Position, error) {
	child, ok := geo.Geometry(id)
	if !ok {
		return Position{}, errors.New(errors.ErrCodeMissingLayout, "no layout entry for %q", id)
	}
	par, ok := geo.Geometry(parent)
	if !ok {
		return Position{}, errors.New(errors.ErrCodeMissingLayout, "no layout entry for parent %q of %q", parent, id)
	}
	return Position{X: child.X - par.X, Y: child.Y - par.Y}, nil
}

// Package bridge converts hierarchical flow snapshots into flat render
// graphs for a node-and-edge diagram renderer.
//
// The conversion is a pure function of three inputs: a [flow.Snapshot]
// (read-only view of the graph state), a [layout.Result] (absolute geometry
// from the layout oracle), and a [styles.Config]. It runs as one synchronous
// pass per render cycle and holds no state between calls; parent maps and
// container ordering are recomputed fresh each time because any collapse
// toggle or structural edit can change both.
//
// The pass proceeds leaves-first through a fixed sequence: build the parent
// map, sort containers so every ancestor precedes its descendants, convert
// containers and nodes to positioned [RenderElement] records (child positions
// are relative to the immediate parent), then filter and style edges whose
// endpoints are both visible.
//
// Error policy: a missing layout entry for a required element aborts the
// pass, since a defaulted position would corrupt every descendant offset.
// A parent reference to an unknown container and a style table miss are
// absorbed locally with fallbacks and never fail a render.
package bridge

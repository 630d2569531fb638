package services

import (
	"html"
	"strings"
	"sync"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
)

// EmptyDocument is the sentinel returned when composing zero picked nodes.
// It is distinct from any valid document: callers check for it before
// rendering or exporting.
const EmptyDocument = ""

// PickOrder maintains the explicit, user-adjustable ordering of picked
// nodes, separate from graph insertion order.
//
// Resolution rule: ids no longer picked (or no longer present) are pruned
// from the explicit list on every resolve, so a node that is un-picked and
// later re-picked lands at the end of the resolved order, after nodes that
// stayed continuously picked.
//
// The order is shared across concurrent HTTP requests; the mutex covers one
// operation at a time, same lock scope as the canvas aggregate.
type PickOrder struct {
	mu  sync.Mutex
	ids []valueobjects.NodeID
}

// NewPickOrder creates an empty pick order
func NewPickOrder() *PickOrder {
	return &PickOrder{}
}

// Resolve returns the picked subset of nodes in explicit order, then any
// currently-picked nodes not yet ordered, in graph insertion order.
func (o *PickOrder) Resolve(nodes []*entities.Node) []*entities.Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolve(nodes)
}

func (o *PickOrder) resolve(nodes []*entities.Node) []*entities.Node {
	picked := make(map[string]*entities.Node)
	for _, n := range nodes {
		if n.Picked() {
			picked[n.ID().String()] = n
		}
	}

	ordered := make([]*entities.Node, 0, len(picked))
	kept := o.ids[:0]
	for _, id := range o.ids {
		n, ok := picked[id.String()]
		if !ok {
			continue
		}
		kept = append(kept, id)
		ordered = append(ordered, n)
		delete(picked, id.String())
	}
	o.ids = kept

	// Newly picked nodes append in insertion order, before any manual reorder.
	for _, n := range nodes {
		if _, ok := picked[n.ID().String()]; ok {
			o.ids = append(o.ids, n.ID())
			ordered = append(ordered, n)
			delete(picked, n.ID().String())
		}
	}

	return ordered
}

// MoveUp swaps the entry at index with its predecessor. No-op at index 0
// or out of range.
func (o *PickOrder) MoveUp(nodes []*entities.Node, index int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	resolved := o.resolve(nodes)
	if index <= 0 || index >= len(resolved) {
		return
	}
	o.ids[index-1], o.ids[index] = o.ids[index], o.ids[index-1]
}

// MoveDown swaps the entry at index with its successor. No-op at the last
// index or out of range.
func (o *PickOrder) MoveDown(nodes []*entities.Node, index int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	resolved := o.resolve(nodes)
	if index < 0 || index >= len(resolved)-1 {
		return
	}
	o.ids[index], o.ids[index+1] = o.ids[index+1], o.ids[index]
}

// AssemblyService composes an ordered node list into a single self-contained
// document. Composition is a pure function of the ordered list: same input
// (by id, content, title, description, order) yields byte-identical output.
type AssemblyService struct{}

// NewAssemblyService creates an assembly service
func NewAssemblyService() *AssemblyService {
	return &AssemblyService{}
}

// Compose builds the assembled page from the ordered picked nodes. Each
// node contributes its content verbatim when present, otherwise a minimal
// titled section synthesized from its title and description when it carries
// generated code, otherwise nothing. Zero input nodes yield EmptyDocument.
func (s *AssemblyService) Compose(ordered []*entities.Node) string {
	if len(ordered) == 0 {
		return EmptyDocument
	}

	var sections []string
	for _, n := range ordered {
		fragment := nodeFragment(n)
		if fragment != "" {
			sections = append(sections, fragment)
		}
	}

	navLinks := []string{"Home", "Features", "Pricing", "Contact"}
	var nav strings.Builder
	for _, l := range navLinks {
		nav.WriteString(`<a href="#" style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.05em;color:#64748b;text-decoration:none;">` + l + `</a>`)
	}

	lines := []string{
		`<!DOCTYPE html>`,
		`<html lang="en">`,
		`<head>`,
		`<meta charset="UTF-8" />`,
		`<meta name="viewport" content="width=device-width, initial-scale=1.0" />`,
		`<title>Assembled App</title>`,
		`<style>`,
		`* { margin:0; padding:0; box-sizing:border-box; }`,
		`body { font-family: system-ui, -apple-system, sans-serif; background:#f8fafc; color:#0f172a; }`,
		`@media (prefers-color-scheme:dark) { body { background:#050505; color:#f1f5f9; } }`,
		`</style>`,
		`</head>`,
		`<body>`,
		`<nav style="padding:16px 32px;border-bottom:1px solid #e2e8f0;display:flex;align-items:center;gap:12px;">`,
		`<div style="width:28px;height:28px;border-radius:8px;background:linear-gradient(135deg,#6366f1,#8b5cf6);display:flex;align-items:center;justify-content:center;color:#fff;font-weight:900;font-size:12px;">&#10022;</div>`,
		`<span style="font-size:10px;font-weight:900;text-transform:uppercase;letter-spacing:0.1em;">My App</span>`,
		`<div style="display:flex;gap:24px;margin-left:auto;">` + nav.String() + `</div>`,
		`</nav>`,
	}
	lines = append(lines, sections...)
	lines = append(lines,
		`<div style="text-align:center;padding:32px;font-size:10px;color:#94a3b8;font-weight:700;text-transform:uppercase;letter-spacing:0.1em;border-top:1px solid #e2e8f0;">Built with &#10022; Infinite Canvas IDE</div>`,
		`</body>`,
		`</html>`,
	)

	return strings.Join(lines, "\n")
}

// nodeFragment renders one node's contribution to the assembled page
func nodeFragment(n *entities.Node) string {
	if n.Content() != "" {
		return n.Content()
	}
	if n.GeneratedCode() != "" {
		var b strings.Builder
		b.WriteString(`<section style="padding:48px 32px;border-bottom:1px solid #e2e8f0;">`)
		b.WriteString(`<h2 style="font-size:24px;font-weight:900;text-transform:uppercase;letter-spacing:-0.02em;margin-bottom:12px;">`)
		b.WriteString(html.EscapeString(n.Title()))
		b.WriteString(`</h2>`)
		b.WriteString(`<p style="font-size:12px;color:#64748b;line-height:1.8;">`)
		b.WriteString(html.EscapeString(n.Description()))
		b.WriteString(`</p>`)
		b.WriteString(`</section>`)
		return b.String()
	}
	return ""
}

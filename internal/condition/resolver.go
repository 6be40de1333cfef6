// Package condition derives the chain of gating conditions for a controlling
// node: one active-state condition per node on the way up to the avatar root,
// plus the selection of the nearest enclosing menu item.
package condition

import (
	"log/slog"
	"slices"

	"github.com/specialistvlad/reactbake/internal/model"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Proxy is an active-state proxy parameter the synthesized output must drive.
type Proxy struct {
	Parameter string
	Node      scene.NodeID
	Default   bool
}

// Resolver resolves condition chains. It lives for one compilation run: the
// chains it memoizes and the proxies it registers belong to that run.
type Resolver struct {
	menu   scene.Menu
	logger *slog.Logger

	memo    map[scene.NodeID][]model.ControlCondition
	proxies []Proxy
	seen    map[scene.NodeID]struct{}
}

// NewResolver returns a resolver for one run.
func NewResolver(menu scene.Menu, logger *slog.Logger) *Resolver {
	return &Resolver{
		menu:   menu,
		logger: logger,
		memo:   make(map[scene.NodeID][]model.ControlCondition),
		seen:   make(map[scene.NodeID]struct{}),
	}
}

// Conditions returns the conditions gating components declared on n, closest
// first. The walk includes n itself and stops before the avatar root. If n or
// its parent carries a menu item, exactly one menu condition for the nearest
// one is appended. The returned slice is owned by the caller.
func (r *Resolver) Conditions(n *scene.Node) []model.ControlCondition {
	if chain, ok := r.memo[n.ID]; ok {
		return slices.Clone(chain)
	}

	var chain []model.ControlCondition
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		chain = append(chain, model.ActiveCondition(cur.ID, cur.Active))
		r.registerProxy(cur)
	}

	if binding, ok := r.nearestMenuItem(n); ok {
		c, err := model.NewCondition(model.ConditionMenu, binding.Parameter, binding.Lo, binding.Hi, binding.Initial, binding.Node.ID)
		if err != nil {
			// Menu windows are built as [v-0.5, v+0.5) and are never empty.
			r.logger.Warn("Skipping menu condition with an invalid window.", "node", n.ID, "error", err)
		} else {
			c.Constant = binding.Constant
			chain = append(chain, c)
		}
	}

	r.memo[n.ID] = chain
	return slices.Clone(chain)
}

// nearestMenuItem looks at n and then its parent only; menu items further up
// belong to enclosing submenus and would make the selection ambiguous.
func (r *Resolver) nearestMenuItem(n *scene.Node) (scene.MenuBinding, bool) {
	if b, ok := r.menu.MenuItem(n); ok {
		return b, true
	}
	if n.Parent != nil && !n.Parent.IsRoot() {
		return r.menu.MenuItem(n.Parent)
	}
	return scene.MenuBinding{}, false
}

func (r *Resolver) registerProxy(n *scene.Node) {
	if _, ok := r.seen[n.ID]; ok {
		return
	}
	r.seen[n.ID] = struct{}{}
	r.proxies = append(r.proxies, Proxy{
		Parameter: model.ActiveProxyParameter(n.ID),
		Node:      n.ID,
		Default:   n.Active,
	})
}

// Proxies returns the active-state proxies registered so far, in the order
// they were first observed.
func (r *Resolver) Proxies() []Proxy {
	return slices.Clone(r.proxies)
}

package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Warn builds a non-fatal diagnostic attributed to the declaring component.
// The component's source range becomes the diagnostic subject so the warning
// prints like a load error.
func Warn(src *scene.Component, summary, detail string) *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
	}
	if src != nil {
		rng := src.DeclRange
		d.Subject = &rng
		d.Detail = src.ID + ": " + detail
	}
	return d
}

// WarnNode is Warn for diagnostics that belong to a node rather than a
// component, such as the avatar root.
func WarnNode(n *scene.Node, summary, detail string) *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
	}
	if n != nil {
		rng := n.DeclRange
		d.Subject = &rng
	}
	return d
}

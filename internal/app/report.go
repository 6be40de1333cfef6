package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactbake/internal/compiler"
	"gopkg.in/yaml.v3"
)

// Report is the printable form of a compilation result.
type Report struct {
	Avatar     string            `yaml:"avatar" json:"avatar"`
	Generation uint64            `yaml:"generation" json:"generation"`
	Layers     []LayerReport     `yaml:"layers,omitempty" json:"layers,omitempty"`
	Defaults   []ValueReport     `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Baked      []ValueReport     `yaml:"baked,omitempty" json:"baked,omitempty"`
	Parameters []ParameterReport `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Meshes     []MeshReport      `yaml:"meshes,omitempty" json:"meshes,omitempty"`
	Warnings   []string          `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// LayerReport is one synthesized layer.
type LayerReport struct {
	Object   string        `yaml:"object" json:"object"`
	Property string        `yaml:"property" json:"property"`
	States   []StateReport `yaml:"states" json:"states"`
}

// StateReport is one state of a layer.
type StateReport struct {
	Name        string             `yaml:"name" json:"name"`
	Value       string             `yaml:"value" json:"value"`
	Source      string             `yaml:"source,omitempty" json:"source,omitempty"`
	Transitions []TransitionReport `yaml:"transitions,omitempty" json:"transitions,omitempty"`
}

// TransitionReport is one transition; When is empty for an unguarded one.
type TransitionReport struct {
	To   string   `yaml:"to" json:"to"`
	When []string `yaml:"when,omitempty" json:"when,omitempty"`
}

// ValueReport is a property and its value.
type ValueReport struct {
	Object   string `yaml:"object" json:"object"`
	Property string `yaml:"property" json:"property"`
	Value    string `yaml:"value" json:"value"`
}

// ParameterReport is a runtime parameter.
type ParameterReport struct {
	Name    string  `yaml:"name" json:"name"`
	Kind    string  `yaml:"kind" json:"kind"`
	Default float32 `yaml:"default" json:"default"`
	Node    string  `yaml:"node,omitempty" json:"node,omitempty"`
}

// MeshReport is one mesh replaced by a clone.
type MeshReport struct {
	Renderer string   `yaml:"renderer" json:"renderer"`
	Source   string   `yaml:"source" json:"source"`
	Mesh     string   `yaml:"mesh" json:"mesh"`
	Removed  []string `yaml:"removed" json:"removed"`
}

// NewReport converts a compilation result.
func NewReport(avatar string, res *compiler.Result) *Report {
	r := &Report{Avatar: avatar, Generation: res.Generation}

	for _, l := range res.Layers {
		lr := LayerReport{Object: string(l.Target.Object), Property: l.Target.Property}
		for _, s := range l.States {
			sr := StateReport{Name: s.Name, Value: s.Value.String()}
			if s.Rule != nil && s.Rule.Source != nil {
				sr.Source = s.Rule.Source.ID
			}
			for _, tr := range s.Transitions {
				trr := TransitionReport{To: l.States[tr.To].Name}
				for _, c := range tr.Conditions {
					trr.When = append(trr.When, c.String())
				}
				sr.Transitions = append(sr.Transitions, trr)
			}
			lr.States = append(lr.States, sr)
		}
		r.Layers = append(r.Layers, lr)
	}
	for _, d := range res.Defaults {
		r.Defaults = append(r.Defaults, ValueReport{Object: string(d.Target.Object), Property: d.Target.Property, Value: d.Value.String()})
	}
	for _, b := range res.Baked {
		r.Baked = append(r.Baked, ValueReport{Object: string(b.Target.Object), Property: b.Target.Property, Value: b.Value.String()})
	}
	for _, p := range res.Parameters {
		r.Parameters = append(r.Parameters, ParameterReport{Name: p.Name, Kind: p.Kind.String(), Default: p.Default, Node: string(p.Node)})
	}
	for _, m := range res.Meshes {
		r.Meshes = append(r.Meshes, MeshReport{Renderer: string(m.Renderer), Source: string(m.Source), Mesh: string(m.Mesh), Removed: m.Shapes})
	}
	for _, d := range res.Diagnostics {
		r.Warnings = append(r.Warnings, formatDiagnostic(d))
	}
	return r
}

func formatDiagnostic(d *hcl.Diagnostic) string {
	var sb strings.Builder
	if d.Subject != nil {
		fmt.Fprintf(&sb, "%s: ", d.Subject)
	}
	sb.WriteString(d.Summary)
	if d.Detail != "" {
		sb.WriteString("; ")
		sb.WriteString(d.Detail)
	}
	return sb.String()
}

// Write encodes the report as yaml or json.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/reactbake/internal/config"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/fsutil"
	"github.com/specialistvlad/reactbake/internal/schema"
)

// sceneExtension is the file extension scene files are discovered by.
const sceneExtension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL scene loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL loading process. Blocks from every file
// are merged into a single model; exactly one avatar block must exist across
// all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, sceneExtension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s scene files found in %v", sceneExtension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{
		Meshes: make(map[string]*config.Mesh),
	}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	if model.Avatar == nil {
		return nil, fmt.Errorf("no avatar block found in %d scene file(s)", len(files))
	}

	logger.Debug("HCL loading complete.",
		"avatar", model.Avatar.Name,
		"meshes", len(model.Meshes),
		"animations", len(model.Animations),
		"outputs", len(model.Outputs),
	)
	return model, nil
}

// merge translates the blocks of one decoded file into the model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *schema.File) error {
	for _, av := range root.Avatars {
		if model.Avatar != nil {
			return fmt.Errorf("duplicate avatar block %q: avatar %q is already defined", av.Name, model.Avatar.Name)
		}
		avatar, err := l.translateAvatar(ctx, av)
		if err != nil {
			return err
		}
		model.Avatar = avatar
	}
	for _, m := range root.Meshes {
		if _, dup := model.Meshes[m.ID]; dup {
			return fmt.Errorf("duplicate mesh block %q", m.ID)
		}
		model.Meshes[m.ID] = &config.Mesh{ID: m.ID, BlendShapes: m.BlendShapes}
	}
	for _, a := range root.Animations {
		model.Animations = append(model.Animations, &config.Animation{
			Name:     a.Name,
			Path:     a.Path,
			Property: a.Property,
		})
	}
	for _, o := range root.Outputs {
		model.Outputs = append(model.Outputs, &config.Output{Name: o.Name, Scratch: o.Scratch})
	}
	return nil
}

// translateAvatar walks the avatar body, which has the same shape as a node
// body apart from the root never carrying components.
func (l *Loader) translateAvatar(ctx context.Context, av *schema.Avatar) (*config.Avatar, error) {
	rootNode, err := l.translateNode(ctx, av.Name, av.Body, hcl.Range{})
	if err != nil {
		return nil, err
	}
	if len(rootNode.Components) > 0 || rootNode.Renderer != nil {
		return nil, fmt.Errorf("avatar %q: components and renderers must be declared on nodes, not on the avatar root", av.Name)
	}
	return &config.Avatar{
		Name:  av.Name,
		Nodes: rootNode.Children,
	}, nil
}

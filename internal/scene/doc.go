// Package scene is the runtime form of an avatar hierarchy: nodes with parent
// links and active flags, the components declared on them as a tagged
// variant, renderers, and the mesh assets renderers point at.
//
// A Scene is built fresh from a config.Model for every compilation run. It
// implements the collaborator interfaces the compiler consumes (Walker, Menu,
// ReferenceIndex, MeshStore); the compiler never reaches into the document
// model directly.
package scene

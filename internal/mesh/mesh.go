// Package mesh provides the procedural geometry used to render neurons:
// UV-sphere generation, point-cloud scatters and Wavefront OBJ output. All
// of it is pure and deterministic.
package mesh

import "fmt"

// Vec3 is a point or vector in 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mesh is an indexed face set. Faces hold vertex indices into Verts; the
// sphere generator emits triangles at the poles and quads in between, so
// faces are index lists rather than fixed triples. Consumers triangulate
// per their own renderer.
type Mesh struct {
	Verts []Vec3
	Faces [][]int
}

// Translate moves every vertex by offset.
func (m *Mesh) Translate(offset Vec3) {
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Add(offset)
	}
}

// Append merges other into m, offsetting other's face indices past m's
// existing vertices.
func (m *Mesh) Append(other *Mesh) {
	offset := len(m.Verts)
	m.Verts = append(m.Verts, other.Verts...)
	for _, f := range other.Faces {
		face := make([]int, len(f))
		for i, ix := range f {
			face[i] = ix + offset
		}
		m.Faces = append(m.Faces, face)
	}
}

func (m *Mesh) validIndex(i int) bool {
	return i >= 0 && i < len(m.Verts)
}

// Validate checks that every face index references an existing vertex.
func (m *Mesh) Validate() error {
	for fi, f := range m.Faces {
		for _, ix := range f {
			if !m.validIndex(ix) {
				return fmt.Errorf("face %d references vertex %d of %d", fi, ix, len(m.Verts))
			}
		}
	}
	return nil
}

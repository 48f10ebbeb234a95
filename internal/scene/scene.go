// Package scene models a 3D scene of neuron geometry as an explicit typed
// collection: neurite polylines, soma spheres, connector links and point
// scatters, queried by kind and skeleton ID rather than by name lookup in
// a host application. Scenes render to Wavefront OBJ.
package scene

import (
	"encoding/json"
	"fmt"
	"io"

	"neurita/arbor/internal/mesh"
	"neurita/arbor/internal/neuron"
)

// Kind classifies scene objects.
type Kind int

const (
	KindNeurites Kind = iota
	KindSoma
	KindConnectors
	KindScatter
	KindVolume
)

func (k Kind) String() string {
	switch k {
	case KindNeurites:
		return "neurites"
	case KindSoma:
		return "soma"
	case KindConnectors:
		return "connectors"
	case KindScatter:
		return "scatter"
	case KindVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// DefaultNeuronColor is the color neurites and somata start with.
var DefaultNeuronColor = Color{0.95, 0.65, 0.04, 1}

// connectorStyle maps relation codes to display names and colors.
var connectorStyle = map[int]struct {
	name  string
	color Color
}{
	neuron.RelPresynaptic:  {"presynapses", Color{1, 0, 0, 1}},
	neuron.RelPostsynaptic: {"postsynapses", Color{0, 0, 1, 1}},
	neuron.RelGapJunction:  {"gapjunction", Color{0, 1, 0, 1}},
	neuron.RelAbutting:     {"abutting", Color{1, 0, 1, 1}},
}

// Object is a single renderable scene element. Exactly one of Mesh or
// Lines is populated, depending on kind.
type Object struct {
	Name       string
	Kind       Kind
	SkeletonID int64
	Relation   int // connector objects only, -1 otherwise
	Color      Color
	Hidden     bool
	Mesh       *mesh.Mesh
	Lines      [][]mesh.Vec3
	Radii      [][]float64 // per line point, neurites with radii only
}

// AddOptions control which parts of a neuron enter the scene.
type AddOptions struct {
	Neurites   bool
	Soma       bool
	Connectors bool
	// UseRadii renders neurites with their per-node radii instead of a
	// fixed bevel.
	UseRadii bool
	// SphereResolution is the polar resolution of soma spheres (the
	// azimuthal resolution is twice it). Defaults to 8.
	SphereResolution int
}

// DefaultAddOptions adds neurites, somata and connectors without radii.
func DefaultAddOptions() AddOptions {
	return AddOptions{Neurites: true, Soma: true, Connectors: true}
}

// Scene is an ordered collection of objects sharing one unit conversion.
type Scene struct {
	// Conversion scales CATMAID coordinates (usually nm) into scene
	// units.
	Conversion float64

	objects []*Object
}

// New creates an empty scene with the standard 1/10000 nm conversion.
func New() *Scene {
	return &Scene{Conversion: 1.0 / 10000}
}

// convert maps a CATMAID coordinate into scene space: scaled, y and z
// swapped, y inverted.
func (s *Scene) convert(x, y, z float64) mesh.Vec3 {
	return mesh.Vec3{
		X: x * s.Conversion,
		Y: z * s.Conversion,
		Z: -y * s.Conversion,
	}
}

// Add builds scene objects for a neuron.
func (s *Scene) Add(n *neuron.Neuron, opts AddOptions) error {
	if opts.Neurites {
		s.addNeurites(n, opts.UseRadii)
	}
	if opts.Soma {
		if err := s.addSoma(n, opts.SphereResolution); err != nil {
			return err
		}
	}
	if opts.Connectors {
		s.addConnectors(n)
	}
	return nil
}

func (s *Scene) addNeurites(n *neuron.Neuron, useRadii bool) {
	ix := n.Index()
	obj := &Object{
		Name:       fmt.Sprintf("#%d - %s", n.SkeletonID, n.Name),
		Kind:       KindNeurites,
		SkeletonID: n.SkeletonID,
		Relation:   -1,
		Color:      DefaultNeuronColor,
	}
	for _, seg := range n.Segments() {
		line := make([]mesh.Vec3, len(seg))
		var radii []float64
		if useRadii {
			radii = make([]float64, len(seg))
		}
		for i, tn := range seg {
			nd := n.Nodes[ix[tn]]
			line[i] = s.convert(nd.X, nd.Y, nd.Z)
			if useRadii {
				radii[i] = nd.Radius * s.Conversion
			}
		}
		obj.Lines = append(obj.Lines, line)
		if useRadii {
			obj.Radii = append(obj.Radii, radii)
		}
	}
	s.objects = append(s.objects, obj)
}

func (s *Scene) addSoma(n *neuron.Neuron, resolution int) error {
	if resolution == 0 {
		resolution = 8
	}
	ix := n.Index()
	for _, tn := range n.Soma() {
		i, ok := ix[tn]
		if !ok {
			continue
		}
		nd := n.Nodes[i]
		radius := nd.Radius * s.Conversion
		if radius <= 0 {
			continue
		}
		sphere, err := mesh.Sphere(radius, resolution, 2*resolution)
		if err != nil {
			return err
		}
		sphere.Translate(s.convert(nd.X, nd.Y, nd.Z))
		s.objects = append(s.objects, &Object{
			Name:       fmt.Sprintf("Soma of #%d", n.SkeletonID),
			Kind:       KindSoma,
			SkeletonID: n.SkeletonID,
			Relation:   -1,
			Color:      DefaultNeuronColor,
			Mesh:       sphere,
		})
	}
	return nil
}

func (s *Scene) addConnectors(n *neuron.Neuron) {
	ix := n.Index()
	relations := []int{
		neuron.RelPresynaptic, neuron.RelPostsynaptic,
		neuron.RelGapJunction, neuron.RelAbutting,
	}
	for _, rel := range relations {
		style := connectorStyle[rel]
		var lines [][]mesh.Vec3
		for _, c := range n.Connectors {
			if c.Relation != rel {
				continue
			}
			i, ok := ix[c.TreenodeID]
			if !ok {
				continue
			}
			nd := n.Nodes[i]
			lines = append(lines, []mesh.Vec3{
				s.convert(c.X, c.Y, c.Z),
				s.convert(nd.X, nd.Y, nd.Z),
			})
		}
		if len(lines) == 0 {
			continue
		}
		s.objects = append(s.objects, &Object{
			Name:       fmt.Sprintf("%s of #%d", style.name, n.SkeletonID),
			Kind:       KindConnectors,
			SkeletonID: n.SkeletonID,
			Relation:   rel,
			Color:      style.color,
			Lines:      lines,
		})
	}
}

// AddScatter stamps a sphere marker at every point. Points are given in
// CATMAID coordinates.
func (s *Scene) AddScatter(name string, points [][3]float64, radius float64, resolution int) error {
	if resolution == 0 {
		resolution = 7
	}
	converted := make([]mesh.Vec3, len(points))
	for i, p := range points {
		converted[i] = s.convert(p[0], p[1], p[2])
	}
	m, err := mesh.Scatter(converted, radius, resolution)
	if err != nil {
		return err
	}
	s.objects = append(s.objects, &Object{
		Name:     name,
		Kind:     KindScatter,
		Relation: -1,
		Color:    DefaultNeuronColor,
		Mesh:     m,
	})
	return nil
}

// AddVolume adds a pre-built mesh (e.g. a CATMAID volume) to the scene,
// converting its vertices from CATMAID space.
func (s *Scene) AddVolume(name string, verts [][3]float64, faces [][]int) error {
	m := &mesh.Mesh{
		Verts: make([]mesh.Vec3, len(verts)),
		Faces: faces,
	}
	for i, v := range verts {
		m.Verts[i] = s.convert(v[0], v[1], v[2])
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("volume %q: %w", name, err)
	}
	s.objects = append(s.objects, &Object{
		Name:     name,
		Kind:     KindVolume,
		Relation: -1,
		Color:    DefaultNeuronColor,
		Mesh:     m,
	})
	return nil
}

// Objects returns all objects in insertion order.
func (s *Scene) Objects() []*Object {
	return s.objects
}

// Clear removes everything from the scene.
func (s *Scene) Clear() {
	s.objects = nil
}

// Filter returns the objects of the given kind, optionally restricted to
// the given skeleton IDs.
func (s *Scene) Filter(kind Kind, skids ...int64) ObjectList {
	want := make(map[int64]bool, len(skids))
	for _, id := range skids {
		want[id] = true
	}
	var out ObjectList
	for _, obj := range s.objects {
		if obj.Kind != kind {
			continue
		}
		if len(want) > 0 && !want[obj.SkeletonID] {
			continue
		}
		out = append(out, obj)
	}
	return out
}

// Select returns every object belonging to the given skeletons.
func (s *Scene) Select(skids ...int64) ObjectList {
	want := make(map[int64]bool, len(skids))
	for _, id := range skids {
		want[id] = true
	}
	var out ObjectList
	for _, obj := range s.objects {
		if want[obj.SkeletonID] {
			out = append(out, obj)
		}
	}
	return out
}

// Delete removes the listed objects from the scene.
func (s *Scene) Delete(list ObjectList) {
	drop := make(map[*Object]bool, len(list))
	for _, obj := range list {
		drop[obj] = true
	}
	kept := s.objects[:0]
	for _, obj := range s.objects {
		if !drop[obj] {
			kept = append(kept, obj)
		}
	}
	s.objects = kept
}

// WriteOBJ renders all visible objects as Wavefront OBJ.
func (s *Scene) WriteOBJ(w io.Writer) error {
	var objs []mesh.OBJObject
	for _, obj := range s.objects {
		if obj.Hidden {
			continue
		}
		objs = append(objs, mesh.OBJObject{
			Name:  obj.Name,
			Mesh:  obj.Mesh,
			Lines: obj.Lines,
		})
	}
	return mesh.WriteOBJ(w, objs)
}

// ObjectList is a selection of scene objects.
type ObjectList []*Object

// SetColor recolors every object in the list.
func (l ObjectList) SetColor(c Color) {
	for _, obj := range l {
		obj.Color = c
	}
}

// Hide marks every object in the list as hidden.
func (l ObjectList) Hide() {
	for _, obj := range l {
		obj.Hidden = true
	}
}

// Unhide marks every object in the list as visible.
func (l ObjectList) Unhide() {
	for _, obj := range l {
		obj.Hidden = false
	}
}

// HideOthers hides every scene object not in the list and unhides the
// listed ones.
func (l ObjectList) HideOthers(s *Scene) {
	in := make(map[*Object]bool, len(l))
	for _, obj := range l {
		in[obj] = true
	}
	for _, obj := range s.objects {
		obj.Hidden = !in[obj]
	}
}

// Names returns the object names in list order.
func (l ObjectList) Names() []string {
	names := make([]string, len(l))
	for i, obj := range l {
		names[i] = obj.Name
	}
	return names
}

type selectionEntry struct {
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	SkeletonID int64      `json:"skeleton_id"`
	Color      [3]float64 `json:"color"`
	Opacity    float64    `json:"opacity"`
}

// SelectionJSON serializes the list as a selection file: name, kind,
// skeleton ID, color and opacity per object.
func (l ObjectList) SelectionJSON() ([]byte, error) {
	entries := make([]selectionEntry, len(l))
	for i, obj := range l {
		entries[i] = selectionEntry{
			Name:       obj.Name,
			Kind:       obj.Kind.String(),
			SkeletonID: obj.SkeletonID,
			Color:      [3]float64{obj.Color.R, obj.Color.G, obj.Color.B},
			Opacity:    obj.Color.A,
		}
	}
	return json.MarshalIndent(entries, "", "  ")
}

package mesh

// Scatter stamps one sphere of the given radius at every point and merges
// them into a single mesh: the base sphere's vertices are offset spatially
// per point, its face indices by the number of vertices already emitted.
func Scatter(points []Vec3, radius float64, resolution int) (*Mesh, error) {
	base, err := Sphere(radius, resolution, resolution)
	if err != nil {
		return nil, err
	}

	nVerts := len(base.Verts)
	out := &Mesh{
		Verts: make([]Vec3, 0, nVerts*len(points)),
		Faces: make([][]int, 0, len(base.Faces)*len(points)),
	}
	for i, p := range points {
		for _, v := range base.Verts {
			out.Verts = append(out.Verts, v.Add(p))
		}
		for _, f := range base.Faces {
			face := make([]int, len(f))
			for j, ix := range f {
				face[j] = ix + i*nVerts
			}
			out.Faces = append(out.Faces, face)
		}
	}
	return out, nil
}

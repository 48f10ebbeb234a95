package mesh

import (
	"fmt"
	"math"
)

// Sphere builds a closed UV sphere of the given radius: one vertex per
// pole, nrPolar-2 rings of nrAzimuthal vertices in between, for a total of
// (nrPolar-2)*nrAzimuthal + 2 vertices. The pole caps are triangle fans;
// the nrPolar-3 bands between consecutive rings are quads. Both
// resolutions must be at least 3.
func Sphere(radius float64, nrPolar, nrAzimuthal int) (*Mesh, error) {
	if nrPolar < 3 || nrAzimuthal < 3 {
		return nil, fmt.Errorf("sphere resolution must be at least 3, got polar=%d azimuthal=%d", nrPolar, nrAzimuthal)
	}

	dPolar := math.Pi / float64(nrPolar-1)
	dAzimuthal := 2 * math.Pi / float64(nrAzimuthal)

	verts := make([]Vec3, 0, (nrPolar-2)*nrAzimuthal+2)
	verts = append(verts, Vec3{0, 0, radius}) // top pole
	for iPolar := 1; iPolar < nrPolar-1; iPolar++ {
		polar := dPolar * float64(iPolar)
		cosP, sinP := math.Cos(polar), math.Sin(polar)
		for iAz := 0; iAz < nrAzimuthal; iAz++ {
			az := dAzimuthal * float64(iAz)
			verts = append(verts, Vec3{
				X: radius * sinP * math.Cos(az),
				Y: radius * sinP * math.Sin(az),
				Z: radius * cosP,
			})
		}
	}
	verts = append(verts, Vec3{0, 0, -radius}) // bottom pole

	var faces [][]int

	// Fan from the top pole to the first ring.
	for iAz := 0; iAz < nrAzimuthal; iAz++ {
		next := (iAz + 1) % nrAzimuthal
		faces = append(faces, []int{0, iAz + 1, next + 1})
	}

	// Quad bands between consecutive rings.
	for iPolar := 0; iPolar < nrPolar-3; iPolar++ {
		start := iPolar*nrAzimuthal + 1
		for iAz := 0; iAz < nrAzimuthal; iAz++ {
			next := (iAz + 1) % nrAzimuthal
			faces = append(faces, []int{
				start + iAz,
				start + iAz + nrAzimuthal,
				start + next + nrAzimuthal,
				start + next,
			})
		}
	}

	// Fan from the last ring to the bottom pole.
	last := len(verts) - 1
	start := last - nrAzimuthal
	for iAz := 0; iAz < nrAzimuthal; iAz++ {
		next := (iAz + 1) % nrAzimuthal
		faces = append(faces, []int{start + iAz, last, start + next})
	}

	return &Mesh{Verts: verts, Faces: faces}, nil
}

package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// OBJObject is one named object of a Wavefront OBJ file: an indexed face
// set, a set of polylines, or both.
type OBJObject struct {
	Name  string
	Mesh  *Mesh
	Lines [][]Vec3
}

// WriteOBJ writes objects as Wavefront OBJ. Meshes become f records (quads
// stay quads — OBJ supports arbitrary polygons), polylines become l
// records. Vertex indices are 1-based and global across objects, per the
// format.
func WriteOBJ(w io.Writer, objects []OBJObject) error {
	bw := bufio.NewWriter(w)
	offset := 0

	writeVert := func(v Vec3) error {
		_, err := fmt.Fprintf(bw, "v %s %s %s\n",
			strconv.FormatFloat(v.X, 'g', -1, 64),
			strconv.FormatFloat(v.Y, 'g', -1, 64),
			strconv.FormatFloat(v.Z, 'g', -1, 64))
		return err
	}

	for _, obj := range objects {
		if _, err := fmt.Fprintf(bw, "o %s\n", obj.Name); err != nil {
			return err
		}

		if obj.Mesh != nil {
			if err := obj.Mesh.Validate(); err != nil {
				return fmt.Errorf("object %q: %w", obj.Name, err)
			}
			for _, v := range obj.Mesh.Verts {
				if err := writeVert(v); err != nil {
					return err
				}
			}
			for _, f := range obj.Mesh.Faces {
				if _, err := fmt.Fprint(bw, "f"); err != nil {
					return err
				}
				for _, ix := range f {
					if _, err := fmt.Fprintf(bw, " %d", offset+ix+1); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintln(bw); err != nil {
					return err
				}
			}
			offset += len(obj.Mesh.Verts)
		}

		for _, line := range obj.Lines {
			for _, v := range line {
				if err := writeVert(v); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(bw, "l"); err != nil {
				return err
			}
			for i := range line {
				if _, err := fmt.Fprintf(bw, " %d", offset+i+1); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(bw); err != nil {
				return err
			}
			offset += len(line)
		}
	}
	return bw.Flush()
}

package mesh

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteOBJ(t *testing.T) {
	tri := &Mesh{
		Verts: []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces: [][]int{{0, 1, 2}},
	}
	objects := []OBJObject{
		{Name: "marker", Mesh: tri},
		{Name: "trace", Lines: [][]Vec3{{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}}},
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, objects); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	out := buf.String()

	wants := []string{
		"o marker",
		"f 1 2 3",
		"o trace",
		// Line indices continue after the mesh's three vertices.
		"l 4 5 6",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := strings.Count(out, "v "); got != 6 {
		t.Errorf("expected 6 vertex records, counted %d", got)
	}
}

func TestWriteOBJ_QuadsStayQuads(t *testing.T) {
	m, err := Sphere(1, 5, 4)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, []OBJObject{{Name: "soma", Mesh: m}}); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}

	var quadLines int
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "f ") && len(strings.Fields(line)) == 5 {
			quadLines++
		}
	}
	// Sphere(5, 4) has (5-3)*4 quad faces.
	if quadLines != 8 {
		t.Errorf("expected 8 quad faces, got %d", quadLines)
	}
}

func TestWriteOBJ_InvalidMesh(t *testing.T) {
	bad := &Mesh{Verts: []Vec3{{0, 0, 0}}, Faces: [][]int{{0, 1, 2}}}
	if err := WriteOBJ(&bytes.Buffer{}, []OBJObject{{Name: "bad", Mesh: bad}}); err == nil {
		t.Fatal("expected error for out-of-range face index")
	}
}

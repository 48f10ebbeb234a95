package swc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neurita/arbor/internal/neuron"
)

const chainSWC = `# test file
1 0 0 0 0 1 -1
2 0 0 0 1 1 1
3 1 0 0 2 1 2
4 6 0 0 3 1 3
5 0 0 0 4 1 4
`

func TestRead_LinearChain(t *testing.T) {
	n, err := Read(strings.NewReader(chainSWC), DefaultReadOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(n.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(n.Nodes))
	}
	roots := n.Roots()
	if len(roots) != 1 || roots[0] != 1 {
		t.Errorf("expected single root 1, got %v", roots)
	}
	if soma := n.Soma(); len(soma) != 1 || soma[0] != 3 {
		t.Errorf("expected soma [3], got %v", soma)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("imported neuron invalid: %v", err)
	}
	if n.SWCHeader != "# test file" {
		t.Errorf("header not preserved: %q", n.SWCHeader)
	}
	// Label column lands in the tag table keyed by label value.
	if ids := n.Tags["6"]; len(ids) != 1 || ids[0] != 4 {
		t.Errorf("expected tag 6 -> [4], got %v", ids)
	}
}

func TestRead_NegativeParentIsRoot(t *testing.T) {
	n, err := Read(strings.NewReader("1 0 0 0 0 1 -5\n"), DefaultReadOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n.Nodes[0].ParentID != neuron.NoParent {
		t.Errorf("negative parent should become root, got %d", n.Nodes[0].ParentID)
	}
}

func TestRead_MalformedRowDroppedAndRerooted(t *testing.T) {
	// Node 2 has an unparseable coordinate; it must be dropped and its
	// child promoted to root instead of dangling.
	input := `1 0 0 0 0 1 -1
2 0 0 bogus 1 1 1
3 0 0 0 2 1 2
4 0 0 0 3 1 3
`
	n, err := Read(strings.NewReader(input), DefaultReadOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(n.Nodes) != 3 {
		t.Fatalf("expected 3 surviving nodes, got %d", len(n.Nodes))
	}
	roots := n.Roots()
	if len(roots) != 2 || roots[0] != 1 || roots[1] != 3 {
		t.Errorf("expected roots [1 3], got %v", roots)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("re-rooted neuron invalid: %v", err)
	}
}

func TestRead_ParentCycleBroken(t *testing.T) {
	// Nodes 1 and 2 reference each other; node 3 hangs off the cycle. The
	// importer must demote one cycle member to root so parent chains
	// terminate.
	input := `1 0 0 0 0 1 2
2 0 0 0 1 1 1
3 0 0 0 2 1 1
`
	n, err := Read(strings.NewReader(input), DefaultReadOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(n.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(n.Nodes))
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("imported neuron invalid: %v", err)
	}
	// The smallest cycle member becomes the root.
	if roots := n.Roots(); len(roots) != 1 || roots[0] != 1 {
		t.Errorf("expected root [1], got %v", roots)
	}

	// Downstream walks must terminate and cover every node.
	covered := make(map[int64]bool)
	for _, seg := range n.Segments() {
		for _, id := range seg {
			covered[id] = true
		}
	}
	if len(covered) != 3 {
		t.Errorf("segments cover %d of 3 nodes", len(covered))
	}
	rows, _, err := Table(n, WriteOptions{})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("export emitted %d of 3 rows", len(rows))
	}
}

func TestRead_MissingRadiusKeepsRow(t *testing.T) {
	n, err := Read(strings.NewReader("1 0 1 2 3 bogus -1\n"), DefaultReadOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(n.Nodes) != 1 {
		t.Fatalf("row with bad radius should survive, got %d nodes", len(n.Nodes))
	}
	if n.Nodes[0].Radius != -1 {
		t.Errorf("expected unknown radius -1, got %g", n.Nodes[0].Radius)
	}
}

func TestRead_SynapseLabels(t *testing.T) {
	input := `1 1 0 0 0 5 -1
2 0 0 0 1 1 1
3 7 0 0 2 1 2
4 8 0 0 3 1 3
`
	opts := DefaultReadOptions()
	opts.PreLabel = 7
	opts.PostLabel = 8

	n, err := Read(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(n.Connectors) != 2 {
		t.Fatalf("expected 2 connectors, got %d", len(n.Connectors))
	}
	pre := n.Presynapses()
	if len(pre) != 1 || pre[0].TreenodeID != 3 || pre[0].ConnectorID != neuron.NoConnector {
		t.Errorf("unexpected presynapses: %v", pre)
	}
	post := n.Postsynapses()
	if len(post) != 1 || post[0].TreenodeID != 4 {
		t.Errorf("unexpected postsynapses: %v", post)
	}
	if soma := n.Soma(); len(soma) != 1 || soma[0] != 1 {
		t.Errorf("expected soma [1], got %v", soma)
	}
}

func TestRead_NoUsableRows(t *testing.T) {
	if _, err := Read(strings.NewReader("# only comments\n"), DefaultReadOptions()); err == nil {
		t.Fatal("expected error for input without rows")
	}
	if _, err := Read(strings.NewReader("x y z\n"), DefaultReadOptions()); err == nil {
		t.Fatal("expected error when every row is malformed")
	}
}

func TestReadFile_NumericFilenameBecomesID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3080184.swc")
	if err := os.WriteFile(path, []byte(chainSWC), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := ReadFile(path, DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n.SkeletonID != 3080184 {
		t.Errorf("expected skeleton ID 3080184, got %d", n.SkeletonID)
	}
	if n.Name != "3080184" {
		t.Errorf("expected name from filename, got %q", n.Name)
	}
}

func TestReadFile_RandomIDFits30Bits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my_neuron.swc")
	if err := os.WriteFile(path, []byte(chainSWC), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := ReadFile(path, DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n.SkeletonID < 0 || n.SkeletonID >= 1<<30 {
		t.Errorf("generated ID %d outside 30-bit range", n.SkeletonID)
	}
	if n.Name != "my_neuron" {
		t.Errorf("expected name from filename stem, got %q", n.Name)
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.swc", "2.swc", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(chainSWC), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "3.swc"), []byte(chainSWC), 0o644); err != nil {
		t.Fatal(err)
	}

	neurons, err := ReadDir(dir, DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(neurons) != 2 {
		t.Fatalf("expected 2 neurons without recursion, got %d", len(neurons))
	}

	opts := DefaultReadOptions()
	opts.Recursive = true
	neurons, err = ReadDir(dir, opts)
	if err != nil {
		t.Fatalf("ReadDir recursive: %v", err)
	}
	if len(neurons) != 3 {
		t.Fatalf("expected 3 neurons with recursion, got %d", len(neurons))
	}
}

func TestReadDir_Empty(t *testing.T) {
	if _, err := ReadDir(t.TempDir(), DefaultReadOptions()); err == nil {
		t.Fatal("expected error for directory without .swc files")
	}
}

func TestFromRecords(t *testing.T) {
	cols := []string{"treenode_id", "label", "x", "y", "z", "radius", "parent_id"}
	recs := [][]string{
		{"1", "0", "0", "0", "0", "1", "-1"},
		{"2", "0", "0", "0", "1", "1", "1"},
	}
	opts := DefaultReadOptions()
	opts.ID = 99

	n, err := FromRecords(cols, recs, opts)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if len(n.Nodes) != 2 || n.SkeletonID != 99 {
		t.Errorf("unexpected neuron: %d nodes, id %d", len(n.Nodes), n.SkeletonID)
	}
}

func TestFromRecords_NodeIDAlias(t *testing.T) {
	cols := []string{"node_id", "label", "x", "y", "z", "radius", "parent_id"}
	recs := [][]string{{"1", "0", "0", "0", "0", "1", "-1"}}
	if _, err := FromRecords(cols, recs, DefaultReadOptions()); err != nil {
		t.Fatalf("node_id alias rejected: %v", err)
	}
}

func TestFromRecords_MissingColumns(t *testing.T) {
	cols := []string{"treenode_id", "label", "z", "radius", "parent_id"}
	_, err := FromRecords(cols, nil, DefaultReadOptions())
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	msg := err.Error()
	if !strings.Contains(msg, "x") || !strings.Contains(msg, "y") {
		t.Errorf("error should name missing columns x and y, got %q", msg)
	}
}

// Package swc converts between neurons and the SWC plain-text morphology
// format: whitespace-delimited rows of "PointNo Label X Y Z Radius Parent"
// with #-prefixed header comments, Parent == -1 denoting a root.
package swc

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"neurita/arbor/internal/neuron"
)

// Columns of an SWC row, in order.
var Columns = []string{"treenode_id", "label", "x", "y", "z", "radius", "parent_id"}

// ReadOptions control how SWC input is turned into a neuron.
type ReadOptions struct {
	// Name overrides the neuron name (default: filename stem).
	Name string
	// ID overrides the skeleton ID. If zero, a numeric filename is used,
	// otherwise a random 30-bit ID is generated (30 bits to stay safe for
	// 32-bit-unsafe downstream interop).
	ID int64
	// ImportLabels copies the label column into the neuron's tag table,
	// keyed by the label's decimal value.
	ImportLabels bool
	// PreLabel/PostLabel extract rows with a matching label into the
	// connector table as pre-/postsynapses. Zero disables extraction.
	PreLabel  int
	PostLabel int
	// SomaLabel tags nodes carrying this label as soma. Zero disables
	// soma detection. Note soma detection goes by label, not radius.
	SomaLabel int
	// Recursive makes ReadDir descend into subdirectories.
	Recursive bool
}

// DefaultReadOptions returns the standard import settings: labels imported,
// soma tagged from label 1, no synapse extraction.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{ImportLabels: true, SomaLabel: neuron.LabelSoma}
}

// rawRow is a parsed SWC row before filtering. Unparseable numeric fields
// are recorded as absent rather than failing the whole file.
type rawRow struct {
	id, parent         int64
	x, y, z, radius    float64
	label              int
	hasID, hasParent   bool
	hasX, hasY, hasZ   bool
	hasRadius          bool
}

func parseInt(s string) (int64, bool) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	// Tolerate integer-valued floats ("42.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseRow(fields []string) rawRow {
	var r rawRow
	get := func(i int) (string, bool) {
		if i < len(fields) {
			return fields[i], true
		}
		return "", false
	}
	if s, ok := get(0); ok {
		r.id, r.hasID = parseInt(s)
	}
	if s, ok := get(1); ok {
		if v, ok := parseInt(s); ok {
			r.label = int(v)
		}
	}
	if s, ok := get(2); ok {
		r.x, r.hasX = parseFloat(s)
	}
	if s, ok := get(3); ok {
		r.y, r.hasY = parseFloat(s)
	}
	if s, ok := get(4); ok {
		r.z, r.hasZ = parseFloat(s)
	}
	if s, ok := get(5); ok {
		r.radius, r.hasRadius = parseFloat(s)
	}
	if s, ok := get(6); ok {
		r.parent, r.hasParent = parseInt(s)
	}
	return r
}

// Read parses SWC text into a neuron. The source name (used for naming and
// numeric-ID detection when ReadOptions leave them unset) is empty; use
// ReadFile for file-derived identity.
func Read(r io.Reader, opts ReadOptions) (*neuron.Neuron, error) {
	return read(r, "", opts)
}

// ReadFile parses a single .swc file.
func ReadFile(path string, opts ReadOptions) (*neuron.Neuron, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := read(f, path, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// ReadDir imports every .swc file in dir, each independently. An empty
// directory is an error. A failure on one file aborts with an error naming
// that file; already-imported neurons are not silently dropped with it.
func ReadDir(dir string, opts ReadOptions) ([]*neuron.Neuron, error) {
	var paths []string
	if opts.Recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".swc") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".swc") {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .swc files found in folder %q", dir)
	}
	sort.Strings(paths)

	neurons := make([]*neuron.Neuron, 0, len(paths))
	for _, p := range paths {
		n, err := ReadFile(p, opts)
		if err != nil {
			return neurons, err
		}
		neurons = append(neurons, n)
	}
	return neurons, nil
}

// FromRecords builds a neuron from a pre-split table. The columns slice
// names the fields of each record; "node_id" is accepted as an alias for
// "treenode_id". Missing required columns are an error naming them.
func FromRecords(columns []string, records [][]string, opts ReadOptions) (*neuron.Neuron, error) {
	colIx := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "node_id" {
			c = "treenode_id"
		}
		colIx[c] = i
	}

	var missing []string
	for _, c := range Columns {
		if _, ok := colIx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("SWC table is missing required columns: %s", strings.Join(missing, ","))
	}

	rows := make([]rawRow, 0, len(records))
	for _, rec := range records {
		fields := make([]string, len(Columns))
		for i, c := range Columns {
			if colIx[c] < len(rec) {
				fields[i] = rec[colIx[c]]
			}
		}
		rows = append(rows, parseRow(fields))
	}
	return buildNeuron(rows, nil, "", opts)
}

func read(r io.Reader, path string, opts ReadOptions) (*neuron.Neuron, error) {
	var header []string
	var rows []rawRow

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			header = append(header, line)
			continue
		}
		rows = append(rows, parseRow(strings.Fields(line)))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return buildNeuron(rows, header, path, opts)
}

func buildNeuron(rows []rawRow, header []string, path string, opts ReadOptions) (*neuron.Neuron, error) {
	// Drop rows missing an ID, parent or coordinate. Rows left referencing
	// a dropped parent are promoted to roots afterwards.
	kept := rows[:0]
	for _, r := range rows {
		if r.hasID && r.hasParent && r.hasX && r.hasY && r.hasZ {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no usable node rows")
	}

	ids := make(map[int64]bool, len(kept))
	for _, r := range kept {
		ids[r.id] = true
	}

	nodes := make([]neuron.Node, 0, len(kept))
	for _, r := range kept {
		parent := r.parent
		// Negative parents mark roots; so do parents that no longer
		// exist after row filtering.
		if parent < 0 || !ids[parent] {
			parent = neuron.NoParent
		}
		radius := r.radius
		if !r.hasRadius {
			radius = -1 // CATMAID convention for unknown radius
		}
		nodes = append(nodes, neuron.Node{
			TreenodeID: r.id,
			ParentID:   parent,
			Label:      r.label,
			X:          r.x,
			Y:          r.y,
			Z:          r.z,
			Radius:     radius,
			Confidence: 5,
			CreatorID:  0,
		})
	}

	breakCycles(nodes)

	n := &neuron.Neuron{
		Nodes: nodes,
		Tags:  make(map[string][]int64),
	}

	fname := ""
	if path != "" {
		base := filepath.Base(path)
		fname = strings.TrimSuffix(base, filepath.Ext(base))
	}
	n.Filename = fname
	n.SWCHeader = strings.Join(header, "\n")

	switch {
	case opts.ID != 0:
		n.SkeletonID = opts.ID
	case fname != "" && isNumeric(fname):
		n.SkeletonID, _ = strconv.ParseInt(fname, 10, 64)
	default:
		n.SkeletonID = rand.Int63n(1 << 30)
	}

	if opts.Name != "" {
		n.Name = opts.Name
	} else if fname != "" {
		n.Name = fname
	} else {
		n.Name = "SWC"
	}

	if opts.PreLabel != 0 {
		n.Connectors = append(n.Connectors, labelConnectors(nodes, opts.PreLabel, neuron.RelPresynaptic)...)
	}
	if opts.PostLabel != 0 {
		n.Connectors = append(n.Connectors, labelConnectors(nodes, opts.PostLabel, neuron.RelPostsynaptic)...)
	}

	if opts.ImportLabels {
		byLabel := make(map[int][]int64)
		for _, nd := range nodes {
			byLabel[nd.Label] = append(byLabel[nd.Label], nd.TreenodeID)
		}
		for label, tns := range byLabel {
			n.TagLabel(label, tns)
		}
	}
	if opts.SomaLabel != 0 {
		var soma []int64
		for _, nd := range nodes {
			if nd.Label == opts.SomaLabel {
				soma = append(soma, nd.TreenodeID)
			}
		}
		if len(soma) > 0 {
			n.Tags["soma"] = soma
		}
	}

	return n, nil
}

// breakCycles re-roots one member of every parent-reference cycle, the
// same demotion applied to orphaned rows. A valid forest never contains a
// cycle, but a crafted file can; without this, parent chains would never
// terminate. The cycle member with the smallest treenode ID becomes the
// root, keeping the result deterministic.
func breakCycles(nodes []neuron.Node) {
	ix := make(map[int64]int, len(nodes))
	for i, nd := range nodes {
		ix[nd.TreenodeID] = i
	}

	terminates := make(map[int64]bool, len(nodes))
	for _, nd := range nodes {
		var path []int64
		pos := make(map[int64]int)
		id := nd.TreenodeID
		for !terminates[id] {
			if at, ok := pos[id]; ok {
				// path[at:] loops back to id.
				newRoot := path[at]
				for _, v := range path[at+1:] {
					if v < newRoot {
						newRoot = v
					}
				}
				nodes[ix[newRoot]].ParentID = neuron.NoParent
				break
			}
			pos[id] = len(path)
			path = append(path, id)
			p := nodes[ix[id]].ParentID
			if p < 0 {
				break
			}
			id = p
		}
		for _, v := range path {
			terminates[v] = true
		}
	}
}

func labelConnectors(nodes []neuron.Node, label, relation int) []neuron.Connector {
	var out []neuron.Connector
	for _, nd := range nodes {
		if nd.Label == label {
			out = append(out, neuron.Connector{
				TreenodeID:  nd.TreenodeID,
				ConnectorID: neuron.NoConnector,
				Relation:    relation,
				X:           nd.X,
				Y:           nd.Y,
				Z:           nd.Z,
			})
		}
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

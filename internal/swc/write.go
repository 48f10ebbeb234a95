package swc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"neurita/arbor/internal/neuron"
)

// WriteOptions control SWC export.
type WriteOptions struct {
	// ExportSynapses labels pre-/postsynapse attachment points 7/8. A
	// treenode carrying both can only hold one label; the postsynapse
	// wins. This is a documented lossy edge of the format.
	ExportSynapses bool
	// MinRadius clamps radii below it up to it. CATMAID uses -1 for
	// unknown radii, which many SWC consumers choke on.
	MinRadius float64
}

// Row is one line of an exported SWC table.
type Row struct {
	Index  int64
	Label  int
	X      float64
	Y      float64
	Z      float64
	Radius float64
	Parent int64
}

// Table reorders and renumbers a neuron's nodes into canonical SWC rows.
// Nodes are emitted segment by segment so that every parent row precedes
// the rows referencing it, with new sequential IDs starting at 1. The
// returned map records old treenode ID -> new ID.
func Table(n *neuron.Neuron, opts WriteOptions) ([]Row, map[int64]int64, error) {
	if len(n.Nodes) == 0 {
		return nil, nil, fmt.Errorf("neuron %d has no nodes", n.SkeletonID)
	}

	// Walk every segment root-to-leaf; consecutive segments share their
	// final node with an earlier one, so duplicates keep the first
	// occurrence only.
	var ordered []int64
	seen := make(map[int64]bool, len(n.Nodes))
	for _, seg := range n.Segments() {
		for i := len(seg) - 1; i >= 0; i-- {
			if seen[seg[i]] {
				continue
			}
			seen[seg[i]] = true
			ordered = append(ordered, seg[i])
		}
	}

	tn2ix := make(map[int64]int64, len(ordered))
	for i, tn := range ordered {
		tn2ix[tn] = int64(i + 1)
	}

	// Structural labels: fork points and end points from topology, soma
	// from the neuron's tags, synapses on request.
	labels := make(map[int64]int, len(ordered))
	types := n.Classify()
	for tn, t := range types {
		switch t {
		case neuron.TypeBranch:
			labels[tn] = neuron.LabelFork
		case neuron.TypeEnd:
			labels[tn] = neuron.LabelEnd
		}
	}
	for _, tn := range n.Soma() {
		labels[tn] = neuron.LabelSoma
	}
	if opts.ExportSynapses {
		for _, c := range n.Presynapses() {
			labels[c.TreenodeID] = neuron.LabelPresynapse
		}
		for _, c := range n.Postsynapses() {
			labels[c.TreenodeID] = neuron.LabelPostsynapse
		}
	}

	ix := n.Index()
	rows := make([]Row, 0, len(ordered))
	for _, tn := range ordered {
		nd := n.Nodes[ix[tn]]
		parent := int64(-1)
		if nd.ParentID >= 0 {
			if p, ok := tn2ix[nd.ParentID]; ok {
				parent = p
			}
		}
		radius := nd.Radius
		if radius < opts.MinRadius {
			radius = opts.MinRadius
		}
		rows = append(rows, Row{
			Index:  tn2ix[tn],
			Label:  labels[tn],
			X:      nd.X,
			Y:      nd.Y,
			Z:      nd.Z,
			Radius: radius,
			Parent: parent,
		})
	}
	return rows, tn2ix, nil
}

// Write emits n as SWC text and returns the old -> new treenode ID map.
func Write(w io.Writer, n *neuron.Neuron, opts WriteOptions) (map[int64]int64, error) {
	rows, tn2ix, err := Table(n, opts)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(w)
	header := []string{
		"# SWC format file",
		"# based on specifications at http://research.mssm.edu/cnic/swc.html",
		"# Created by arbor (neurita/arbor)",
		"# PointNo Label X Y Z Radius Parent",
		"# Labels:",
		"# 0 = undefined",
		"# 1 = soma",
		"# 5 = fork point",
		"# 6 = end point",
	}
	if opts.ExportSynapses {
		header = append(header, "# 7 = presynapse", "# 8 = postsynapse")
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return nil, err
		}
	}

	for _, r := range rows {
		_, err := fmt.Fprintf(bw, "%d %d %s %s %s %s %d\n",
			r.Index, r.Label,
			fstr(r.X), fstr(r.Y), fstr(r.Z), fstr(r.Radius),
			r.Parent)
		if err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return tn2ix, nil
}

func fstr(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DefaultFilename is the export filename used when none is given.
func DefaultFilename(n *neuron.Neuron) string {
	return fmt.Sprintf("neuron_%d.swc", n.SkeletonID)
}

// WriteFile writes n to path. An empty path defaults to
// "neuron_<skeleton_id>.swc"; a directory path gets that default appended;
// a missing .swc extension is added. Returns the written path and the
// old -> new ID map.
func WriteFile(path string, n *neuron.Neuron, opts WriteOptions) (string, map[int64]int64, error) {
	switch {
	case path == "":
		path = DefaultFilename(n)
	case isDir(path):
		path = filepath.Join(path, DefaultFilename(n))
	case !strings.HasSuffix(path, ".swc"):
		path += ".swc"
	}

	f, err := os.Create(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	tn2ix, err := Write(f, n, opts)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", nil, err
	}
	return path, tn2ix, nil
}

// WriteAll exports one file per neuron. filenames may be nil (defaults for
// every neuron) or must match neurons in length. Each neuron is processed
// independently; failures are collected, not swallowed.
func WriteAll(neurons []*neuron.Neuron, filenames []string, opts WriteOptions) error {
	if filenames == nil {
		filenames = make([]string, len(neurons))
	}
	if len(filenames) != len(neurons) {
		return fmt.Errorf("got %d filenames for %d neurons", len(filenames), len(neurons))
	}

	var errs []error
	for i, n := range neurons {
		if _, _, err := WriteFile(filenames[i], n, opts); err != nil {
			errs = append(errs, fmt.Errorf("neuron %d: %w", n.SkeletonID, err))
		}
	}
	return errors.Join(errs...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

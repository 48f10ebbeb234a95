package neuron

import "sort"

// Segments decomposes the node forest into maximal unbranched-or-better
// paths, each ordered leaf to root. Segments are generated longest first;
// every segment after the first within a tree ends on a node already
// covered by an earlier segment (the shared branch point or root).
//
// This ordering is what the SWC exporter relies on: concatenating the
// reversed segments emits every parent before any node referencing it.
func (n *Neuron) Segments() [][]int64 {
	ix := n.Index()
	leaves := n.Leaves()

	// Distance to root in hops, for longest-first ordering. The walk
	// guards against cyclic parent references, which importers break but
	// hand-built tables may still carry.
	depth := func(id int64) int {
		d := 0
		seen := make(map[int64]bool)
		for {
			if seen[id] {
				return d
			}
			seen[id] = true
			nd := n.Nodes[ix[id]]
			if nd.ParentID < 0 {
				return d
			}
			if _, ok := ix[nd.ParentID]; !ok {
				return d
			}
			id = nd.ParentID
			d++
		}
	}
	depths := make(map[int64]int, len(leaves))
	for _, l := range leaves {
		depths[l] = depth(l)
	}
	sort.Slice(leaves, func(i, j int) bool {
		if depths[leaves[i]] != depths[leaves[j]] {
			return depths[leaves[i]] > depths[leaves[j]]
		}
		return leaves[i] < leaves[j]
	})

	visited := make(map[int64]bool, len(n.Nodes))
	var segments [][]int64
	for _, leaf := range leaves {
		if visited[leaf] {
			continue
		}
		var seg []int64
		id := leaf
		for {
			seg = append(seg, id)
			if visited[id] {
				break
			}
			visited[id] = true
			nd := n.Nodes[ix[id]]
			if nd.ParentID < 0 {
				break
			}
			if _, ok := ix[nd.ParentID]; !ok {
				break
			}
			id = nd.ParentID
		}
		segments = append(segments, seg)
	}
	return segments
}

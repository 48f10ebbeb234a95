package neuron

// UnionFind implements union-find over treenode IDs with path compression
// and union by rank. Used to count connected fragments after partial SWC
// imports.
type UnionFind struct {
	parent map[int64]int64
	rank   map[int64]int
	size   map[int64]int
}

// NewUnionFind creates a UnionFind where each ID is its own component.
func NewUnionFind(ids []int64) *UnionFind {
	uf := &UnionFind{
		parent: make(map[int64]int64, len(ids)),
		rank:   make(map[int64]int, len(ids)),
		size:   make(map[int64]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
		uf.rank[id] = 0
		uf.size[id] = 1
	}
	return uf
}

// Find returns the root of the component containing id, with path
// compression.
func (uf *UnionFind) Find(id int64) int64 {
	parent, ok := uf.parent[id]
	if !ok {
		return id
	}
	if parent != id {
		root := uf.Find(parent)
		uf.parent[id] = root
		return root
	}
	return id
}

// Union merges the components containing a and b. Returns true if they were
// separate.
func (uf *UnionFind) Union(a, b int64) bool {
	rootA := uf.Find(a)
	rootB := uf.Find(b)
	if rootA == rootB {
		return false
	}

	rankA := uf.rank[rootA]
	rankB := uf.rank[rootB]
	sizeA := uf.size[rootA]
	sizeB := uf.size[rootB]

	if rankA < rankB {
		uf.parent[rootA] = rootB
		uf.size[rootB] = sizeA + sizeB
	} else if rankA > rankB {
		uf.parent[rootB] = rootA
		uf.size[rootA] = sizeA + sizeB
	} else {
		uf.parent[rootB] = rootA
		uf.size[rootA] = sizeA + sizeB
		uf.rank[rootA]++
	}
	return true
}

// Components returns all connected components as slices of IDs.
func (uf *UnionFind) Components() [][]int64 {
	groups := make(map[int64][]int64)
	for id := range uf.parent {
		root := uf.Find(id)
		groups[root] = append(groups[root], id)
	}
	result := make([][]int64, 0, len(groups))
	for _, members := range groups {
		result = append(result, members)
	}
	return result
}

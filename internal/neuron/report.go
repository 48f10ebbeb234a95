package neuron

// Report summarizes the structure of a single neuron.
type Report struct {
	SkeletonID     int64   `json:"skeleton_id"`
	Name           string  `json:"neuron_name"`
	Nodes          int     `json:"nodes"`
	Connectors     int     `json:"connectors"`
	Presynapses    int     `json:"presynapses"`
	Postsynapses   int     `json:"postsynapses"`
	Roots          []int64 `json:"roots"`
	BranchPoints   int     `json:"branch_points"`
	EndPoints      int     `json:"end_points"`
	Components     int     `json:"components"`
	Segments       int     `json:"segments"`
	LongestSegment int     `json:"longest_segment"`
	CableLength    float64 `json:"cable_length"`
	Soma           []int64 `json:"soma,omitempty"`
}

// Summarize computes a structure report for n.
func Summarize(n *Neuron) *Report {
	segs := n.Segments()
	longest := 0
	for _, s := range segs {
		if len(s) > longest {
			longest = len(s)
		}
	}
	return &Report{
		SkeletonID:     n.SkeletonID,
		Name:           n.Name,
		Nodes:          len(n.Nodes),
		Connectors:     len(n.Connectors),
		Presynapses:    len(n.Presynapses()),
		Postsynapses:   len(n.Postsynapses()),
		Roots:          n.Roots(),
		BranchPoints:   len(n.BranchPoints()),
		EndPoints:      len(n.Leaves()),
		Components:     n.Components(),
		Segments:       len(segs),
		LongestSegment: longest,
		CableLength:    n.CableLength(),
		Soma:           n.Soma(),
	}
}

package neuron

import (
	"encoding/json"
	"fmt"
)

// jsonNeuron is the serialized form of a Neuron. Derived state (segments,
// classification) and anything carrying server credentials is deliberately
// not part of it.
type jsonNeuron struct {
	SkeletonID *int64             `json:"skeleton_id"`
	Name       string             `json:"neuron_name"`
	Nodes      []Node             `json:"nodes"`
	Connectors []Connector        `json:"connectors"`
	Tags       map[string][]int64 `json:"tags,omitempty"`
	SWCHeader  string             `json:"swc_header,omitempty"`
}

// ToJSON encodes neurons as a JSON array.
func ToJSON(neurons []*Neuron) ([]byte, error) {
	out := make([]jsonNeuron, len(neurons))
	for i, n := range neurons {
		skid := n.SkeletonID
		out[i] = jsonNeuron{
			SkeletonID: &skid,
			Name:       n.Name,
			Nodes:      n.Nodes,
			Connectors: n.Connectors,
			Tags:       n.Tags,
			SWCHeader:  n.SWCHeader,
		}
	}
	return json.Marshal(out)
}

// FromJSON decodes a JSON array produced by ToJSON. Entries without a
// skeleton_id are rejected.
func FromJSON(data []byte) ([]*Neuron, error) {
	var raw []jsonNeuron
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding neurons: %w", err)
	}

	neurons := make([]*Neuron, 0, len(raw))
	for i, r := range raw {
		if r.SkeletonID == nil {
			return nil, fmt.Errorf("neuron %d: missing data: skeleton_id", i)
		}
		neurons = append(neurons, &Neuron{
			SkeletonID: *r.SkeletonID,
			Name:       r.Name,
			Nodes:      r.Nodes,
			Connectors: r.Connectors,
			Tags:       r.Tags,
			SWCHeader:  r.SWCHeader,
		})
	}
	return neurons, nil
}

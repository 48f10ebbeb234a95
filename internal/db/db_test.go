package db

import (
	"path/filepath"
	"testing"

	"neurita/arbor/internal/neuron"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func storedNeuron(skid int64, name string) *neuron.Neuron {
	return &neuron.Neuron{
		SkeletonID: skid,
		Name:       name,
		SWCHeader:  "# original header\n",
		Nodes: []neuron.Node{
			{TreenodeID: 1, ParentID: neuron.NoParent, Label: 1, X: 0, Y: 0, Z: 0, Radius: 5, Confidence: 5},
			{TreenodeID: 2, ParentID: 1, X: 1, Y: 0, Z: 0, Radius: -1, Confidence: 5},
			{TreenodeID: 3, ParentID: 2, X: 2, Y: 0, Z: 0, Radius: 0.5, Confidence: 4, CreatorID: 7},
		},
		Connectors: []neuron.Connector{
			{TreenodeID: 3, ConnectorID: 99, Relation: neuron.RelPresynaptic, X: 2.5, Y: 0.5, Z: 0},
		},
		Tags: map[string][]int64{"soma": {1}, "ends": {3}},
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	d := testDB(t)
	orig := storedNeuron(42, "golden")

	if err := d.SaveNeuron(orig); err != nil {
		t.Fatalf("SaveNeuron: %v", err)
	}

	got, err := d.GetNeuron(42)
	if err != nil {
		t.Fatalf("GetNeuron: %v", err)
	}
	if got == nil {
		t.Fatal("stored neuron not found")
	}
	if got.Name != "golden" || got.SWCHeader != orig.SWCHeader {
		t.Errorf("metadata changed: name=%q header=%q", got.Name, got.SWCHeader)
	}
	if len(got.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(got.Nodes))
	}
	// Node order is preserved.
	for i, nd := range got.Nodes {
		if nd != orig.Nodes[i] {
			t.Errorf("node %d changed: %+v != %+v", i, nd, orig.Nodes[i])
		}
	}
	if len(got.Connectors) != 1 || got.Connectors[0] != orig.Connectors[0] {
		t.Errorf("connectors changed: %+v", got.Connectors)
	}
	if got.Tags["soma"][0] != 1 || got.Tags["ends"][0] != 3 {
		t.Errorf("tags changed: %v", got.Tags)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	d := testDB(t)
	if err := d.SaveNeuron(storedNeuron(1, "first")); err != nil {
		t.Fatal(err)
	}

	repl := storedNeuron(1, "second")
	repl.Nodes = repl.Nodes[:2]
	repl.Connectors = nil
	if err := d.SaveNeuron(repl); err != nil {
		t.Fatalf("replacing save: %v", err)
	}

	got, err := d.GetNeuron(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "second" {
		t.Errorf("name not replaced: %q", got.Name)
	}
	if len(got.Nodes) != 2 || len(got.Connectors) != 0 {
		t.Errorf("old rows survived: %d nodes, %d connectors", len(got.Nodes), len(got.Connectors))
	}
}

func TestGetMissing(t *testing.T) {
	d := testDB(t)
	got, err := d.GetNeuron(12345)
	if err != nil {
		t.Fatalf("GetNeuron: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing neuron, got %+v", got)
	}
}

func TestListNeurons(t *testing.T) {
	d := testDB(t)
	if err := d.SaveNeuron(storedNeuron(1, "alpha")); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveNeuron(storedNeuron(2, "beta")); err != nil {
		t.Fatal(err)
	}

	list, err := d.ListNeurons()
	if err != nil {
		t.Fatalf("ListNeurons: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	for _, s := range list {
		if s.Nodes != 3 || s.Connectors != 1 {
			t.Errorf("neuron %d: counted %d nodes, %d connectors", s.SkeletonID, s.Nodes, s.Connectors)
		}
		if s.ImportedAt == 0 {
			t.Errorf("neuron %d: import time not recorded", s.SkeletonID)
		}
	}
}

func TestDeleteNeuron(t *testing.T) {
	d := testDB(t)
	if err := d.SaveNeuron(storedNeuron(5, "doomed")); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteNeuron(5); err != nil {
		t.Fatalf("DeleteNeuron: %v", err)
	}
	got, err := d.GetNeuron(5)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("neuron still present after delete")
	}

	// Cascade removed the dependent rows too.
	var count int
	if err := d.Conn().QueryRow("SELECT COUNT(*) FROM nodes WHERE skeleton_id = 5").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("%d node rows survived the delete", count)
	}

	// Deleting again is a no-op.
	if err := d.DeleteNeuron(5); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSearchByName(t *testing.T) {
	d := testDB(t)
	for skid, name := range map[int64]string{
		1: "PN glomerulus DA1",
		2: "PN glomerulus VA6",
		3: "KC alpha prime",
	} {
		if err := d.SaveNeuron(storedNeuron(skid, name)); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := d.SearchByName("glomerulus")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// Results are ordered by skeleton ID.
	if hits[0].SkeletonID != 1 || hits[1].SkeletonID != 2 {
		t.Errorf("unexpected order: %d, %d", hits[0].SkeletonID, hits[1].SkeletonID)
	}

	none, err := d.SearchByName("octopus")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no hits, got %d", len(none))
	}
}

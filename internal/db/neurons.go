package db

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"neurita/arbor/internal/neuron"
)

// Summary is one row of the neuron listing.
type Summary struct {
	SkeletonID int64  `json:"skeleton_id"`
	Name       string `json:"name"`
	Nodes      int    `json:"nodes"`
	Connectors int    `json:"connectors"`
	ImportedAt int64  `json:"imported_at"` // Unix millis
}

// SaveNeuron upserts a neuron and all of its rows in one transaction. An
// existing neuron with the same skeleton ID is replaced wholesale.
func (d *DB) SaveNeuron(n *neuron.Neuron) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "connectors", "tags", "neurons"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE skeleton_id = ?", n.SkeletonID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO neurons (skeleton_id, name, swc_header, imported_at)
		VALUES (?, ?, ?, ?)
	`, n.SkeletonID, n.Name, n.SWCHeader, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting neuron %d: %w", n.SkeletonID, err)
	}

	nodeStmt, err := tx.Prepare(`
		INSERT INTO nodes (skeleton_id, treenode_id, parent_id, label,
		                   x, y, z, radius, confidence, creator_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	for _, nd := range n.Nodes {
		_, err := nodeStmt.Exec(n.SkeletonID, nd.TreenodeID, nd.ParentID, nd.Label,
			nd.X, nd.Y, nd.Z, nd.Radius, nd.Confidence, nd.CreatorID)
		if err != nil {
			return fmt.Errorf("inserting node %d: %w", nd.TreenodeID, err)
		}
	}

	cnStmt, err := tx.Prepare(`
		INSERT INTO connectors (skeleton_id, treenode_id, connector_id, relation, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer cnStmt.Close()
	for _, c := range n.Connectors {
		_, err := cnStmt.Exec(n.SkeletonID, c.TreenodeID, c.ConnectorID, c.Relation, c.X, c.Y, c.Z)
		if err != nil {
			return fmt.Errorf("inserting connector on node %d: %w", c.TreenodeID, err)
		}
	}

	tagStmt, err := tx.Prepare(`
		INSERT INTO tags (skeleton_id, tag, treenode_id) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer tagStmt.Close()
	for tag, ids := range n.Tags {
		for _, id := range ids {
			if _, err := tagStmt.Exec(n.SkeletonID, tag, id); err != nil {
				return fmt.Errorf("inserting tag %q: %w", tag, err)
			}
		}
	}

	return tx.Commit()
}

// GetNeuron loads a neuron by skeleton ID. Returns nil without error if no
// such neuron is stored.
func (d *DB) GetNeuron(skeletonID int64) (*neuron.Neuron, error) {
	n := &neuron.Neuron{SkeletonID: skeletonID}

	err := d.conn.QueryRow(`
		SELECT name, swc_header FROM neurons WHERE skeleton_id = ?
	`, skeletonID).Scan(&n.Name, &n.SWCHeader)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.conn.Query(`
		SELECT treenode_id, parent_id, label, x, y, z, radius, confidence, creator_id
		FROM nodes WHERE skeleton_id = ? ORDER BY rowid
	`, skeletonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var nd neuron.Node
		err := rows.Scan(&nd.TreenodeID, &nd.ParentID, &nd.Label,
			&nd.X, &nd.Y, &nd.Z, &nd.Radius, &nd.Confidence, &nd.CreatorID)
		if err != nil {
			return nil, err
		}
		n.Nodes = append(n.Nodes, nd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cnRows, err := d.conn.Query(`
		SELECT treenode_id, connector_id, relation, x, y, z
		FROM connectors WHERE skeleton_id = ? ORDER BY rowid
	`, skeletonID)
	if err != nil {
		return nil, err
	}
	defer cnRows.Close()
	for cnRows.Next() {
		var c neuron.Connector
		if err := cnRows.Scan(&c.TreenodeID, &c.ConnectorID, &c.Relation, &c.X, &c.Y, &c.Z); err != nil {
			return nil, err
		}
		n.Connectors = append(n.Connectors, c)
	}
	if err := cnRows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := d.conn.Query(`
		SELECT tag, treenode_id FROM tags WHERE skeleton_id = ? ORDER BY rowid
	`, skeletonID)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	n.Tags = make(map[string][]int64)
	for tagRows.Next() {
		var tag string
		var id int64
		if err := tagRows.Scan(&tag, &id); err != nil {
			return nil, err
		}
		n.Tags[tag] = append(n.Tags[tag], id)
	}
	return n, tagRows.Err()
}

// ListNeurons returns a summary of every stored neuron, newest first.
func (d *DB) ListNeurons() ([]Summary, error) {
	rows, err := d.conn.Query(`
		SELECT n.skeleton_id, n.name, n.imported_at,
		       (SELECT COUNT(*) FROM nodes WHERE skeleton_id = n.skeleton_id),
		       (SELECT COUNT(*) FROM connectors WHERE skeleton_id = n.skeleton_id)
		FROM neurons n ORDER BY n.imported_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.SkeletonID, &s.Name, &s.ImportedAt, &s.Nodes, &s.Connectors); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteNeuron removes a neuron and all its rows. Deleting a neuron that
// is not stored is not an error.
func (d *DB) DeleteNeuron(skeletonID int64) error {
	_, err := d.conn.Exec("DELETE FROM neurons WHERE skeleton_id = ?", skeletonID)
	return err
}

// SearchByName finds stored neurons whose name contains the query,
// case-insensitively via LIKE.
func (d *DB) SearchByName(query string) ([]Summary, error) {
	rows, err := d.conn.Query(`
		SELECT n.skeleton_id, n.name, n.imported_at,
		       (SELECT COUNT(*) FROM nodes WHERE skeleton_id = n.skeleton_id),
		       (SELECT COUNT(*) FROM connectors WHERE skeleton_id = n.skeleton_id)
		FROM neurons n WHERE n.name LIKE ?
	`, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.SkeletonID, &s.Name, &s.ImportedAt, &s.Nodes, &s.Connectors); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkeletonID < out[j].SkeletonID })
	return out, nil
}

// Package store persists the cable model registry in a SQLite workspace
// file so edits survive between command invocations.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/swcmesher/pkg/cable"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Workspace wraps a SQLite database connection.
type Workspace struct {
	db *sql.DB
}

// ModelInfo is the stored summary of one model.
type ModelInfo struct {
	UID       string
	Name      string
	Position  int
	Active    bool
	Vertices  int
	Edges     int
	UpdatedAt time.Time
}

// Open opens or creates a workspace database at the given path.
func Open(path string) (*Workspace, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Workspace{db: db}, nil
}

// Close closes the database connection.
func (w *Workspace) Close() error {
	return w.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS models (
			uid TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			position INTEGER NOT NULL,
			active INTEGER NOT NULL DEFAULT 0,
			placement_json TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS vertices (
			model_uid TEXT NOT NULL REFERENCES models(uid) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			PRIMARY KEY (model_uid, idx)
		);

		CREATE TABLE IF NOT EXISTS edges (
			model_uid TEXT NOT NULL REFERENCES models(uid) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			a INTEGER NOT NULL,
			b INTEGER NOT NULL,
			PRIMARY KEY (model_uid, seq)
		);

		-- Sparse per-vertex scalar layers
		CREATE TABLE IF NOT EXISTS layers (
			model_uid TEXT NOT NULL REFERENCES models(uid) ON DELETE CASCADE,
			layer TEXT NOT NULL,
			idx INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (model_uid, layer, idx)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// uids maps stored model names to their ids so a model keeps its id
// across saves.
func (w *Workspace) uids(tx *sql.Tx) (map[string]string, error) {
	rows, err := tx.Query(`SELECT name, uid FROM models`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, uid string
		if err := rows.Scan(&name, &uid); err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		out[name] = uid
	}
	return out, rows.Err()
}

// Save replaces the stored registry with reg in one transaction.
func (w *Workspace) Save(reg *cable.Registry) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	known, err := w.uids(tx)
	if err != nil {
		return err
	}
	for _, table := range []string{"layers", "edges", "vertices", "models"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	modelStmt, err := tx.Prepare(`
		INSERT INTO models (uid, name, position, active, placement_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing model insert: %w", err)
	}
	defer modelStmt.Close()

	vertStmt, err := tx.Prepare(`INSERT INTO vertices (model_uid, idx, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing vertex insert: %w", err)
	}
	defer vertStmt.Close()

	edgeStmt, err := tx.Prepare(`INSERT INTO edges (model_uid, seq, a, b) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer edgeStmt.Close()

	layerStmt, err := tx.Prepare(`INSERT INTO layers (model_uid, layer, idx, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing layer insert: %w", err)
	}
	defer layerStmt.Close()

	now := time.Now().Unix()
	active := reg.ActiveIndex()
	for pos, m := range reg.Models() {
		uid, ok := known[m.Name]
		if !ok {
			uid = uuid.NewString()
		}
		placement, err := json.Marshal(m.Placement)
		if err != nil {
			return fmt.Errorf("encoding placement of %q: %w", m.Name, err)
		}
		if _, err := modelStmt.Exec(uid, m.Name, pos, boolInt(pos == active), string(placement), now); err != nil {
			return fmt.Errorf("inserting model %q: %w", m.Name, err)
		}
		for i := 0; i < m.NumVertices(); i++ {
			p := m.Mesh.Position(i)
			if _, err := vertStmt.Exec(uid, i, p.X, p.Y, p.Z); err != nil {
				return fmt.Errorf("inserting vertex %d of %q: %w", i, m.Name, err)
			}
		}
		for seq, e := range m.Mesh.Edges() {
			if _, err := edgeStmt.Exec(uid, seq, e[0], e[1]); err != nil {
				return fmt.Errorf("inserting edge of %q: %w", m.Name, err)
			}
		}
		for _, name := range m.Mesh.LayerNames() {
			l, _ := m.Mesh.Layer(name)
			for _, i := range l.Indices() {
				v, _ := l.Get(i)
				if _, err := layerStmt.Exec(uid, name, i, v); err != nil {
					return fmt.Errorf("inserting layer %s of %q: %w", name, m.Name, err)
				}
			}
		}
	}
	return tx.Commit()
}

// Load rebuilds the registry from the workspace. Radius spheres are not
// stored; loaded models have none.
func (w *Workspace) Load(logger *log.Logger) (*cable.Registry, error) {
	infos, err := w.Models()
	if err != nil {
		return nil, err
	}
	reg := cable.NewRegistry(logger)
	active := -1
	for _, info := range infos {
		m, err := w.loadModel(info)
		if err != nil {
			return nil, err
		}
		pos, err := reg.Add(m)
		if err != nil {
			return nil, fmt.Errorf("restoring model %q: %w", info.Name, err)
		}
		if info.Active {
			active = pos
		}
	}
	if active >= 0 {
		if err := reg.SelectIndex(active); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (w *Workspace) loadModel(info ModelInfo) (*cable.Model, error) {
	mesh := cable.NewMesh()

	rows, err := w.db.Query(`SELECT x, y, z FROM vertices WHERE model_uid = ? ORDER BY idx`, info.UID)
	if err != nil {
		return nil, fmt.Errorf("querying vertices: %w", err)
	}
	for rows.Next() {
		var p v3.Vec
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning vertex: %w", err)
		}
		mesh.AddVertex(p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = w.db.Query(`SELECT a, b FROM edges WHERE model_uid = ? ORDER BY seq`, info.UID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	for rows.Next() {
		var a, b int
		if err := rows.Scan(&a, &b); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		if err := mesh.AddEdge(a, b); err != nil {
			rows.Close()
			return nil, fmt.Errorf("model %q: %w", info.Name, err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = w.db.Query(`SELECT layer, idx, value FROM layers WHERE model_uid = ?`, info.UID)
	if err != nil {
		return nil, fmt.Errorf("querying layers: %w", err)
	}
	for rows.Next() {
		var name string
		var i int
		var v float64
		if err := rows.Scan(&name, &i, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning layer: %w", err)
		}
		mesh.EnsureLayer(name).Set(i, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Layers with no entries still mark the mesh as a cable model.
	for _, name := range cable.RequiredLayers {
		mesh.EnsureLayer(name)
	}
	m, err := cable.NewModel(info.Name, mesh)
	if err != nil {
		return nil, err
	}

	var placementJSON string
	if err := w.db.QueryRow(`SELECT placement_json FROM models WHERE uid = ?`, info.UID).Scan(&placementJSON); err != nil {
		return nil, fmt.Errorf("reading placement: %w", err)
	}
	if err := json.Unmarshal([]byte(placementJSON), &m.Placement); err != nil {
		return nil, fmt.Errorf("decoding placement of %q: %w", info.Name, err)
	}
	return m, nil
}

// Models lists the stored models in registry order.
func (w *Workspace) Models() ([]ModelInfo, error) {
	rows, err := w.db.Query(`
		SELECT m.uid, m.name, m.position, m.active, m.updated_at,
			(SELECT COUNT(*) FROM vertices v WHERE v.model_uid = m.uid),
			(SELECT COUNT(*) FROM edges e WHERE e.model_uid = m.uid)
		FROM models m
		ORDER BY m.position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	var out []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var active int
		var updated int64
		if err := rows.Scan(&info.UID, &info.Name, &info.Position, &active, &updated, &info.Vertices, &info.Edges); err != nil {
			return nil, fmt.Errorf("scanning model: %w", err)
		}
		info.Active = active != 0
		info.UpdatedAt = time.Unix(updated, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

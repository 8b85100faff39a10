package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"rsz/internal/model"
)

// SQLiteRecorder persists fitting output to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis tools can read while a batch is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clusters (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			name           TEXT NOT NULL,
			ra             REAL,
			dec            REAL,
			center_located INTEGER,
			interesting    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clusters_name ON clusters(name)`,

		`CREATE TABLE IF NOT EXISTS results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			cluster     TEXT NOT NULL,
			combination TEXT NOT NULL,
			z           REAL,
			z_upper_err REAL,
			z_lower_err REAL,
			flags       INTEGER,
			members     INTEGER,
			scatter     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_cluster ON results(cluster)`,

		`CREATE TABLE IF NOT EXISTS fit_iterations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			cluster     TEXT NOT NULL,
			combination TEXT NOT NULL,
			iteration   INTEGER,
			members     INTEGER,
			intercept   REAL,
			slope       REAL,
			scatter     REAL,
			radius      REAL,
			faint_cut   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_iter_cluster ON fit_iterations(cluster)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCluster(rec *ClusterRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO clusters
		(timestamp, name, ra, dec, center_located, interesting)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Name, rec.RA, rec.Dec,
		boolToInt(rec.CenterLocated), boolToInt(rec.Interesting),
	)
	return err
}

func (r *SQLiteRecorder) RecordResult(rec *ResultRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO results
		(timestamp, cluster, combination, z, z_upper_err, z_lower_err, flags, members, scatter)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Cluster, rec.Combination,
		rec.Z, rec.ZUpperErr, rec.ZLowerErr,
		rec.Flags, rec.Members, rec.Scatter,
	)
	return err
}

func (r *SQLiteRecorder) RecordIterations(cluster, combination string, iters []model.IterationSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	for _, it := range iters {
		_, err := r.db.Exec(`INSERT INTO fit_iterations
			(timestamp, cluster, combination, iteration, members, intercept, slope, scatter, radius, faint_cut)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			now, cluster, combination, it.Iteration, it.Members,
			it.Fit.Intercept, it.Fit.Slope, it.Fit.Scatter,
			it.Radius, it.FaintCut,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

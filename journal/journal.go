// Package journal appends submitted opportunities to a local sqlite
// database for offline analysis. It is a cold-path sink: the consumer
// thread hands records over after submission, and nothing in the process
// ever reads the journal back — state is not restored across restarts.
package journal

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mevcore/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS opportunities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	seq INTEGER NOT NULL,
	fingerprint TEXT NOT NULL,
	bundle_hash TEXT,
	dex TEXT NOT NULL,
	token_in TEXT NOT NULL,
	token_out TEXT NOT NULL,
	amount_in TEXT NOT NULL,
	expected_profit TEXT NOT NULL,
	detected_ns INTEGER NOT NULL,
	submitted_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_opportunities_fingerprint ON opportunities(fingerprint);
`

// Journal is an append-only opportunity log.
type Journal struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates or opens the journal database at path and prepares the
// insert statement. WAL mode keeps writers off the readers' locks when
// an analyst attaches to a live file.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: set WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	insert, err := db.Prepare(`INSERT INTO opportunities
		(seq, fingerprint, bundle_hash, dex, token_in, token_out, amount_in, expected_profit, detected_ns, submitted_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: prepare insert: %w", err)
	}
	return &Journal{db: db, insert: insert}, nil
}

// Record appends one submitted opportunity. The caller still owns op's
// backing buffer; every field is copied out before Record returns.
func (j *Journal) Record(op *types.Opportunity, fingerprint [32]byte, bundleHash string) error {
	_, err := j.insert.Exec(
		op.ID,
		hex.EncodeToString(fingerprint[:]),
		bundleHash,
		op.Dex.String(),
		hex.EncodeToString(op.TokenIn[:]),
		hex.EncodeToString(op.TokenOut[:]),
		hex.EncodeToString(op.AmountIn[:]),
		hex.EncodeToString(op.ExpectedProfit[:]),
		op.DetectedNS,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// Count returns the number of recorded opportunities. Test and tooling
// helper, not used on any hot path.
func (j *Journal) Count() (int64, error) {
	var n int64
	err := j.db.QueryRow("SELECT COUNT(*) FROM opportunities").Scan(&n)
	return n, err
}

// Close releases the prepared statement and the database handle.
func (j *Journal) Close() error {
	j.insert.Close()
	return j.db.Close()
}

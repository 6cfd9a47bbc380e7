package cts

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carbocation/pfx"
)

type CSIIndex struct {
	DB       *sqlx.DB
	Metadata *CSIMetadata
}

func (c *CSIIndex) Close() error {
	return c.DB.Close()
}

// SiteIndex conforms to the data found in the rows of the sqlite table
// "Site" from CTS index (.csi) files, and can be easily parsed with sqlx.
type SiteIndex struct {
	Position          float64
	DerivedCount      uint32 `db:"derived_count"`
	AncestralState    string `db:"ancestral_state"`
	DerivedState      string `db:"derived_state"`
	FileStartPosition uint   `db:"file_start_position"`
	SizeInBytes       uint   `db:"size_in_bytes"`
}

// CSIMetadata conforms to the data found in the rows of the sqlite table
// "Metadata" of .csi files.
type CSIMetadata struct {
	Filename           string
	FileSize           uint   `db:"file_size"`
	LastWriteTime      Time   `db:"last_write_time"`
	FirstThousandBytes []byte `db:"first_1000_bytes"`
	IndexCreationTime  Time   `db:"index_creation_time"`
}

const csiSchema = `
CREATE TABLE IF NOT EXISTS Site (
	position REAL NOT NULL,
	derived_count INTEGER NOT NULL,
	ancestral_state TEXT NOT NULL,
	derived_state TEXT NOT NULL,
	file_start_position INTEGER NOT NULL,
	size_in_bytes INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS site_position_idx ON Site (position);
CREATE TABLE IF NOT EXISTS Metadata (
	filename TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	last_write_time INTEGER NOT NULL,
	first_1000_bytes BLOB NOT NULL,
	index_creation_time INTEGER NOT NULL
);`

// CreateSiteIndex walks every record of a local .cts file and writes its
// .csi sqlite companion, so downstream tools can seek straight to a site by
// position.
func CreateSiteIndex(ctsPath, csiPath string) error {
	if strings.HasPrefix(ctsPath, "gs://") {
		return pfx.Err(fmt.Errorf("site indexes are built from local files; %s is remote", ctsPath))
	}

	c, err := Open(ctsPath)
	if err != nil {
		return pfx.Err(err)
	}
	defer c.Close()

	// URI filenames have to begin with 'file:'; see
	// https://www.sqlite.org/c3ref/open.html
	dsn := csiPath
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	db, err := sqlx.Connect(whichSQLiteDriver, dsn)
	if err != nil {
		return pfx.Err(err)
	}
	defer db.Close()

	if _, err := db.Exec(csiSchema); err != nil {
		return pfx.Err(err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return pfx.Err(err)
	}

	sr := c.NewSiteReader()
	for {
		rec := sr.Read()
		if rec == nil {
			break
		}

		if _, err := tx.Exec(
			`INSERT INTO Site (position, derived_count, ancestral_state, derived_state, file_start_position, size_in_bytes) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.Position, rec.DerivedCount, rec.AncestralState, rec.DerivedState, rec.FileStartPosition, rec.SizeInBytes,
		); err != nil {
			tx.Rollback()
			return pfx.Err(err)
		}
	}
	if sr.Error() != nil {
		tx.Rollback()
		return pfx.Err(sr.Error())
	}

	stat, err := os.Stat(ctsPath)
	if err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	firstKB := make([]byte, 1000)
	if stat.Size() < int64(len(firstKB)) {
		firstKB = firstKB[:stat.Size()]
	}
	if err := c.parseAtOffsetWithBuffer(0, firstKB); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	if _, err := tx.Exec(
		`INSERT INTO Metadata (filename, file_size, last_write_time, first_1000_bytes, index_creation_time) VALUES (?, ?, ?, ?, ?)`,
		stat.Name(), stat.Size(), stat.ModTime().Unix(), firstKB, time.Now().Unix(),
	); err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

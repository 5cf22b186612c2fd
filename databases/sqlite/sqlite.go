package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

const getCurrentMigration string = `PRAGMA user_version;`
const setCurrentMigration string = `PRAGMA user_version = ?;`

const createExtractionTableIfNotExistsQuery string = `
CREATE TABLE IF NOT EXISTS extractions (
id INTEGER NOT NULL PRIMARY KEY,
source_path TEXT NOT NULL,
destination_path TEXT NOT NULL,
status TEXT NOT NULL,
error TEXT NOT NULL,
start_offset INTEGER NOT NULL,
end_offset INTEGER NOT NULL,
size INTEGER NOT NULL,
created_at DATETIME NOT NULL
);`

const createSourceIndexIfNotExistsQuery string = `
CREATE INDEX IF NOT EXISTS extraction_source_index
ON extractions(source_path);
`

const addDimensionColumnsQuery string = `
ALTER TABLE extractions ADD COLUMN width INTEGER NOT NULL DEFAULT 0;
ALTER TABLE extractions ADD COLUMN height INTEGER NOT NULL DEFAULT 0;
`

type migration struct {
	migrationName  string
	migrationQuery string
}

var migrations = []migration{
	{migrationName: "create extraction table", migrationQuery: createExtractionTableIfNotExistsQuery},
	{migrationName: "add extraction source index", migrationQuery: createSourceIndexIfNotExistsQuery},
	{migrationName: "add extraction dimension columns", migrationQuery: addDimensionColumnsQuery},
}

// New opens (creating if needed) the history database at filename and brings
// its schema up to date.
func New(ctx context.Context, filename string) (*sql.DB, error) {
	if filename == "" {
		return nil, errors.New("missing database filename")
	}

	filename, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	err = touchDBFile(filename)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}

	// The tool is sequential; one connection avoids SQLITE_BUSY between pool members.
	db.SetMaxOpenConns(1)

	err = migrate(ctx, db)
	if err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var currentMigration int

	row := db.QueryRowContext(ctx, getCurrentMigration)

	err := row.Scan(&currentMigration)
	if err != nil {
		return err
	}

	requiredMigration := len(migrations)

	if currentMigration < requiredMigration {
		log.Printf("Current DB version: %v, required DB version: %v\n", currentMigration, requiredMigration)

		for migrationNum := currentMigration + 1; migrationNum <= requiredMigration; migrationNum++ {
			err = execMigration(ctx, db, migrationNum)
			if err != nil {
				log.Printf("Error running migration %v '%v'\n", migrationNum, migrations[migrationNum-1].migrationName)

				return err
			}
		}
	}

	return nil
}

func execMigration(ctx context.Context, db *sql.DB, migrationNum int) error {
	log.Printf("Running migration %v '%v'\n", migrationNum, migrations[migrationNum-1].migrationName)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	//nolint
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, migrations[migrationNum-1].migrationQuery)
	if err != nil {
		return err
	}

	setQuery := strings.Replace(setCurrentMigration, "?", strconv.Itoa(migrationNum), 1)

	_, err = tx.ExecContext(ctx, setQuery)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func touchDBFile(filename string) error {
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		file, createErr := os.Create(filename)
		if createErr != nil {
			return createErr
		}

		return file.Close()
	}

	return err
}

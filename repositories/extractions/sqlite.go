package extractions

import (
	"context"
	"database/sql"
	"errors"
	"snagx_extractor/clock"
	"snagx_extractor/entities"
	"snagx_extractor/repositories"
	"strconv"
)

const insertExtractionQuery string = `
INSERT INTO extractions (source_path, destination_path, status, error, start_offset, end_offset, size, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const extractionColumns string = `id, source_path, destination_path, status, error, start_offset, end_offset, size, width, height, created_at`

const getExtractionByID string = `
SELECT ` + extractionColumns + ` FROM extractions WHERE id = ?;
`

const listExtractions string = `
SELECT ` + extractionColumns + ` FROM extractions ORDER BY id;
`

type sqliteRepo struct {
	dbConn *sql.DB
	clock  clock.Clock
}

type Config struct {
	DB    *sql.DB
	Clock clock.Clock
}

func NewRepository(cfg *Config) (Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("missing DB parameter")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}

	newRepo := &sqliteRepo{
		dbConn: cfg.DB,
		clock:  cfg.Clock,
	}

	return newRepo, nil
}

func (repo *sqliteRepo) Create(ctx context.Context, extraction *entities.Extraction) (*entities.Extraction, error) {
	extraction.CreatedAt = repo.clock.Now()

	res, err := repo.dbConn.ExecContext(ctx, insertExtractionQuery,
		extraction.SourcePath, extraction.DestinationPath, string(extraction.Status), extraction.Error,
		extraction.StartOffset, extraction.EndOffset, extraction.Size,
		extraction.Width, extraction.Height, extraction.CreatedAt)
	if err != nil {
		return nil, err
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	extraction.ID = lastID

	return extraction, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (*entities.Extraction, error) {
	var (
		extraction entities.Extraction
		status     string
	)

	err := row.Scan(&extraction.ID, &extraction.SourcePath, &extraction.DestinationPath, &status,
		&extraction.Error, &extraction.StartOffset, &extraction.EndOffset, &extraction.Size,
		&extraction.Width, &extraction.Height, &extraction.CreatedAt)
	if err != nil {
		return nil, err
	}

	extraction.Status = entities.ExtractionStatus(status)

	return &extraction, nil
}

func (repo *sqliteRepo) GetByID(ctx context.Context, id int64) (*entities.Extraction, error) {
	extraction, err := scanExtraction(repo.dbConn.QueryRowContext(ctx, getExtractionByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NewNotFoundError("extraction", strconv.FormatInt(id, 10))
		}

		return nil, err
	}

	return extraction, nil
}

func (repo *sqliteRepo) List(ctx context.Context) ([]*entities.Extraction, error) {
	rows, err := repo.dbConn.QueryContext(ctx, listExtractions)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	result := make([]*entities.Extraction, 0)

	for rows.Next() {
		extraction, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, extraction)
	}

	return result, rows.Err()
}

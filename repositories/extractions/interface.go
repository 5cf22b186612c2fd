package extractions

import (
	"context"
	"snagx_extractor/entities"
)

type Repository interface {
	Create(ctx context.Context, extraction *entities.Extraction) (*entities.Extraction, error)
	GetByID(ctx context.Context, id int64) (*entities.Extraction, error)
	List(ctx context.Context) ([]*entities.Extraction, error)
}

package repositories

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tabiplan/internal/models/db_models"
)

type IAreaRepository interface {
	GetAreasByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.AreaEmbedding, error)
	UpsertArea(ctx context.Context, area db_models.AreaEmbedding) error
}

type AreaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) IAreaRepository {
	return &AreaRepository{
		db: db,
	}
}

func (a *AreaRepository) GetAreasByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.AreaEmbedding, error) {
	var results []db_models.AreaEmbedding

	if limit <= 0 {
		limit = 10
	}
	vecStr := vector.String()

	query := `
        SELECT *, (1 - (embedding <=> $1)) as similarity
        FROM area_embeddings
        WHERE (1 - (embedding <=> $1)) > 0.7
        ORDER BY embedding <=> $1
        LIMIT $2
    `

	err := a.db.WithContext(ctx).Raw(query, vecStr, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (a *AreaRepository) UpsertArea(ctx context.Context, area db_models.AreaEmbedding) error {
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "area_id"}},
			UpdateAll: true,
		}).
		Create(&area).Error
}

package db_models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type AreaEmbedding struct {
	AreaID      string `gorm:"primaryKey;column:area_id"`
	Destination string
	Name        string
	Description string
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

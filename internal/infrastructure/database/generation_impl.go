package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/repositories"
)

type generationRepository struct {
	db *PostgresDB
}

func NewGenerationRepository(db *PostgresDB) repositories.GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Create(ctx context.Context, generation *models.Generation) error {
	if generation.ID == uuid.Nil {
		generation.ID = uuid.New()
	}

	outputsJSON, err := json.Marshal(generation.Outputs)
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}
	platformsJSON, err := json.Marshal(generation.Platforms)
	if err != nil {
		return fmt.Errorf("failed to encode platforms: %w", err)
	}

	query := `INSERT INTO generations (id, user_id, source_type, source_url, source_text,
                                       source_title, outputs, platforms, tokens_used, processing_time_ms)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query, generation.ID, generation.UserID,
		generation.SourceType, generation.SourceURL, generation.SourceText,
		generation.SourceTitle, outputsJSON, platformsJSON,
		generation.TokensUsed, generation.ProcessingTimeMs,
	).Scan(&generation.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create generation: %w", err)
	}
	return nil
}

func (r *generationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	query := `SELECT id, user_id, source_type, source_url, source_text, source_title,
                     outputs, platforms, tokens_used, processing_time_ms, created_at
              FROM generations
              WHERE user_id = $1
              ORDER BY created_at DESC
              LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var generations []*models.Generation
	for rows.Next() {
		var (
			generation    models.Generation
			outputsJSON   []byte
			platformsJSON []byte
		)

		err := rows.Scan(&generation.ID, &generation.UserID, &generation.SourceType,
			&generation.SourceURL, &generation.SourceText, &generation.SourceTitle,
			&outputsJSON, &platformsJSON, &generation.TokensUsed,
			&generation.ProcessingTimeMs, &generation.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}

		json.Unmarshal(outputsJSON, &generation.Outputs)
		json.Unmarshal(platformsJSON, &generation.Platforms)

		generations = append(generations, &generation)
	}

	return generations, rows.Err()
}

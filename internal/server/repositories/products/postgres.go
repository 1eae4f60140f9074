// Package products provides a PostgreSQL-backed, read-only repository for
// the loja_produto table.
package products

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lojabox/lojabox/internal/dbx"
	"github.com/lojabox/lojabox/internal/server/models"
)

// PostgresRepository implements product listing over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SelectByUser returns all products owned by userID, newest first.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string) ([]*models.Product, error) {
	query := `
		SELECT id, user_id, nome, preco, descricao, imagem, created_at
		FROM loja_produto
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()

	var result []*models.Product
	for rows.Next() {
		var item models.Product
		var description, image sql.NullString
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Price,
			&description, &image, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Description = description.String
		item.ImageURL = image.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

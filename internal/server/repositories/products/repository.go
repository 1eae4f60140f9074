package products

import (
	"context"

	"github.com/lojabox/lojabox/internal/server/models"
)

type Repository interface {
	SelectByUser(ctx context.Context, userID string) ([]*models.Product, error)
}

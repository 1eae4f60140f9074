package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lojabox/lojabox/internal/server/models"
	"github.com/lojabox/lojabox/internal/server/repositories/repomanager"
)

// ProductService lists the storefront items owned by a user.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager) *ProductService {
	return &ProductService{db: db, repomanager: m}
}

// ListByUser returns the session user's products, newest first.
func (s *ProductService) ListByUser(ctx context.Context, session models.Session) ([]*models.Product, error) {
	repo := s.repomanager.Products(s.db)

	products, err := repo.SelectByUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error fetching products: %v", err)
	}
	return products, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lojabox/lojabox/internal/server/models"
)

type fakeProductsRepo struct {
	out []*models.Product
	err error

	selectedUserID string
}

func (f *fakeProductsRepo) SelectByUser(ctx context.Context, userID string) ([]*models.Product, error) {
	f.selectedUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestListByUser(t *testing.T) {
	repo := &fakeProductsRepo{out: []*models.Product{
		{ID: "pr2", UserID: "u1", Name: "Caneca", Price: 39.9},
		{ID: "pr1", UserID: "u1", Name: "Camiseta", Price: 99.5},
	}}
	svc := NewProductService(nil, &fakeRepoManager{products: repo})

	got, err := svc.ListByUser(context.Background(), models.Session{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "pr2" {
		t.Fatalf("unexpected products: %+v", got)
	}
	if repo.selectedUserID != "u1" {
		t.Fatalf("query must be scoped to the session user, got %q", repo.selectedUserID)
	}
}

func TestListByUser_RepoError(t *testing.T) {
	repo := &fakeProductsRepo{err: errors.New("boom")}
	svc := NewProductService(nil, &fakeRepoManager{products: repo})

	_, err := svc.ListByUser(context.Background(), models.Session{UserID: "u1"})
	if err == nil || !strings.Contains(err.Error(), "error fetching products") {
		t.Fatalf("want wrapped error, got %v", err)
	}
}

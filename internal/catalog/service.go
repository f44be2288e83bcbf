package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agromarket/internal/common"
	"agromarket/internal/dbmysql"
)

const defaultListLimit = 50

type ProductService interface {
	CreateProduct(ctx context.Context, authorID, title, description string, price float64) (*dbmysql.Product, error)
	GetProduct(ctx context.Context, id string) (*dbmysql.Product, error)
	ListProducts(ctx context.Context, limit int) ([]*dbmysql.Product, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*dbmysql.Product, error)
	DeleteProduct(ctx context.Context, id, requesterID string) error
	RemoveAllForAuthor(ctx context.Context, authorID string) error
}

type productService struct {
	repo ProductRepository
}

func NewProductService(repo ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) CreateProduct(ctx context.Context, authorID, title, description string, price float64) (*dbmysql.Product, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.InvalidArg("title is required")
	}
	if price < 0 {
		return nil, common.InvalidArg("price must not be negative")
	}

	product := &dbmysql.Product{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Price:       price,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, common.Internal("product create failed", err)
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*dbmysql.Product, error) {
	product, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("product not found")
		}
		return nil, common.Internal("product lookup failed", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, limit int) ([]*dbmysql.Product, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	products, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, common.Internal("product list failed", err)
	}
	return products, nil
}

func (s *productService) ListByAuthor(ctx context.Context, authorID string) ([]*dbmysql.Product, error) {
	products, err := s.repo.ByAuthor(ctx, authorID)
	if err != nil {
		return nil, common.Internal("product list failed", err)
	}
	return products, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id, requesterID string) error {
	product, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("product not found")
		}
		return common.Internal("product lookup failed", err)
	}
	if product.AuthorID != requesterID {
		return common.Unauthorized("only the author can delete a product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return common.Internal("product delete failed", err)
	}
	return nil
}

// RemoveAllForAuthor is part of the account-deletion cascade.
func (s *productService) RemoveAllForAuthor(ctx context.Context, authorID string) error {
	if err := s.repo.DeleteByAuthor(ctx, authorID); err != nil {
		return common.Internal("product cleanup failed", err)
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"coffeestock/internal/models"
	"coffeestock/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ReadinessChecker reports whether the catalog database can be used.
type ReadinessChecker interface {
	IsReady() bool
}

// ProductService handles business logic related to products.
// Every call fails with ErrCatalogUnavailable while the catalog is not ready.
type ProductService struct {
	repo     repositories.ProductRepository
	catalog  ReadinessChecker
	validate *validator.Validate
}

// NewProductService creates a new ProductService. A nil catalog means no readiness gate.
func NewProductService(repo repositories.ProductRepository, catalog ReadinessChecker) *ProductService {
	return &ProductService{
		repo:     repo,
		catalog:  catalog,
		validate: validator.New(),
	}
}

func (s *ProductService) available() error {
	if s.repo == nil || (s.catalog != nil && !s.catalog.IsReady()) {
		return ErrCatalogUnavailable
	}
	return nil
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx)
}

// GetProductByBarcode retrieves a single product by its barcode.
func (s *ProductService) GetProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	return s.repo.GetByBarcode(ctx, strings.TrimSpace(barcode))
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.available(); err != nil {
		return err
	}
	product.Barcode = strings.TrimSpace(product.Barcode)
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct validates and overwrites an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.available(); err != nil {
		return err
	}
	product.Barcode = strings.TrimSpace(product.Barcode)
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product by its barcode.
func (s *ProductService) DeleteProduct(ctx context.Context, barcode string) error {
	if err := s.available(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, strings.TrimSpace(barcode))
}

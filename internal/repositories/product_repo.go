package repositories

import (
	"context"
	"errors"

	"coffeestock/internal/models"
)

var (
	// ErrProductNotFound is returned when no product has the requested barcode.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists is returned when creating a product whose barcode is already taken.
	ErrProductExists = errors.New("product already exists")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, barcode string) error
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coffeestock/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// It expects the products table to have been created by the catalog schema manager.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products ordered by flavor name.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("flavor_name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByBarcode retrieves a single product by its barcode.
func (r *GORMProductRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "barcode = ?", barcode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with barcode %s: %w", barcode, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by barcode %s: %w", barcode, err)
	}
	return &product, nil
}

// Create inserts a new product. The primary key decides duplicates, so
// concurrent creates of one barcode leave exactly one winner.
// The db must be opened with TranslateError, as OpenSQLite does.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product with barcode %s: %w", product.Barcode, ErrProductExists)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("barcode = ?", product.Barcode).
		Select("flavor_name", "price_per_box", "price_per_pod", "pods_per_box", "image_path", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with barcode %s: %w", product.Barcode, ErrProductNotFound)
	}
	return nil
}

// Delete removes a product by its barcode.
func (r *GORMProductRepository) Delete(ctx context.Context, barcode string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "barcode = ?", barcode)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with barcode %s: %w", barcode, ErrProductNotFound)
	}
	return nil
}

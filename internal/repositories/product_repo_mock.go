package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"coffeestock/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products ordered by flavor name.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].FlavorName < productList[j].FlavorName
	})
	return productList, nil
}

// GetByBarcode returns a product by its barcode.
func (r *MockProductRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[barcode]
	if !ok {
		return nil, fmt.Errorf("product with barcode %s: %w", barcode, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.Barcode]; ok {
		return fmt.Errorf("product with barcode %s: %w", product.Barcode, ErrProductExists)
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.Barcode] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.Barcode]
	if !ok {
		return fmt.Errorf("product with barcode %s: %w", product.Barcode, ErrProductNotFound)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.Barcode] = *product
	return nil
}

// Delete removes a product by its barcode.
func (r *MockProductRepository) Delete(ctx context.Context, barcode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[barcode]; !ok {
		return fmt.Errorf("product with barcode %s: %w", barcode, ErrProductNotFound)
	}
	delete(r.products, barcode)
	return nil
}

package handlers

import (
	"errors"
	"fmt"
	"log"

	"coffeestock/internal/models"
	"coffeestock/internal/repositories"
	"coffeestock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:barcode", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:barcode", h.HandleUpdateProduct)
	productRoutes.Delete("/:barcode", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products ordered by flavor name.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return productError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by barcode.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	barcode := c.Params("barcode")
	product, err := h.service.GetProductByBarcode(c.UserContext(), barcode)
	if err != nil {
		log.Printf("Error getting product %s: %v", barcode, err)
		return productError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		log.Printf("Error creating product %s: %v", product.Barcode, err)
		return productError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites the product identified by the path barcode.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.Barcode = c.Params("barcode")

	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		log.Printf("Error updating product %s: %v", product.Barcode, err)
		return productError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the catalog.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	barcode := c.Params("barcode")
	if err := h.service.DeleteProduct(c.UserContext(), barcode); err != nil {
		log.Printf("Error deleting product %s: %v", barcode, err)
		return productError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", barcode),
	})
}

func productError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, repositories.ErrProductExists):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrCatalogUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

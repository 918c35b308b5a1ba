package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Categories returns the category selector options, placeholder first.
//
// @Summary      Category options
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, categoriesResponse{Options: h.catalog.CategoryOptions(c.Request().Context())})
}

// AddProduct submits a new product with the stored access token.
//
// @Summary      Add product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProductInput  true  "Product"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /catalog/products [post]
func (h *CatalogHandler) AddProduct(c echo.Context) error {
	var req domain.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.catalog.AddProduct(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Product added successfully!"})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "meubolso/internal/errors"
	"meubolso/internal/models"
	"meubolso/internal/pagination"
	"meubolso/internal/services"
)

// ShoppingHandler handles shopping categories, products, lists, and items.
type ShoppingHandler struct {
	shoppingService services.ShoppingServicer
	auditService    services.AuditServicer
}

// NewShoppingHandler creates a new ShoppingHandler.
func NewShoppingHandler(shoppingService services.ShoppingServicer, auditService services.AuditServicer) *ShoppingHandler {
	return &ShoppingHandler{shoppingService: shoppingService, auditService: auditService}
}

// ShoppingCategoryRequest represents the payload for creating or updating
// a shopping category.
type ShoppingCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color" binding:"max=20"`
	Icon  string `json:"icon" binding:"max=50"`
}

// ProductRequest represents the payload for creating or updating a product.
type ProductRequest struct {
	CategoryID *string            `json:"category_id"`
	Name       string             `json:"name" binding:"required,max=100"`
	Unit       models.ProductUnit `json:"unit" binding:"omitempty,product_unit"`
	Brand      string             `json:"brand" binding:"max=100"`
	Notes      string             `json:"notes" binding:"max=500"`
}

// ListRequest represents the payload for creating or updating a shopping list.
type ListRequest struct {
	Name  string        `json:"name" binding:"max=100"`
	Items []ItemRequest `json:"items"`
}

// ItemRequest represents a shopping list item payload.
type ItemRequest struct {
	ProductID *string `json:"product_id"`
	Name      string  `json:"name" binding:"max=100"`
	Quantity  float64 `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"omitempty,min=0"`
	Checked   *bool   `json:"checked"`
}

// CompleteListRequest carries the final item values for list completion.
type CompleteListRequest struct {
	Items []struct {
		ID        string  `json:"id" binding:"required"`
		Quantity  float64 `json:"quantity" binding:"required,gt=0"`
		UnitPrice float64 `json:"unit_price" binding:"min=0"`
		Checked   bool    `json:"checked"`
	} `json:"items"`
}

func toItemInputs(items []ItemRequest) []services.ItemInput {
	if items == nil {
		return nil
	}
	inputs := make([]services.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, services.ItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Checked:   item.Checked,
		})
	}
	return inputs
}

// CreateShoppingCategory handles the creation of a shopping category
func (h *ShoppingHandler) CreateShoppingCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ShoppingCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.shoppingService.CreateShoppingCategory(userID, req.Name, req.Color, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetShoppingCategories returns all of the user's shopping categories
func (h *ShoppingHandler) GetShoppingCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.shoppingService.GetShoppingCategories(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// UpdateShoppingCategory handles updating a shopping category
func (h *ShoppingHandler) UpdateShoppingCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ShoppingCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.shoppingService.UpdateShoppingCategory(userID, c.Param("id"), req.Name, req.Color, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteShoppingCategory handles the deletion of a shopping category
func (h *ShoppingHandler) DeleteShoppingCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.shoppingService.DeleteShoppingCategory(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// CreateProduct handles the creation of a product
func (h *ShoppingHandler) CreateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.shoppingService.CreateProduct(userID, services.ProductInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Unit:       req.Unit,
		Brand:      req.Brand,
		Notes:      req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// GetProducts returns a paginated list of the user's products
func (h *ShoppingHandler) GetProducts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.shoppingService.GetProducts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateProduct handles updating a product
func (h *ShoppingHandler) UpdateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	product, err := h.shoppingService.UpdateProduct(userID, c.Param("id"), services.ProductInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Unit:       req.Unit,
		Brand:      req.Brand,
		Notes:      req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles the deletion of a product
func (h *ShoppingHandler) DeleteProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.shoppingService.DeleteProduct(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// CreateList handles the creation of a shopping list
func (h *ShoppingHandler) CreateList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	list, err := h.shoppingService.CreateList(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if len(req.Items) > 0 {
		if _, err := h.shoppingService.AddItems(userID, list.ID, toItemInputs(req.Items)); err != nil {
			respondWithError(c, err)
			return
		}
		list, err = h.shoppingService.GetListByID(userID, list.ID)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"list": list})
}

// GetLists returns all of the user's shopping lists
func (h *ShoppingHandler) GetLists(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	lists, err := h.shoppingService.GetLists(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

// GetListByID returns a single shopping list with its items
func (h *ShoppingHandler) GetListByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := h.shoppingService.GetListByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}

// UpdateList renames a list and optionally replaces its items
func (h *ShoppingHandler) UpdateList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Distinguish "items omitted" (rename only) from "items: []" (clear).
	var raw map[string]json.RawMessage
	body, err := c.GetRawData()
	if err != nil || json.Unmarshal(body, &raw) != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid JSON body"))
		return
	}

	var req ListRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items := toItemInputs(req.Items)
	if _, present := raw["items"]; present && items == nil {
		items = []services.ItemInput{}
	}

	list, err := h.shoppingService.UpdateList(userID, c.Param("id"), req.Name, items)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}

// DeleteList handles the deletion of a shopping list
func (h *ShoppingHandler) DeleteList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID := c.Param("id")
	if err := h.shoppingService.DeleteList(userID, listID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SHOPPING_LIST", "shopping_list", listID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "List deleted successfully"})
}

// CompleteList finalizes a list and records the matching expense
func (h *ShoppingHandler) CompleteList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CompleteListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	updates := make([]services.ItemUpdate, 0, len(req.Items))
	for _, item := range req.Items {
		updates = append(updates, services.ItemUpdate{
			ID:        item.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Checked:   item.Checked,
		})
	}

	listID := c.Param("id")
	list, err := h.shoppingService.CompleteList(userID, listID, updates)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "COMPLETE_SHOPPING_LIST", "shopping_list", listID, c.ClientIP(),
		map[string]interface{}{"total_amount": list.TotalAmount})

	c.JSON(http.StatusOK, gin.H{"list": list})
}

// AddItemsRequest accepts either a single item or a batch.
type AddItemsRequest struct {
	Items []ItemRequest `json:"items"`
	ItemRequest
}

// AddItems appends one or more items to a list
func (h *ShoppingHandler) AddItems(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items := req.Items
	if len(items) == 0 {
		items = []ItemRequest{req.ItemRequest}
	}

	created, err := h.shoppingService.AddItems(userID, c.Param("id"), toItemInputs(items))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"items": created})
}

// UpdateItem updates a single list item
func (h *ShoppingHandler) UpdateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.shoppingService.UpdateItem(userID, c.Param("id"), c.Param("itemId"), services.ItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Checked:   req.Checked,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteItem removes a single list item
func (h *ShoppingHandler) DeleteItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.shoppingService.DeleteItem(userID, c.Param("id"), c.Param("itemId")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// CleanupTransactions removes shopping-generated transactions whose list
// no longer exists
func (h *ShoppingHandler) CleanupTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	removed, err := h.shoppingService.CleanupOrphanTransactions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CLEANUP_SHOPPING_TRANSACTIONS", "transaction", "", c.ClientIP(),
		map[string]interface{}{"removed": removed})

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "meubolso/internal/errors"
	"meubolso/internal/models"
	"meubolso/internal/pagination"
)

// foodCategoryName is the financial category that completed shopping
// lists are booked against.
const foodCategoryName = "Alimentação"

// shoppingTransactionPrefix marks transactions generated by list completion.
const shoppingTransactionPrefix = "Compras: "

// shoppingService handles shopping categories, products, lists, and the
// bridge into financial transactions when a list is completed.
type shoppingService struct {
	db *gorm.DB
}

// NewShoppingService creates a new ShoppingServicer.
func NewShoppingService(db *gorm.DB) ShoppingServicer {
	return &shoppingService{db: db}
}

// CreateShoppingCategory creates a new shopping category
func (s *shoppingService) CreateShoppingCategory(userID, name, color, icon string) (*models.ShoppingCategory, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category := &models.ShoppingCategory{
		UserID: userID,
		Name:   name,
		Color:  color,
		Icon:   icon,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetShoppingCategories retrieves all shopping categories for a user
func (s *shoppingService) GetShoppingCategories(userID string) ([]models.ShoppingCategory, error) {
	var categories []models.ShoppingCategory
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

func (s *shoppingService) getShoppingCategoryByID(userID, categoryID string) (*models.ShoppingCategory, error) {
	var category models.ShoppingCategory
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShoppingCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateShoppingCategory updates a shopping category's mutable fields
func (s *shoppingService) UpdateShoppingCategory(userID, categoryID, name, color, icon string) (*models.ShoppingCategory, error) {
	category, err := s.getShoppingCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if color != "" {
		updates["color"] = color
	}
	if icon != "" {
		updates["icon"] = icon
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteShoppingCategory deletes a category unless products still reference it
func (s *shoppingService) DeleteShoppingCategory(userID, categoryID string) error {
	category, err := s.getShoppingCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrShoppingCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateProduct creates a product in the user's catalog
func (s *shoppingService) CreateProduct(userID string, input ProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "product name is required")
	}
	if input.Unit == "" {
		input.Unit = models.ProductUnitUnit
	}

	if input.CategoryID != nil {
		if _, err := s.getShoppingCategoryByID(userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Name:       input.Name,
		Unit:       input.Unit,
		Brand:      input.Brand,
		Notes:      input.Notes,
	}
	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// GetProducts retrieves a paginated list of the user's products
func (s *shoppingService) GetProducts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()

	base := s.db.Model(&models.Product{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var products []models.Product
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(products, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *shoppingService) getProductByID(userID, productID string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

// UpdateProduct updates a product's mutable fields
func (s *shoppingService) UpdateProduct(userID, productID string, input ProductInput) (*models.Product, error) {
	product, err := s.getProductByID(userID, productID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.getShoppingCategoryByID(userID, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Unit != "" {
		product.Unit = input.Unit
	}
	product.Brand = input.Brand
	product.Notes = input.Notes

	if err := s.db.Save(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// DeleteProduct deletes a product unless list items still reference it
func (s *shoppingService) DeleteProduct(userID, productID string) error {
	product, err := s.getProductByID(userID, productID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.ShoppingListItem{}).Where("product_id = ?", product.ID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrProductInUse
	}

	if err := s.db.Delete(product).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateList creates a new pending shopping list
func (s *shoppingService) CreateList(userID, name string) (*models.ShoppingList, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "list name is required")
	}

	list := &models.ShoppingList{
		UserID: userID,
		Name:   name,
		Status: models.ListStatusPending,
	}
	if err := s.db.Create(list).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return list, nil
}

// GetLists retrieves all of the user's shopping lists with their items
func (s *shoppingService) GetLists(userID string) ([]models.ShoppingList, error) {
	var lists []models.ShoppingList
	if err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lists).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return lists, nil
}

// GetListByID retrieves a shopping list with its items
func (s *shoppingService) GetListByID(userID, listID string) (*models.ShoppingList, error) {
	var list models.ShoppingList
	if err := s.db.Preload("Items").
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShoppingListNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &list, nil
}

// UpdateList renames a list and, when items are provided, replaces its
// item set wholesale.
func (s *shoppingService) UpdateList(userID, listID, name string, items []ItemInput) (*models.ShoppingList, error) {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if name != "" && name != list.Name {
			if err := tx.Model(list).Update("name", name).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if items == nil {
			return nil
		}

		if err := tx.Where("list_id = ?", list.ID).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, in := range items {
			item, err := newListItem(list.ID, in)
			if err != nil {
				return err
			}
			if err := tx.Create(item).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetListByID(userID, listID)
}

// DeleteList removes a list and its items. Completed lists also lose the
// financial transaction that completion generated.
func (s *shoppingService) DeleteList(userID, listID string) error {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if list.Status == models.ListStatusCompleted {
			if err := tx.Where("user_id = ? AND type = ? AND description = ?",
				userID, models.TransactionTypeExpense, shoppingTransactionPrefix+list.Name).
				Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Where("list_id = ?", list.ID).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(list).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CompleteList applies final item values, freezes the list total, and
// records an expense transaction under the user's food category.
func (s *shoppingService) CompleteList(userID, listID string, items []ItemUpdate) (*models.ShoppingList, error) {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}
	if list.Status == models.ListStatusCompleted {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "list is already completed")
	}

	var foodCategory models.Category
	if err := s.db.Where("user_id = ? AND name = ? AND type = ?",
		userID, foodCategoryName, models.CategoryTypeExpense).
		First(&foodCategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFoodCategoryMissing
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, upd := range items {
			res := tx.Model(&models.ShoppingListItem{}).
				Where("id = ? AND list_id = ?", upd.ID, list.ID).
				Updates(map[string]interface{}{
					"quantity":   upd.Quantity,
					"unit_price": upd.UnitPrice,
					"checked":    upd.Checked,
				})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrShoppingItemNotFound
			}
		}

		var finalItems []models.ShoppingListItem
		if err := tx.Where("list_id = ?", list.ID).Find(&finalItems).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var total float64
		for _, item := range finalItems {
			total += item.Quantity * item.UnitPrice
		}

		now := time.Now()
		if err := tx.Model(list).Updates(map[string]interface{}{
			"status":       models.ListStatusCompleted,
			"total_amount": total,
			"completed_at": now,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		categoryID := foodCategory.ID
		transaction := &models.Transaction{
			UserID:            userID,
			CategoryID:        &categoryID,
			Type:              models.TransactionTypeExpense,
			Amount:            total,
			Description:       shoppingTransactionPrefix + list.Name,
			Date:              now,
			TotalInstallments: 1,
			InstallmentNumber: 1,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetListByID(userID, listID)
}

func newListItem(listID string, in ItemInput) (*models.ShoppingListItem, error) {
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item name is required")
	}
	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	checked := false
	if in.Checked != nil {
		checked = *in.Checked
	}
	return &models.ShoppingListItem{
		ListID:    listID,
		ProductID: in.ProductID,
		Name:      in.Name,
		Quantity:  quantity,
		UnitPrice: in.UnitPrice,
		Checked:   checked,
	}, nil
}

// AddItems appends one or more items to a list
func (s *shoppingService) AddItems(userID, listID string, items []ItemInput) ([]models.ShoppingListItem, error) {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one item is required")
	}

	created := make([]models.ShoppingListItem, 0, len(items))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, in := range items {
			item, err := newListItem(list.ID, in)
			if err != nil {
				return err
			}
			if err := tx.Create(item).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			created = append(created, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateItem updates a single list item
func (s *shoppingService) UpdateItem(userID, listID, itemID string, input ItemInput) (*models.ShoppingListItem, error) {
	if _, err := s.GetListByID(userID, listID); err != nil {
		return nil, err
	}

	var item models.ShoppingListItem
	if err := s.db.Where("id = ? AND list_id = ?", itemID, listID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShoppingItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if input.Name != "" {
		item.Name = input.Name
	}
	if input.Quantity > 0 {
		item.Quantity = input.Quantity
	}
	if input.UnitPrice >= 0 {
		item.UnitPrice = input.UnitPrice
	}
	if input.Checked != nil {
		item.Checked = *input.Checked
	}
	if input.ProductID != nil {
		item.ProductID = input.ProductID
	}

	if err := s.db.Save(&item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// DeleteItem removes a single list item
func (s *shoppingService) DeleteItem(userID, listID, itemID string) error {
	if _, err := s.GetListByID(userID, listID); err != nil {
		return err
	}

	res := s.db.Where("id = ? AND list_id = ?", itemID, listID).Delete(&models.ShoppingListItem{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrShoppingItemNotFound
	}
	return nil
}

// normalizeListName folds case and whitespace so renamed or re-typed
// list names still match their generated transactions.
func normalizeListName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CleanupOrphanTransactions deletes shopping-generated expense
// transactions whose list no longer exists. Returns how many were removed.
func (s *shoppingService) CleanupOrphanTransactions(userID string) (int64, error) {
	var lists []models.ShoppingList
	if err := s.db.Where("user_id = ?", userID).Find(&lists).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	known := make(map[string]bool, len(lists))
	for _, list := range lists {
		known[normalizeListName(list.Name)] = true
	}

	var candidates []models.Transaction
	if err := s.db.
		Where("user_id = ? AND type = ? AND description LIKE ?",
			userID, models.TransactionTypeExpense, shoppingTransactionPrefix+"%").
		Find(&candidates).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var removed int64
	for i := range candidates {
		name := strings.TrimPrefix(candidates[i].Description, shoppingTransactionPrefix)
		if known[normalizeListName(name)] {
			continue
		}
		if err := s.db.Delete(&candidates[i]).Error; err != nil {
			return removed, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		removed++
	}

	return removed, nil
}

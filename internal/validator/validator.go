// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("product_unit", validateProductUnit)
		_ = v.RegisterValidation("list_status", validateListStatus)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "revenue", "expense":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "revenue", "expense":
		return true
	}
	return false
}

func validateProductUnit(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "un", "kg", "l", "dz", "m", "cx":
		return true
	}
	return false
}

func validateListStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "completed":
		return true
	}
	return false
}

// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxMoney bounds amounts to seven significant digits with two fraction digits.
var maxMoney = decimal.NewFromInt(100000)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("category_name", validateCategoryName)
	}
}

// ValidMoney reports whether d has at most two fraction digits and fits in
// seven significant digits.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxMoney)
}

// decimalValue exposes decimal fields to the validator as float64 so the
// numeric tags (gt, gte, min, max) apply to them.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateMoney(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		return ValidMoney(decimal.NewFromFloat(fl.Field().Float()))
	case reflect.String:
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ValidMoney(d)
	}
	return false
}

func validateCategoryName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	return name != "" && len(name) <= 200
}

// internal/models/amount.go
package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Amount is a token amount with up to 18 decimal places. Postgres stores it
// as an exact numeric. Sqlite stores the text form, since its NUMERIC
// affinity keeps only 15 significant digits.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (Amount) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "decimal(36,18)"
}

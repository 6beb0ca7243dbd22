package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartRecord is the durable per-customer cart aggregate. Totals are
// recomputed inside the same transaction as every line mutation, so a row
// never carries aggregates inconsistent with its lines.
type CartRecord struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TotalItems int             `gorm:"column:total_items;not null;default:0"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	Lines      []CartLine      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

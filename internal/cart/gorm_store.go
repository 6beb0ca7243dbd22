package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clickbrilhe/storefront-backend/pkg/db/models"
)

// GormStore persists carts in Postgres. Update locks the cart row for the
// duration of the transaction so concurrent mutations of the same cart
// serialize instead of clobbering each other.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore binds the store to the provided GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the cart state, or an empty cart when no row exists yet.
func (s *GormStore) Get(ctx context.Context, cartID uuid.UUID) (*State, error) {
	var record models.CartRecord
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", cartID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewState(cartID), nil
	}
	if err != nil {
		return nil, err
	}
	return stateFromRecord(&record), nil
}

// Update applies fn to the current cart state inside a transaction and
// replaces the persisted snapshot with whatever fn leaves behind.
func (s *GormStore) Update(ctx context.Context, cartID uuid.UUID, fn func(state *State) error) (*State, error) {
	var result *State
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockRecord(ctx, tx, cartID)
		if err != nil {
			return err
		}

		state := stateFromRecord(record)
		if err := fn(state); err != nil {
			return err
		}
		state.recompute()

		if err := replaceLines(ctx, tx, cartID, state.Lines); err != nil {
			return err
		}
		record.TotalItems = state.TotalItems
		record.TotalPrice = state.TotalPrice
		record.Lines = nil
		if err := tx.WithContext(ctx).Save(record).Error; err != nil {
			return err
		}

		result = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockRecord fetches the cart row FOR UPDATE, creating it first when the
// cart has never been written.
func lockRecord(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Lines").
		Where("id = ?", cartID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.CartRecord{ID: cartID}
		if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func replaceLines(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, lines []Line) error {
	if err := tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.CartLine{
			CartID:      cartID,
			ProductID:   line.ProductID,
			Name:        line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			MaxQuantity: line.MaxQuantity,
		})
	}
	return tx.WithContext(ctx).Create(&rows).Error
}

func stateFromRecord(record *models.CartRecord) *State {
	state := &State{
		ID:         record.ID,
		Lines:      make([]Line, 0, len(record.Lines)),
		TotalItems: record.TotalItems,
		TotalPrice: record.TotalPrice,
	}
	for _, row := range record.Lines {
		state.Lines = append(state.Lines, Line{
			ProductID:   row.ProductID,
			Name:        row.Name,
			UnitPrice:   row.UnitPrice,
			Quantity:    row.Quantity,
			MaxQuantity: row.MaxQuantity,
		})
	}
	return state
}

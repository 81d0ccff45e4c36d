package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

// MenuItemInput describes a new menu item
type MenuItemInput struct {
	Name          string
	Description   string
	Price         float64
	Category      string
	Image         string
	StockQuantity int
	MinimumStock  *int
	ExpiryDate    *time.Time
	IsAvailable   *bool
}

// MenuItemUpdate is a partial update. Stock moves through AdjustStock.
type MenuItemUpdate struct {
	Name         *string
	Description  *string
	Price        *float64
	Category     *string
	MinimumStock *int
	ExpiryDate   *time.Time
	IsAvailable  *bool
}

// StockChange is either a signed adjustment or an absolute quantity
type StockChange struct {
	Adjustment *int
	Quantity   *int
}

// MenuService manages the menu and the stock counters of its items
type MenuService struct {
	store  database.Store
	logger *zap.Logger
	now    Clock
}

// NewMenuService creates a new menu service
func NewMenuService(store database.Store, logger *zap.Logger, now Clock) *MenuService {
	return &MenuService{store: store, logger: logger.Named("menu"), now: now}
}

// List returns menu items matching filter
func (s *MenuService) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		items, err = tx.MenuItems().List(ctx, filter)
		return err
	})
	return items, err
}

// Get returns the menu item with the given id
func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		item, err = tx.MenuItems().Get(ctx, id)
		return err
	})
	return item, err
}

// LowStock lists available items at or below their minimum stock
func (s *MenuService) LowStock(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		items, err = tx.MenuItems().ListLowStock(ctx)
		return err
	})
	return items, err
}

// Create validates in and stores a new menu item
func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	now := s.now()
	item := &models.MenuItem{
		ID:            uuid.NewString(),
		Name:          clean(in.Name),
		Description:   clean(in.Description),
		Price:         in.Price,
		Category:      in.Category,
		Image:         in.Image,
		StockQuantity: in.StockQuantity,
		MinimumStock:  models.DefaultMinimumStock,
		ExpiryDate:    in.ExpiryDate,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.MinimumStock != nil {
		item.MinimumStock = *in.MinimumStock
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}

	if err := s.store.Write(ctx, func(tx database.Tx) error {
		return tx.MenuItems().Create(ctx, item)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("menu item created", zap.String("menu_item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

// Update applies the non-nil fields of in. Stock is left untouched.
func (s *MenuService) Update(ctx context.Context, id string, in MenuItemUpdate) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.MenuItems().Get(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			current.Name = clean(*in.Name)
		}
		if in.Description != nil {
			current.Description = clean(*in.Description)
		}
		if in.Price != nil {
			current.Price = *in.Price
		}
		if in.Category != nil {
			current.Category = *in.Category
		}
		if in.MinimumStock != nil {
			current.MinimumStock = *in.MinimumStock
		}
		if in.ExpiryDate != nil {
			current.ExpiryDate = in.ExpiryDate
		}
		if in.IsAvailable != nil {
			current.IsAvailable = *in.IsAvailable
		}
		if err := validateMenuItem(current); err != nil {
			return err
		}
		current.UpdatedAt = s.now()
		if err := tx.MenuItems().Update(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	return item, err
}

// Delete removes a menu item. Orders and invoices keep their snapshots.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	return s.store.Write(ctx, func(tx database.Tx) error {
		return tx.MenuItems().Delete(ctx, id)
	})
}

// AdjustStock restocks or corrects an item's stock counter
func (s *MenuService) AdjustStock(ctx context.Context, id string, change StockChange) (*models.MenuItem, error) {
	if (change.Adjustment == nil) == (change.Quantity == nil) {
		return nil, invalid("exactly one of adjustment or quantity is required")
	}
	if change.Quantity != nil && *change.Quantity < 0 {
		return nil, invalid("quantity cannot be negative")
	}

	var item *models.MenuItem
	err := s.store.Write(ctx, func(tx database.Tx) error {
		delta := 0
		if change.Adjustment != nil {
			delta = *change.Adjustment
		} else {
			current, err := tx.MenuItems().Get(ctx, id)
			if err != nil {
				return err
			}
			delta = *change.Quantity - current.StockQuantity
		}
		var err error
		item, err = tx.MenuItems().AdjustStock(ctx, id, delta, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted", zap.String("menu_item_id", id), zap.Int("stock", item.StockQuantity))
	return item, nil
}

// SetImage records the public path of an uploaded image
func (s *MenuService) SetImage(ctx context.Context, id, path string) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.MenuItems().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Image = path
		current.UpdatedAt = s.now()
		if err := tx.MenuItems().Update(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	return item, err
}

var sampleMenu = []MenuItemInput{
	{Name: "Espresso", Description: "Strong black coffee", Price: 3.50, Category: "Hot Coffee", StockQuantity: 100},
	{Name: "Cappuccino", Description: "Espresso with steamed milk foam", Price: 4.50, Category: "Hot Coffee", StockQuantity: 100},
	{Name: "Latte", Description: "Espresso with steamed milk", Price: 4.00, Category: "Hot Coffee", StockQuantity: 100},
	{Name: "Mocha", Description: "Espresso with chocolate and steamed milk", Price: 4.75, Category: "Hot Coffee", StockQuantity: 100},
	{Name: "Iced Americano", Description: "Espresso over ice", Price: 3.75, Category: "Cold Coffee", StockQuantity: 80},
	{Name: "Green Tea", Description: "Loose leaf green tea", Price: 2.75, Category: "Tea", StockQuantity: 60},
	{Name: "Croissant", Description: "Buttery flaky pastry", Price: 3.25, Category: "Snacks", StockQuantity: 50},
	{Name: "Cheesecake", Description: "New York style slice", Price: 5.50, Category: "Desserts", StockQuantity: 20},
}

// SeedSampleMenu fills an empty menu with a starter catalogue and reports
// how many items were added.
func (s *MenuService) SeedSampleMenu(ctx context.Context) (int, error) {
	added := 0
	err := s.store.Write(ctx, func(tx database.Tx) error {
		added = 0
		existing, err := tx.MenuItems().List(ctx, models.MenuFilter{})
		if err != nil || len(existing) > 0 {
			return err
		}
		now := s.now()
		for _, in := range sampleMenu {
			item := &models.MenuItem{
				ID:            uuid.NewString(),
				Name:          in.Name,
				Description:   in.Description,
				Price:         in.Price,
				Category:      in.Category,
				StockQuantity: in.StockQuantity,
				MinimumStock:  models.DefaultMinimumStock,
				IsAvailable:   true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.MenuItems().Create(ctx, item); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err == nil && added > 0 {
		s.logger.Info("sample menu seeded", zap.Int("items", added))
	}
	return added, err
}

func validateMenuItem(m *models.MenuItem) error {
	switch {
	case m.Name == "":
		return invalid("name is required")
	case m.Price < 0 || math.IsNaN(m.Price):
		return invalid("price cannot be negative")
	case !models.ValidCategory(m.Category):
		return invalid("unknown category %q", m.Category)
	case m.StockQuantity < 0:
		return invalid("stockQuantity cannot be negative")
	case m.MinimumStock < 0:
		return invalid("minimumStock cannot be negative")
	}
	return nil
}

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

// SupplyInput describes a raw inventory article
type SupplyInput struct {
	Name          string
	Brand         string
	Specification string
	ExpiryDate    *time.Time
	CostPrice     float64
	Quantity      int
	Image         string
}

// SupplyService manages the raw inventory (beans, milk, cups)
type SupplyService struct {
	store  database.Store
	logger *zap.Logger
	now    Clock
}

// NewSupplyService creates a new supply service
func NewSupplyService(store database.Store, logger *zap.Logger, now Clock) *SupplyService {
	return &SupplyService{store: store, logger: logger.Named("supplies"), now: now}
}

// List returns every supply
func (s *SupplyService) List(ctx context.Context) ([]models.Supply, error) {
	var supplies []models.Supply
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		supplies, err = tx.Supplies().List(ctx)
		return err
	})
	return supplies, err
}

// Get returns the supply with the given id
func (s *SupplyService) Get(ctx context.Context, id string) (*models.Supply, error) {
	var supply *models.Supply
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		supply, err = tx.Supplies().Get(ctx, id)
		return err
	})
	return supply, err
}

// Create validates in and stores a new supply
func (s *SupplyService) Create(ctx context.Context, in SupplyInput) (*models.Supply, error) {
	supply := s.build(in, s.now())
	if err := validateSupply(supply); err != nil {
		return nil, err
	}
	if err := s.store.Write(ctx, func(tx database.Tx) error {
		return tx.Supplies().Create(ctx, supply)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("supply created", zap.String("supply_id", supply.ID), zap.String("name", supply.Name))
	return supply, nil
}

// Update replaces every editable field of a supply
func (s *SupplyService) Update(ctx context.Context, id string, in SupplyInput) (*models.Supply, error) {
	var supply *models.Supply
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Supplies().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Name = clean(in.Name)
		current.Brand = clean(in.Brand)
		current.Specification = clean(in.Specification)
		current.ExpiryDate = in.ExpiryDate
		current.CostPrice = in.CostPrice
		current.Quantity = in.Quantity
		if in.Image != "" {
			current.Image = in.Image
		}
		if err := validateSupply(current); err != nil {
			return err
		}
		current.LastUpdated = s.now()
		if err := tx.Supplies().Update(ctx, current); err != nil {
			return err
		}
		supply = current
		return nil
	})
	return supply, err
}

// Delete removes a supply
func (s *SupplyService) Delete(ctx context.Context, id string) error {
	return s.store.Write(ctx, func(tx database.Tx) error {
		return tx.Supplies().Delete(ctx, id)
	})
}

// SetImage records the public path of an uploaded image
func (s *SupplyService) SetImage(ctx context.Context, id, path string) (*models.Supply, error) {
	var supply *models.Supply
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Supplies().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Image = path
		current.LastUpdated = s.now()
		if err := tx.Supplies().Update(ctx, current); err != nil {
			return err
		}
		supply = current
		return nil
	})
	return supply, err
}

type sampleSupply struct {
	in         SupplyInput
	expiryDays int // 0 means the article does not expire
}

var sampleSupplies = []sampleSupply{
	{SupplyInput{Name: "Coffee Beans - Arabica", Brand: "Premium Coffee Co.", Specification: "Medium roast, 100% Arabica beans", CostPrice: 15.99, Quantity: 50}, 180},
	{SupplyInput{Name: "Coffee Beans - Robusta", Brand: "Premium Coffee Co.", Specification: "Dark roast, 100% Robusta beans", CostPrice: 14.99, Quantity: 40}, 180},
	{SupplyInput{Name: "Milk - Full Fat", Brand: "Dairy Fresh", Specification: "Pasteurized, 3.5% fat", CostPrice: 3.99, Quantity: 30}, 14},
	{SupplyInput{Name: "Milk - Low Fat", Brand: "Dairy Fresh", Specification: "Pasteurized, 1.5% fat", CostPrice: 3.49, Quantity: 25}, 14},
	{SupplyInput{Name: "Sugar - White", Brand: "Sweet Life", Specification: "Refined white sugar", CostPrice: 2.99, Quantity: 100}, 365},
	{SupplyInput{Name: "Sugar - Brown", Brand: "Sweet Life", Specification: "Unrefined brown sugar", CostPrice: 3.49, Quantity: 80}, 365},
	{SupplyInput{Name: "Chocolate Syrup", Brand: "Sweet Delights", Specification: "Premium chocolate syrup", CostPrice: 5.99, Quantity: 20}, 180},
	{SupplyInput{Name: "Caramel Syrup", Brand: "Sweet Delights", Specification: "Premium caramel syrup", CostPrice: 5.99, Quantity: 18}, 180},
	{SupplyInput{Name: "Vanilla Syrup", Brand: "Sweet Delights", Specification: "Premium vanilla syrup", CostPrice: 6.49, Quantity: 15}, 180},
	{SupplyInput{Name: "Tea - Black", Brand: "Tea Haven", Specification: "Premium black tea leaves", CostPrice: 8.99, Quantity: 30}, 365},
	{SupplyInput{Name: "Tea - Green", Brand: "Tea Haven", Specification: "Premium green tea leaves", CostPrice: 9.99, Quantity: 25}, 365},
	{SupplyInput{Name: "Whipped Cream", Brand: "Dairy Fresh", Specification: "Ready to use whipped cream", CostPrice: 4.99, Quantity: 15}, 30},
	{SupplyInput{Name: "Cinnamon Powder", Brand: "Spice World", Specification: "Ground cinnamon powder", CostPrice: 2.99, Quantity: 35}, 365},
	{SupplyInput{Name: "Disposable Coffee Cups", Brand: "Eco Serve", Specification: "12oz paper cups with lids", CostPrice: 0.15, Quantity: 500}, 0},
	{SupplyInput{Name: "Disposable Tea Cups", Brand: "Eco Serve", Specification: "8oz paper cups with lids", CostPrice: 0.12, Quantity: 400}, 0},
}

// AddSamples inserts the sample catalogue in one transaction
func (s *SupplyService) AddSamples(ctx context.Context) ([]models.Supply, error) {
	now := s.now()
	supplies := make([]models.Supply, 0, len(sampleSupplies))
	for _, sample := range sampleSupplies {
		in := sample.in
		if sample.expiryDays > 0 {
			expiry := now.AddDate(0, 0, sample.expiryDays)
			in.ExpiryDate = &expiry
		}
		supplies = append(supplies, *s.build(in, now))
	}

	err := s.store.Write(ctx, func(tx database.Tx) error {
		for i := range supplies {
			if err := tx.Supplies().Create(ctx, &supplies[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sample supplies added", zap.Int("count", len(supplies)))
	return supplies, nil
}

func (s *SupplyService) build(in SupplyInput, now time.Time) *models.Supply {
	return &models.Supply{
		ID:            uuid.NewString(),
		Name:          clean(in.Name),
		Brand:         clean(in.Brand),
		Specification: clean(in.Specification),
		ExpiryDate:    in.ExpiryDate,
		CostPrice:     in.CostPrice,
		Quantity:      in.Quantity,
		Image:         in.Image,
		DateAdded:     now,
		LastUpdated:   now,
	}
}

func validateSupply(s *models.Supply) error {
	switch {
	case s.Name == "":
		return invalid("name is required")
	case s.Brand == "":
		return invalid("brand is required")
	case s.CostPrice < 0 || math.IsNaN(s.CostPrice):
		return invalid("costPrice cannot be negative")
	case s.Quantity < 0:
		return invalid("quantity cannot be negative")
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

// TableInput describes a new table
type TableInput struct {
	TableNumber    string
	Seats          int
	Location       string
	Status         models.TableStatus
	AssignedWaiter *string
	Position       *models.Position
}

// TableUpdate is a partial update. Nil fields are left unchanged.
type TableUpdate struct {
	TableNumber    *string
	Seats          *int
	Location       *string
	Status         *models.TableStatus
	AssignedWaiter *string
	Position       *models.Position
}

// TableService manages tables and the floor layout
type TableService struct {
	store  database.Store
	logger *zap.Logger
	now    Clock
}

// NewTableService creates a new table service
func NewTableService(store database.Store, logger *zap.Logger, now Clock) *TableService {
	return &TableService{store: store, logger: logger.Named("tables"), now: now}
}

// List returns tables matching filter, ordered by location then number
func (s *TableService) List(ctx context.Context, filter models.TableFilter) ([]models.Table, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown table status %q", filter.Status)
	}
	var tables []models.Table
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		tables, err = tx.Tables().List(ctx, filter)
		return err
	})
	return tables, err
}

// Get returns the table with the given id
func (s *TableService) Get(ctx context.Context, id string) (*models.Table, error) {
	var table *models.Table
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		table, err = tx.Tables().Get(ctx, id)
		return err
	})
	return table, err
}

// Create adds a table. A waiter creating a table without naming a waiter
// is assigned to it.
func (s *TableService) Create(ctx context.Context, actor models.Actor, in TableInput) (*models.Table, error) {
	now := s.now()
	table := &models.Table{
		ID:             uuid.NewString(),
		TableNumber:    clean(in.TableNumber),
		Seats:          in.Seats,
		Location:       in.Location,
		Status:         in.Status,
		AssignedWaiter: in.AssignedWaiter,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if table.Status == "" {
		table.Status = models.TableAvailable
	}
	if in.Position != nil {
		table.Position = *in.Position
	}
	if table.AssignedWaiter == nil && actor.Role == models.RoleWaiter {
		waiter := actor.ID
		table.AssignedWaiter = &waiter
	}
	if err := validateTable(table); err != nil {
		return nil, err
	}

	err := s.store.Write(ctx, func(tx database.Tx) error {
		return tx.Tables().Create(ctx, table)
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, conflict("table number %s already exists", table.TableNumber)
		}
		return nil, err
	}

	s.logger.Info("table created", zap.String("table_id", table.ID), zap.String("table_number", table.TableNumber))
	return table, nil
}

// Update applies the non-nil fields of in. A table with open orders
// cannot leave the occupied status.
func (s *TableService) Update(ctx context.Context, id string, in TableUpdate) (*models.Table, error) {
	var table *models.Table
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Tables().Get(ctx, id)
		if err != nil {
			return err
		}
		if in.TableNumber != nil {
			current.TableNumber = clean(*in.TableNumber)
		}
		if in.Seats != nil {
			current.Seats = *in.Seats
		}
		if in.Location != nil {
			current.Location = *in.Location
		}
		if in.AssignedWaiter != nil {
			if *in.AssignedWaiter == "" {
				current.AssignedWaiter = nil
			} else {
				waiter := *in.AssignedWaiter
				current.AssignedWaiter = &waiter
			}
		}
		if in.Position != nil {
			current.Position = *in.Position
		}
		if in.Status != nil {
			// a table with open orders stays occupied until they close
			if *in.Status != current.Status && *in.Status != models.TableOccupied {
				if err := requireNoOpenOrders(ctx, tx, current, "marked "+string(*in.Status)); err != nil {
					return err
				}
			}
			current.Status = *in.Status
		}
		if err := validateTable(current); err != nil {
			return err
		}
		current.UpdatedAt = s.now()
		if err := tx.Tables().Update(ctx, current); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return conflict("table number %s already exists", current.TableNumber)
			}
			return err
		}
		table = current
		return nil
	})
	return table, err
}

// UpdatePosition moves a table on the floor plan
func (s *TableService) UpdatePosition(ctx context.Context, id string, pos models.Position) (*models.Table, error) {
	var table *models.Table
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Tables().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Position = pos
		current.UpdatedAt = s.now()
		if err := tx.Tables().Update(ctx, current); err != nil {
			return err
		}
		table = current
		return nil
	})
	return table, err
}

// Delete removes a table that has no open orders
func (s *TableService) Delete(ctx context.Context, id string) error {
	err := s.store.Write(ctx, func(tx database.Tx) error {
		table, err := tx.Tables().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := requireNoOpenOrders(ctx, tx, table, "deleted"); err != nil {
			return err
		}
		return tx.Tables().Delete(ctx, id)
	})
	if err == nil {
		s.logger.Info("table deleted", zap.String("table_id", id))
	}
	return err
}

// Merge replaces two idle tables with one whose number is "n1-n2" and
// whose seats are the sum of both. Location and position come from the
// first table. Nothing changes unless every step succeeds.
func (s *TableService) Merge(ctx context.Context, firstID, secondID string) (*models.Table, error) {
	if firstID == "" || secondID == "" {
		return nil, invalid("both table ids are required")
	}
	if firstID == secondID {
		return nil, invalid("cannot merge a table with itself")
	}

	var merged *models.Table
	err := s.store.Write(ctx, func(tx database.Tx) error {
		first, err := tx.Tables().Get(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := tx.Tables().Get(ctx, secondID)
		if err != nil {
			return err
		}
		for _, t := range []*models.Table{first, second} {
			if err := requireNoOpenOrders(ctx, tx, t, "merged"); err != nil {
				return err
			}
		}

		now := s.now()
		merged = &models.Table{
			ID:          uuid.NewString(),
			TableNumber: fmt.Sprintf("%s-%s", first.TableNumber, second.TableNumber),
			Seats:       first.Seats + second.Seats,
			Location:    first.Location,
			Status:      models.TableAvailable,
			Position:    first.Position,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Tables().Delete(ctx, first.ID); err != nil {
			return err
		}
		if err := tx.Tables().Delete(ctx, second.ID); err != nil {
			return err
		}
		if err := tx.Tables().Create(ctx, merged); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return conflict("table number %s already exists", merged.TableNumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tables merged",
		zap.String("first", firstID),
		zap.String("second", secondID),
		zap.String("merged", merged.ID),
	)
	return merged, nil
}

func validateTable(t *models.Table) error {
	switch {
	case t.TableNumber == "":
		return invalid("tableNumber is required")
	case t.Seats < 1:
		return invalid("seats must be at least 1")
	case !models.ValidLocation(t.Location):
		return invalid("unknown location %q", t.Location)
	case !t.Status.Valid():
		return invalid("unknown table status %q", t.Status)
	}
	return nil
}

func requireNoOpenOrders(ctx context.Context, tx database.Tx, t *models.Table, action string) error {
	open, err := tx.Orders().CountOpenByTable(ctx, t.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return conflict("table %s has %d open order(s) and cannot be %s", t.TableNumber, open, action)
	}
	return nil
}

// releaseTable marks a table available once its last open order is closed.
func releaseTable(ctx context.Context, tx database.Tx, tableID string, now time.Time) error {
	open, err := tx.Orders().CountOpenByTable(ctx, tableID)
	if err != nil || open > 0 {
		return err
	}
	table, err := tx.Tables().Get(ctx, tableID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if table.Status != models.TableOccupied {
		return nil
	}
	table.Status = models.TableAvailable
	table.UpdatedAt = now
	return tx.Tables().Update(ctx, table)
}

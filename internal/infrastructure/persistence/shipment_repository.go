package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements procurement.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment and the ids of its orders
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Shipment %s not found", id))
		}
		return nil, err
	}
	members, err := r.orderIDs(ctx, r.db, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members[model.ID]), nil
}

// FindAll lists shipments. Supported filters: status, location.
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Shipment, error) {
	query := applyShipmentFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter)
	query = paginate(applySort(query, filter, ShipmentSortFields), filter)

	var ms []models.ShipmentModel
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(ms))
	for i := range ms {
		ids[i] = ms[i].ID
	}
	members, err := r.orderIDs(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	shipments := make([]procurement.Shipment, len(ms))
	for i := range ms {
		shipments[i] = *ms[i].ToDomain(members[ms[i].ID])
	}
	return shipments, nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := applyShipmentFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter).
		Count(&count).Error
	return count, err
}

// SaveWithLock persists status changes if the stored version still matches
func (r *GormShipmentRepository) SaveWithLock(ctx context.Context, shipment *procurement.Shipment) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.ShipmentModel{}).
		Where("id = ? AND version = ?", shipment.ID, shipment.Version).
		Updates(map[string]any{
			"status":        shipment.Status,
			"dispatched_at": shipment.DispatchedAt,
			"version":       shipment.Version + 1,
			"updated_at":    now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeStaleData,
			fmt.Sprintf("Shipment %s was modified by another request", shipment.ShipmentNumber))
	}
	shipment.Version++
	shipment.UpdatedAt = now
	return nil
}

// CreateFromClaims accepts a plan in one transaction. Every claimed order is
// re-read, checked against the eligible statuses and its claimed version,
// then moved to CONSOLIDATED with a conditional update so a concurrent
// acceptance of the same order fails instead of double-booking it.
func (r *GormShipmentRepository) CreateFromClaims(
	ctx context.Context,
	claims []procurement.PlanOrderClaim,
	eligible []procurement.OrderStatus,
	build func(orders []*procurement.PurchaseOrder) (*procurement.Shipment, error),
) (*procurement.Shipment, []*procurement.PurchaseOrder, error) {
	if len(claims) == 0 {
		return nil, nil, shared.NewDomainError(shared.CodeValidation, "Plan must reference at least one order")
	}
	if eligible == nil {
		eligible = procurement.DefaultPlanningStatuses
	}

	var (
		shipment *procurement.Shipment
		orders   []*procurement.PurchaseOrder
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(claims))
		seen := make(map[uuid.UUID]bool, len(claims))
		for _, c := range claims {
			if seen[c.OrderID] {
				return shared.NewDomainError(shared.CodeValidation,
					fmt.Sprintf("Order %s appears twice in the plan", c.OrderID))
			}
			seen[c.OrderID] = true
			ids = append(ids, c.OrderID)
		}

		query := preloadItems(tx).Where("id IN ?", ids)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var ms []models.PurchaseOrderModel
		if err := query.Find(&ms).Error; err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*procurement.PurchaseOrder, len(ms))
		for i := range ms {
			byID[ms[i].ID] = ms[i].ToDomain()
		}

		orders = make([]*procurement.PurchaseOrder, 0, len(claims))
		for _, c := range claims {
			o, ok := byID[c.OrderID]
			if !ok {
				return shared.NewDomainError(shared.CodePlanConflict,
					fmt.Sprintf("Order %s no longer exists", c.OrderID))
			}
			if !o.IsEligibleForPlanning(eligible) {
				return shared.NewDomainError(shared.CodePlanConflict,
					fmt.Sprintf("Order %s is %s and can no longer be consolidated", o.PONumber, o.Status))
			}
			if c.Version != 0 && c.Version != o.Version {
				return shared.NewDomainError(shared.CodeStaleData,
					fmt.Sprintf("Order %s changed after the plan was generated", o.PONumber))
			}
			orders = append(orders, o)
		}

		var err error
		shipment, err = build(orders)
		if err != nil {
			return err
		}
		if err := tx.Create(models.ShipmentModelFromDomain(shipment)).Error; err != nil {
			return err
		}

		for _, o := range orders {
			loadedVersion := o.Version
			if err := o.MarkConsolidated(shipment.ID, eligible); err != nil {
				return err
			}
			result := tx.Model(&models.PurchaseOrderModel{}).
				Where("id = ? AND version = ? AND status IN ?", o.ID, loadedVersion, eligible).
				Updates(map[string]any{
					"status":       o.Status,
					"shipment_id":  o.ShipmentID,
					"fulfilled_at": o.FulfilledAt,
					"version":      loadedVersion + 1,
					"updated_at":   o.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.NewDomainError(shared.CodePlanConflict,
					fmt.Sprintf("Order %s was consumed by another shipment", o.PONumber))
			}
			o.Version = loadedVersion + 1
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return shipment, orders, nil
}

// orderIDs maps each shipment id to its member order ids
func (r *GormShipmentRepository) orderIDs(ctx context.Context, db *gorm.DB, shipmentIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	members := make(map[uuid.UUID][]uuid.UUID, len(shipmentIDs))
	if len(shipmentIDs) == 0 {
		return members, nil
	}
	var rows []struct {
		ID         uuid.UUID
		ShipmentID uuid.UUID
	}
	if err := db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Select("id, shipment_id").
		Where("shipment_id IN ?", shipmentIDs).
		Order("order_date ASC").
		Order("id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		members[row.ShipmentID] = append(members[row.ShipmentID], row.ID)
	}
	return members, nil
}

func applyShipmentFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "location":
			if loc, ok := value.(string); ok {
				query = query.Where("LOWER(location) = LOWER(?)", procurement.NormalizeLocation(loc))
			}
		}
	}
	return query
}

var _ procurement.ShipmentRepository = (*GormShipmentRepository)(nil)

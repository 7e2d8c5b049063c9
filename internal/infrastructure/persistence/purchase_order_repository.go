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
)

// GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

func toDomainOrders(ms []models.PurchaseOrderModel) []procurement.PurchaseOrder {
	orders := make([]procurement.PurchaseOrder, len(ms))
	for i := range ms {
		orders[i] = *ms[i].ToDomain()
	}
	return orders
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Purchase order %s not found", id))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds every order whose id is in ids
func (r *GormPurchaseOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.PurchaseOrder, error) {
	if len(ids) == 0 {
		return []procurement.PurchaseOrder{}, nil
	}
	var ms []models.PurchaseOrderModel
	if err := preloadItems(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(ms), nil
}

// FindAll lists purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter procurement.OrderFilter) ([]procurement.PurchaseOrder, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter)
	query = applySort(query, filter.Filter, PurchaseOrderSortFields)
	query = paginate(query, filter.Filter)

	var ms []models.PurchaseOrderModel
	if err := preloadItems(query).Find(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(ms), nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter procurement.OrderFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountByStatus returns the number of orders per status
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[procurement.OrderStatus]int64, error) {
	var rows []struct {
		Status procurement.OrderStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[procurement.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// FindByStatuses returns every order in one of the statuses, oldest first
func (r *GormPurchaseOrderRepository) FindByStatuses(ctx context.Context, statuses []procurement.OrderStatus) ([]procurement.PurchaseOrder, error) {
	if len(statuses) == 0 {
		return []procurement.PurchaseOrder{}, nil
	}
	var ms []models.PurchaseOrderModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Where("status IN ?", statuses).
		Order("order_date ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(ms), nil
}

// FindWithDeliveryCommitment returns every order that has an expected delivery date
func (r *GormPurchaseOrderRepository) FindWithDeliveryCommitment(ctx context.Context) ([]procurement.PurchaseOrder, error) {
	var ms []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("expected_delivery_date IS NOT NULL").
		Order("supplier_name ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(ms), nil
}

// ExistsByPONumber checks if the supplier already submitted the PO number
func (r *GormPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, supplierName, poNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("supplier_name = ? AND po_number = ?", supplierName, poNumber).
		Count(&count).Error
	return count > 0, err
}

// Save inserts a new purchase order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(order)
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError(shared.CodeValidation,
					fmt.Sprintf("PO %s already exists for supplier %s", order.PONumber, order.SupplierName))
			}
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock writes the mutable header columns if the stored version still
// matches order.Version, then bumps the version on both sides.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ?", order.ID).
			Select("version").
			Scan(&currentVersion)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Purchase order %s not found", order.ID))
		}
		if currentVersion != order.Version {
			return staleOrder(order)
		}

		now := time.Now()
		columns := models.PurchaseOrderModelFromDomain(order).HeaderColumns()
		columns["version"] = currentVersion + 1
		columns["updated_at"] = now

		result = tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(columns)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return staleOrder(order)
		}

		order.Version = currentVersion + 1
		order.UpdatedAt = now
		return nil
	})
}

// DeleteAll removes every item, order and shipment and returns the number of orders deleted
func (r *GormPurchaseOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
		result := all.Delete(&models.PurchaseOrderModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return all.Delete(&models.ShipmentModel{}).Error
	})
	return deleted, err
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter procurement.OrderFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Supplier != "" {
		query = query.Where("supplier_name = ?", filter.Supplier)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) = LOWER(?)", procurement.NormalizeLocation(filter.Location))
	}
	for key, value := range filter.Filters {
		switch key {
		case "po_number":
			query = query.Where("po_number = ?", value)
		case "shipment_id":
			query = query.Where("shipment_id = ?", value)
		case "from_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "to_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}
	return query
}

func staleOrder(order *procurement.PurchaseOrder) error {
	return shared.NewDomainError(shared.CodeStaleData,
		fmt.Sprintf("Purchase order %s was modified by another request", order.PONumber))
}

func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

func applySort(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
}

var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
)

// ShipmentModel is the persistence model for the Shipment aggregate root.
// Member orders are linked through purchase_orders.shipment_id.
type ShipmentModel struct {
	AggregateModel
	ShipmentNumber string                     `gorm:"type:varchar(40);not null;uniqueIndex:idx_shipments_number"`
	Location       string                     `gorm:"type:varchar(200);not null;index"`
	Route          string                     `gorm:"type:varchar(300);not null;default:''"`
	VehicleType    string                     `gorm:"type:varchar(100);not null"`
	CapacityKg     decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	TotalWeight    decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	TotalVolume    decimal.Decimal            `gorm:"type:decimal(18,6);not null;default:0"`
	LoadPercentage decimal.Decimal            `gorm:"type:decimal(8,2);not null;default:0"`
	DispatchDate   time.Time                  `gorm:"not null"`
	Recommendation string                     `gorm:"type:varchar(50);not null;default:''"`
	Status         procurement.ShipmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	DispatchedAt   *time.Time
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the model; orderIDs come from the linked purchase orders
func (m *ShipmentModel) ToDomain(orderIDs []uuid.UUID) *procurement.Shipment {
	if orderIDs == nil {
		orderIDs = []uuid.UUID{}
	}
	return &procurement.Shipment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ShipmentNumber:    m.ShipmentNumber,
		Location:          m.Location,
		Route:             m.Route,
		VehicleType:       m.VehicleType,
		CapacityKg:        m.CapacityKg,
		TotalWeight:       m.TotalWeight,
		TotalVolume:       m.TotalVolume,
		LoadPercentage:    m.LoadPercentage,
		DispatchDate:      m.DispatchDate,
		Recommendation:    m.Recommendation,
		Status:            m.Status,
		OrderIDs:          orderIDs,
		DispatchedAt:      m.DispatchedAt,
	}
}

// ShipmentModelFromDomain creates a model from a domain Shipment
func ShipmentModelFromDomain(s *procurement.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		ShipmentNumber: s.ShipmentNumber,
		Location:       s.Location,
		Route:          s.Route,
		VehicleType:    s.VehicleType,
		CapacityKg:     s.CapacityKg,
		TotalWeight:    s.TotalWeight,
		TotalVolume:    s.TotalVolume,
		LoadPercentage: s.LoadPercentage,
		DispatchDate:   s.DispatchDate,
		Recommendation: s.Recommendation,
		Status:         s.Status,
		DispatchedAt:   s.DispatchedAt,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// All returns every model in migration order, for AutoMigrate
func All() []any {
	return []any{&ShipmentModel{}, &PurchaseOrderModel{}, &PurchaseOrderItemModel{}}
}

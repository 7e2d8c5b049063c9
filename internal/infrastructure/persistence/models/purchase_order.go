package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	AggregateModel
	PONumber             string                  `gorm:"column:po_number;type:varchar(64);not null;uniqueIndex:idx_purchase_orders_supplier_po,priority:2"`
	SupplierName         string                  `gorm:"type:varchar(200);not null;uniqueIndex:idx_purchase_orders_supplier_po,priority:1"`
	SupplierCode         string                  `gorm:"type:varchar(64);not null;default:''"`
	PlantCode            string                  `gorm:"type:varchar(64);not null;default:''"`
	ERPReference         string                  `gorm:"column:erp_reference;type:varchar(100);not null;default:''"`
	OrderDate            time.Time               `gorm:"not null"`
	Location             string                  `gorm:"type:varchar(200);not null;index:idx_purchase_orders_location_status,priority:1"`
	Status               procurement.OrderStatus `gorm:"type:varchar(32);not null;default:'OPEN';index;index:idx_purchase_orders_location_status,priority:2"`
	ExpectedDeliveryDate *time.Time
	RevisionCount        int `gorm:"not null;default:0"`
	FulfilledAt          *time.Time
	CancelledAt          *time.Time
	CancelReason         string                   `gorm:"type:varchar(500);not null;default:''"`
	ShipmentID           *uuid.UUID               `gorm:"type:uuid;index"`
	Items                []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the model, items ordered by line number as loaded
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	order := &procurement.PurchaseOrder{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		PONumber:             m.PONumber,
		SupplierName:         m.SupplierName,
		SupplierCode:         m.SupplierCode,
		PlantCode:            m.PlantCode,
		ERPReference:         m.ERPReference,
		OrderDate:            m.OrderDate,
		Location:             m.Location,
		Status:               m.Status,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		RevisionCount:        m.RevisionCount,
		FulfilledAt:          m.FulfilledAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
		ShipmentID:           m.ShipmentID,
		Items:                make([]procurement.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the model from a domain PurchaseOrder
func (m *PurchaseOrderModel) FromDomain(o *procurement.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.PONumber = o.PONumber
	m.SupplierName = o.SupplierName
	m.SupplierCode = o.SupplierCode
	m.PlantCode = o.PlantCode
	m.ERPReference = o.ERPReference
	m.OrderDate = o.OrderDate
	m.Location = o.Location
	m.Status = o.Status
	m.ExpectedDeliveryDate = o.ExpectedDeliveryDate
	m.RevisionCount = o.RevisionCount
	m.FulfilledAt = o.FulfilledAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.ShipmentID = o.ShipmentID
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i], o.CreatedAt)
	}
}

// PurchaseOrderModelFromDomain creates a model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// HeaderColumns returns the mutable header columns written by a locked save
func (m *PurchaseOrderModel) HeaderColumns() map[string]any {
	return map[string]any{
		"status":                 m.Status,
		"expected_delivery_date": m.ExpectedDeliveryDate,
		"revision_count":         m.RevisionCount,
		"fulfilled_at":           m.FulfilledAt,
		"cancelled_at":           m.CancelledAt,
		"cancel_reason":          m.CancelReason,
		"shipment_id":            m.ShipmentID,
		"location":               m.Location,
		"erp_reference":          m.ERPReference,
	}
}

// PurchaseOrderItemModel is the persistence model for an order line
type PurchaseOrderItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_purchase_order_items_order,priority:1"`
	LineNo        int             `gorm:"not null;index:idx_purchase_order_items_order,priority:2"`
	ItemCode      string          `gorm:"type:varchar(100);not null;default:''"`
	ItemName      string          `gorm:"type:varchar(300);not null;default:''"`
	HSNCode       string          `gorm:"column:hsn_code;type:varchar(20);not null;default:''"`
	UOM           string          `gorm:"column:uom;type:varchar(20);not null;default:'Nos'"`
	Quantity      int64           `gorm:"not null;default:0"`
	Rate          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VolumePerUnit decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the model to a domain OrderItem
func (m *PurchaseOrderItemModel) ToDomain() procurement.OrderItem {
	return procurement.OrderItem{
		ID:            m.ID,
		OrderID:       m.OrderID,
		LineNo:        m.LineNo,
		ItemCode:      m.ItemCode,
		ItemName:      m.ItemName,
		HSNCode:       m.HSNCode,
		UOM:           m.UOM,
		Quantity:      m.Quantity,
		Rate:          m.Rate,
		WeightPerUnit: m.WeightPerUnit,
		VolumePerUnit: m.VolumePerUnit,
	}
}

// FromDomain populates the model from a domain OrderItem. Items carry no
// timestamps of their own and inherit the order's creation time.
func (m *PurchaseOrderItemModel) FromDomain(i *procurement.OrderItem, createdAt time.Time) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.LineNo = i.LineNo
	m.ItemCode = i.ItemCode
	m.ItemName = i.ItemName
	m.HSNCode = i.HSNCode
	m.UOM = i.UOM
	m.Quantity = i.Quantity
	m.Rate = i.Rate
	m.WeightPerUnit = i.WeightPerUnit
	m.VolumePerUnit = i.VolumePerUnit
	m.CreatedAt = createdAt
	m.UpdatedAt = createdAt
}

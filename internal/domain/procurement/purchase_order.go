package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// DefaultMaxRevisions is the number of delivery-date commitments after which
// an order is cancelled automatically.
const DefaultMaxRevisions = 3

// UnknownLocation is used for orders submitted without an origin region
const UnknownLocation = "Unknown Region"

// OrderItem represents a line item in a purchase order
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	LineNo        int
	ItemCode      string
	ItemName      string
	HSNCode       string
	UOM           string
	Quantity      int64
	Rate          decimal.Decimal
	WeightPerUnit decimal.Decimal // kg
	VolumePerUnit decimal.Decimal // CBM
}

// NewOrderItem validates and creates a line item
func NewOrderItem(itemCode, itemName, hsnCode, uom string, quantity int64, rate, weightPerUnit, volumePerUnit decimal.Decimal) (*OrderItem, error) {
	if strings.TrimSpace(itemCode) == "" && strings.TrimSpace(itemName) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Item code or item name is required")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Item %s: quantity cannot be negative", itemCode))
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Item %s: rate cannot be negative", itemCode))
	}
	if weightPerUnit.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Item %s: weight cannot be negative", itemCode))
	}
	if volumePerUnit.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Item %s: volume cannot be negative", itemCode))
	}
	if uom == "" {
		uom = "Nos"
	}
	return &OrderItem{
		ID:            uuid.New(),
		ItemCode:      strings.TrimSpace(itemCode),
		ItemName:      strings.TrimSpace(itemName),
		HSNCode:       strings.TrimSpace(hsnCode),
		UOM:           uom,
		Quantity:      quantity,
		Rate:          rate,
		WeightPerUnit: weightPerUnit,
		VolumePerUnit: volumePerUnit,
	}, nil
}

// Amount returns quantity * rate
func (i OrderItem) Amount() decimal.Decimal {
	return i.Rate.Mul(decimal.NewFromInt(i.Quantity))
}

// TotalWeight returns quantity * weight per unit
func (i OrderItem) TotalWeight() decimal.Decimal {
	return i.WeightPerUnit.Mul(decimal.NewFromInt(i.Quantity))
}

// TotalVolume returns quantity * volume per unit
func (i OrderItem) TotalVolume() decimal.Decimal {
	return i.VolumePerUnit.Mul(decimal.NewFromInt(i.Quantity))
}

// PurchaseOrder is the aggregate root for a supplier's commitment to deliver goods.
// It owns its items and carries the lifecycle state: status, committed delivery
// date and the number of times that date was revised.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber             string
	SupplierName         string
	SupplierCode         string
	PlantCode            string
	ERPReference         string
	OrderDate            time.Time
	Location             string
	Status               OrderStatus
	ExpectedDeliveryDate *time.Time
	RevisionCount        int
	FulfilledAt          *time.Time
	CancelledAt          *time.Time
	CancelReason         string
	ShipmentID           *uuid.UUID
	Items                []OrderItem
}

// NormalizeLocation trims a region name, collapses inner whitespace and
// substitutes UnknownLocation for blanks.
func NormalizeLocation(location string) string {
	location = strings.Join(strings.Fields(location), " ")
	if location == "" {
		return UnknownLocation
	}
	return location
}

// NewPurchaseOrder creates a new purchase order in OPEN status
func NewPurchaseOrder(poNumber, supplierName string, orderDate time.Time, location string) (*PurchaseOrder, error) {
	poNumber = strings.TrimSpace(poNumber)
	supplierName = strings.TrimSpace(supplierName)
	if poNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "PO number cannot be empty")
	}
	if len(poNumber) > 64 {
		return nil, shared.NewDomainError(shared.CodeValidation, "PO number cannot exceed 64 characters")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Supplier name cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		SupplierName:      supplierName,
		OrderDate:         orderDate,
		Location:          NormalizeLocation(location),
		Status:            OrderStatusOpen,
		Items:             make([]OrderItem, 0),
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// AddItem appends a validated line item
func (o *PurchaseOrder) AddItem(item *OrderItem) error {
	if o.Status.IsTerminal() {
		return o.lockedError()
	}
	if item == nil {
		return shared.NewDomainError(shared.CodeValidation, "Item cannot be nil")
	}
	item.OrderID = o.ID
	item.LineNo = len(o.Items) + 1
	o.Items = append(o.Items, *item)
	o.UpdatedAt = time.Now()
	return nil
}

// ReviseDeliveryDate records a supplier commitment to a new delivery date.
// Every call consumes one revision; when the count reaches maxRevisions the
// order is cancelled in the same mutation and autoCancelled is true.
func (o *PurchaseOrder) ReviseDeliveryDate(date time.Time, maxRevisions int) (autoCancelled bool, err error) {
	if !o.Status.AcceptsDateRevision() {
		return false, o.lockedError()
	}
	if date.IsZero() {
		return false, shared.NewDomainError(shared.CodeValidation, "Delivery date is required")
	}
	if maxRevisions <= 0 {
		maxRevisions = DefaultMaxRevisions
	}

	var previous *time.Time
	if o.ExpectedDeliveryDate != nil {
		prev := *o.ExpectedDeliveryDate
		previous = &prev
	}

	now := time.Now()
	committed := date
	o.ExpectedDeliveryDate = &committed
	o.RevisionCount++
	o.UpdatedAt = now

	o.AddDomainEvent(NewDeliveryDateRevisedEvent(o, previous))

	if o.RevisionCount >= maxRevisions {
		previousStatus := o.Status
		o.Status = OrderStatusCancelled
		o.CancelledAt = &now
		o.CancelReason = fmt.Sprintf("delivery date revised %d times", o.RevisionCount)
		o.AddDomainEvent(NewPurchaseOrderAutoCancelledEvent(o, previousStatus))
		return true, nil
	}
	return false, nil
}

// UpdateStatus applies a manual status edit
func (o *PurchaseOrder) UpdateStatus(target OrderStatus) error {
	if o.Status.IsTerminal() {
		return o.lockedError()
	}
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unknown status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot move order %s from %s to %s", o.PONumber, o.Status, target))
	}
	if o.Status == target {
		return nil
	}

	now := time.Now()
	previous := o.Status
	o.Status = target
	o.UpdatedAt = now
	if target.IsFulfilment() && o.FulfilledAt == nil {
		o.FulfilledAt = &now
	}
	if target == OrderStatusCancelled {
		o.CancelledAt = &now
		o.CancelReason = "cancelled manually"
	}

	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, previous))
	return nil
}

// MarkConsolidated moves the order into a shipment. It is the only way to reach CONSOLIDATED.
func (o *PurchaseOrder) MarkConsolidated(shipmentID uuid.UUID, eligible []OrderStatus) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodePlanConflict,
			fmt.Sprintf("Order %s is already %s", o.PONumber, o.Status))
	}
	if !o.IsEligibleForPlanning(eligible) {
		return shared.NewDomainError(shared.CodePlanConflict,
			fmt.Sprintf("Order %s in status %s cannot be consolidated", o.PONumber, o.Status))
	}

	now := time.Now()
	previous := o.Status
	o.Status = OrderStatusConsolidated
	o.ShipmentID = &shipmentID
	o.UpdatedAt = now
	if o.FulfilledAt == nil {
		o.FulfilledAt = &now
	}

	o.AddDomainEvent(NewPurchaseOrderConsolidatedEvent(o, previous))
	return nil
}

// IsEligibleForPlanning reports whether the order's status is in the given
// planning set. A nil set means DefaultPlanningStatuses.
func (o *PurchaseOrder) IsEligibleForPlanning(eligible []OrderStatus) bool {
	if eligible == nil {
		eligible = DefaultPlanningStatuses
	}
	for _, s := range eligible {
		if o.Status == s {
			return true
		}
	}
	return false
}

// TotalWeight returns the summed item weight in kg
func (o *PurchaseOrder) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalWeight())
	}
	return total
}

// TotalVolume returns the summed item volume in CBM
func (o *PurchaseOrder) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalVolume())
	}
	return total
}

// TotalAmount returns the summed item value
func (o *PurchaseOrder) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount())
	}
	return total
}

// IsCancelled returns true if the order was cancelled
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsLocked returns true if the order accepts no further mutation
func (o *PurchaseOrder) IsLocked() bool {
	return o.Status.IsTerminal()
}

func (o *PurchaseOrder) lockedError() error {
	return shared.NewDomainError(shared.CodeLocked,
		fmt.Sprintf("Order %s is %s and can no longer be modified", o.PONumber, o.Status))
}

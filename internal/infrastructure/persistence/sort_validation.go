package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if it is whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"created_at":             true,
	"updated_at":             true,
	"order_date":             true,
	"po_number":              true,
	"supplier_name":          true,
	"location":               true,
	"status":                 true,
	"expected_delivery_date": true,
	"revision_count":         true,
}

// ShipmentSortFields contains allowed sort fields for shipments
var ShipmentSortFields = map[string]bool{
	"created_at":      true,
	"dispatch_date":   true,
	"shipment_number": true,
	"location":        true,
	"status":          true,
	"load_percentage": true,
	"total_weight":    true,
}

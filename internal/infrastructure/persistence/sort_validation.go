package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InstallmentSortFields are the cuotas columns a list may be ordered by
var InstallmentSortFields = map[string]bool{
	"created_at":        true,
	"numero_cuota":      true,
	"fecha_vencimiento": true,
	"monto_cuota":       true,
	"monto_pagado":      true,
	"estado":            true,
}

// AlertSortFields are the alertas_pago columns a list may be ordered by
var AlertSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"tipo_alerta":   true,
	"estado":        true,
	"fecha_lectura": true,
}

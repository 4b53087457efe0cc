// Package models contains the GORM persistence models of the collections tables.
// Domain types stay free of ORM tags; each model converts with ToDomain and FromDomain.
//
// Tables:
//   - cuotas: installments, one row per numero_cuota of a sale
//   - alertas_pago: generated payment alerts
//   - pagos: append-only payment ledger
//   - ventas_financiadas: read model of financed sales, owned by the sales module
package models

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

func pageParams(q url.Values, page, pageSize int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
}

// ListInstallments returns one page of installments and its pagination meta
func (c *Client) ListInstallments(ctx context.Context, f InstallmentFilter) ([]Installment, *Meta, error) {
	q := url.Values{}
	pageParams(q, f.Page, f.PageSize)
	if f.SaleID != nil {
		q.Set("venta", f.SaleID.String())
	}
	if f.Status != "" {
		q.Set("estado", f.Status)
	}
	if f.OnlyOverdue {
		q.Set("vencidas", "true")
	}
	var out []Installment
	meta, err := c.do(ctx, http.MethodGet, "/pagos/cuotas/", q, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

// GetInstallment fetches one installment
func (c *Client) GetInstallment(ctx context.Context, id uuid.UUID) (*Installment, error) {
	var out Installment
	if _, err := c.do(ctx, http.MethodGet, "/pagos/cuotas/"+id.String()+"/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInstallment applies a partial update
func (c *Client) UpdateInstallment(ctx context.Context, id uuid.UUID, patch InstallmentPatch) (*Installment, error) {
	var out Installment
	if _, err := c.do(ctx, http.MethodPatch, "/pagos/cuotas/"+id.String()+"/", nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordPayment records a payment against an installment
func (c *Client) RecordPayment(ctx context.Context, id uuid.UUID, in PaymentInput) (*PaymentResult, error) {
	var out PaymentResult
	if _, err := c.do(ctx, http.MethodPost, "/pagos/cuotas/"+id.String()+"/pagar/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateSchedule creates the installment schedule of a financed sale
func (c *Client) GenerateSchedule(ctx context.Context, saleID uuid.UUID) (*Schedule, error) {
	var out Schedule
	if _, err := c.do(ctx, http.MethodPost, "/pagos/cuotas/generar/"+saleID.String()+"/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAlerts returns one page of alerts
func (c *Client) ListAlerts(ctx context.Context, f AlertFilter) ([]Alert, *Meta, error) {
	q := url.Values{}
	pageParams(q, f.Page, f.PageSize)
	if f.Status != "" {
		q.Set("estado", f.Status)
	}
	if f.Type != "" {
		q.Set("tipo", f.Type)
	}
	if f.ActiveOnly {
		q.Set("activas_solo", "true")
	}
	var out []Alert
	meta, err := c.do(ctx, http.MethodGet, "/pagos/alertas/", q, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

// ScanAlerts runs the alert scan on the server
func (c *Client) ScanAlerts(ctx context.Context) (*ScanResult, error) {
	var out ScanResult
	if _, err := c.do(ctx, http.MethodPost, "/pagos/alertas/generar/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAlertRead marks an alert as read
func (c *Client) MarkAlertRead(ctx context.Context, id uuid.UUID) (*Alert, error) {
	var out Alert
	if _, err := c.do(ctx, http.MethodPost, "/pagos/alertas/"+id.String()+"/leida/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAlertResolved marks an alert as resolved
func (c *Client) MarkAlertResolved(ctx context.Context, id uuid.UUID) (*Alert, error) {
	var out Alert
	if _, err := c.do(ctx, http.MethodPost, "/pagos/alertas/"+id.String()+"/resuelta/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary returns the resumen de cobros
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if _, err := c.do(ctx, http.MethodGet, "/pagos/resumen-cobros/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchClients searches financed clients. urgent sorts the most overdue first.
func (c *Client) SearchClients(ctx context.Context, query string, urgent bool) ([]ClientStanding, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if urgent {
		q.Set("urgentes", "true")
	}
	var out []ClientStanding
	if _, err := c.do(ctx, http.MethodGet, "/pagos/clientes-financiados/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopAtRisk returns the n most urgent clients that still owe money
func (c *Client) TopAtRisk(ctx context.Context, n int) ([]ClientStanding, error) {
	q := url.Values{}
	if n > 0 {
		q.Set("n", strconv.Itoa(n))
	}
	var out []ClientStanding
	if _, err := c.do(ctx, http.MethodGet, "/pagos/clientes-financiados/top-riesgo/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

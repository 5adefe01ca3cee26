package main

import (
	"context"
	"time"

	"github.com/iho/duesledger/internal/infrastructure/metrics"
	"github.com/iho/duesledger/internal/usecase"
)

// meteredGateway wraps a PaymentGateway and records request metrics.
type meteredGateway struct {
	gateway usecase.PaymentGateway
	metrics *metrics.Metrics
}

func newMeteredGateway(gateway usecase.PaymentGateway, m *metrics.Metrics) *meteredGateway {
	return &meteredGateway{gateway: gateway, metrics: m}
}

func (g *meteredGateway) CreateCustomer(ctx context.Context, description, email string) (string, error) {
	start := time.Now()
	id, err := g.gateway.CreateCustomer(ctx, description, email)
	g.observe("create_customer", start, err)
	return id, err
}

func (g *meteredGateway) CreateCharge(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error) {
	start := time.Now()
	charge, err := g.gateway.CreateCharge(ctx, req)
	g.observe("create_charge", start, err)
	return charge, err
}

func (g *meteredGateway) RetrieveCharge(ctx context.Context, externalID string) (*usecase.GatewayCharge, error) {
	start := time.Now()
	charge, err := g.gateway.RetrieveCharge(ctx, externalID)
	g.observe("retrieve_charge", start, err)
	return charge, err
}

func (g *meteredGateway) ListSettlements(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
	start := time.Now()
	settlements, err := g.gateway.ListSettlements(ctx, externalID)
	g.observe("list_settlements", start, err)
	return settlements, err
}

func (g *meteredGateway) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		g.metrics.GatewayErrors.WithLabelValues(operation).Inc()
	}
	g.metrics.GatewayRequests.WithLabelValues(operation, status).Inc()
	g.metrics.GatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

package main

import (
	"context"
	"fmt"

	"github.com/nordlink/dispatch/internal/config"
	"github.com/nordlink/dispatch/internal/store"
	"github.com/nordlink/dispatch/internal/telemetry"
	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/carrier/glsfinland"
	"github.com/nordlink/dispatch/pkg/carrier/nshift"
	"github.com/nordlink/dispatch/pkg/dispatch"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initStore(ctx context.Context, cfg *config.Config) (dispatch.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), nil
	case "postgres":
		return store.NewPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func initRegistry(cfg *config.Config, logger *otelzap.Logger) *carrier.Registry {
	registry := carrier.NewRegistry()

	var tracer trace.Tracer
	if cfg.OTELEnabled {
		tracer = otel.GetTracerProvider().Tracer(cfg.ServiceName)
	}

	if cfg.GLSEnabled {
		gls := glsfinland.New(glsfinland.Config{
			APIKey:         cfg.GLSAPIKey,
			CustomerNumber: cfg.GLSCustomerNumber,
			ProductCode:    cfg.GLSProductCode,
			ServiceCode:    cfg.GLSServiceCode,
			Production:     cfg.GLSProduction,
			BaseURL:        cfg.GLSBaseURL,
			TestBaseURL:    cfg.GLSTestBaseURL,
			UseMock:        cfg.GLSUseMock,
		}, logger, tracer)
		registry.Register(gls)
	}

	if cfg.NShiftEnabled {
		ns := nshift.New(nshift.Config{
			Username:       cfg.NShiftUsername,
			Password:       cfg.NShiftPassword,
			CustomerID:     cfg.NShiftCustomerID,
			PartnerCode:    cfg.NShiftPartnerCode,
			CustomerNumber: cfg.NShiftCustomerNumber,
			ServiceCode:    cfg.NShiftServiceCode,
			Production:     cfg.NShiftProduction,
			BaseURL:        cfg.NShiftBaseURL,
			TestBaseURL:    cfg.NShiftTestBaseURL,
			Region:         cfg.NShiftRegion,
			Language:       cfg.NShiftLanguage,
			UseMock:        cfg.NShiftUseMock,
		}, logger, tracer)
		registry.Register(ns)
	}

	return registry
}

func senderFromConfig(cfg *config.Config) *carrier.Party {
	return &carrier.Party{
		Name:        cfg.SenderName,
		CompanyName: cfg.SenderName,
		IsCompany:   true,
		Street:      cfg.SenderStreet,
		Street2:     cfg.SenderStreet2,
		City:        cfg.SenderCity,
		Zip:         cfg.SenderZip,
		CountryCode: cfg.SenderCountry,
		Phone:       cfg.SenderPhone,
		Email:       cfg.SenderEmail,
	}
}

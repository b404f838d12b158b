package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Record store
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"` // memory or postgres
	PostgresDSN  string `envconfig:"POSTGRES_DSN"`

	// Sender (the shipping warehouse)
	SenderName    string `envconfig:"SENDER_NAME"`
	SenderStreet  string `envconfig:"SENDER_STREET"`
	SenderStreet2 string `envconfig:"SENDER_STREET2"`
	SenderCity    string `envconfig:"SENDER_CITY"`
	SenderZip     string `envconfig:"SENDER_ZIP"`
	SenderCountry string `envconfig:"SENDER_COUNTRY" default:"FI"`
	SenderPhone   string `envconfig:"SENDER_PHONE"`
	SenderEmail   string `envconfig:"SENDER_EMAIL"`

	// GLS Finland
	GLSAPIKey         string `envconfig:"GLS_API_KEY"`
	GLSCustomerNumber string `envconfig:"GLS_CUSTOMER_NUMBER"`
	GLSProductCode    string `envconfig:"GLS_PRODUCT_CODE" default:"10000"`
	GLSServiceCode    string `envconfig:"GLS_SERVICE_CODE"`
	GLSBaseURL        string `envconfig:"GLS_BASE_URL"`
	GLSTestBaseURL    string `envconfig:"GLS_TEST_BASE_URL"`
	GLSProduction     bool   `envconfig:"GLS_PRODUCTION" default:"false"`
	GLSEnabled        bool   `envconfig:"GLS_ENABLED" default:"true"`
	GLSUseMock        bool   `envconfig:"GLS_USE_MOCK" default:"false"`

	// nShift
	NShiftUsername       string `envconfig:"NSHIFT_USERNAME"`
	NShiftPassword       string `envconfig:"NSHIFT_PASSWORD"`
	NShiftCustomerID     string `envconfig:"NSHIFT_CUSTOMER_ID"`
	NShiftPartnerCode    string `envconfig:"NSHIFT_PARTNER_CODE"`
	NShiftCustomerNumber string `envconfig:"NSHIFT_CUSTOMER_NUMBER"`
	NShiftServiceCode    string `envconfig:"NSHIFT_SERVICE_CODE"`
	NShiftBaseURL        string `envconfig:"NSHIFT_BASE_URL"`
	NShiftTestBaseURL    string `envconfig:"NSHIFT_TEST_BASE_URL"`
	NShiftRegion         string `envconfig:"NSHIFT_REGION" default:"fi"`
	NShiftLanguage       string `envconfig:"NSHIFT_LANGUAGE" default:"fi"`
	NShiftProduction     bool   `envconfig:"NSHIFT_PRODUCTION" default:"false"`
	NShiftEnabled        bool   `envconfig:"NSHIFT_ENABLED" default:"true"`
	NShiftUseMock        bool   `envconfig:"NSHIFT_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"nordlink-dispatch"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("store.backend", c.StoreBackend),
		attribute.Bool("gls_finland.enabled", c.GLSEnabled),
		attribute.Bool("nshift.enabled", c.NShiftEnabled),
	}
}

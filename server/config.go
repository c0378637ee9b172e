package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/n9te9/go-graphql-product-web/graphql"
)

// EndpointEnv overrides Option.Endpoint when set.
const EndpointEnv = "GRAPHQL_ENDPOINT"

const DefaultConfigPath = "product-web.yaml"

type Option struct {
	Endpoint        string               `yaml:"endpoint"`
	ServiceName     string               `yaml:"service_name"`
	Port            int                  `yaml:"port"`
	TimeoutDuration string               `yaml:"timeout_duration"`
	EnableRequestID bool                 `yaml:"enable_request_id"`
	Retry           graphql.RetryOption  `yaml:"retry"`
	Opentelemetry   OpentelemetrySetting `yaml:"opentelemetry"`
}

type OpentelemetrySetting struct {
	TracingSetting OpentelemetryTracingSetting `yaml:"tracing"`
}

type OpentelemetryTracingSetting struct {
	Enable bool `yaml:"enable"`
}

// DefaultOption returns the settings used for keys missing from the config file.
func DefaultOption() Option {
	return Option{
		Endpoint:        "http://localhost:4010/graphql",
		ServiceName:     "product-web",
		Port:            3000,
		TimeoutDuration: "5s",
		EnableRequestID: true,
		Retry: graphql.RetryOption{
			Attempts: 3,
			Timeout:  "5s",
		},
	}
}

// LoadOption reads the YAML config at path on top of DefaultOption.
// A missing file is not an error.
func LoadOption(path string) (Option, error) {
	opt := DefaultOption()

	src, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Option{}, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(src, &opt); err != nil {
			return Option{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if endpoint := os.Getenv(EndpointEnv); endpoint != "" {
		opt.Endpoint = endpoint
	}

	if err := opt.Validate(); err != nil {
		return Option{}, err
	}

	return opt, nil
}

func (o Option) Validate() error {
	var errs []error
	if o.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", o.Port))
	}
	if _, err := o.Timeout(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Timeout is the limit for a single GraphQL request.
func (o Option) Timeout() (time.Duration, error) {
	if o.TimeoutDuration == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(o.TimeoutDuration)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout_duration %q: %w", o.TimeoutDuration, err)
	}
	return d, nil
}

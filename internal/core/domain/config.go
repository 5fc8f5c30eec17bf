package domain

import (
	"net"
	"strconv"
	"time"

	"go.trai.ch/zerr"
)

const (
	// ConfigFileName is the configuration file looked up from the working directory upwards.
	ConfigFileName = "thingsgate.yaml"
	// TokenEnvVar overrides the server's default bearer token.
	TokenEnvVar = "SMARTTHINGS_TOKEN"

	// DefaultBaseURL is the SmartThings REST endpoint.
	DefaultBaseURL = "https://api.smartthings.com/v1"
	// DefaultHost is the address a client dials.
	DefaultHost = "localhost"
	// DefaultListenHost is the address a server binds.
	DefaultListenHost = "0.0.0.0"
	// DefaultPort is the port shared by client and server.
	DefaultPort = 8000
	// DefaultRequestTimeout bounds each upstream request.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRateLimit is the sustained upstream request rate per second.
	DefaultRateLimit = 10
	// DefaultRateBurst is the upstream request burst size.
	DefaultRateBurst = 20

	// DefaultCacheTTLSeconds is the default entry lifetime.
	DefaultCacheTTLSeconds = 300
	// DefaultCacheMaxSize is the default entry bound.
	DefaultCacheMaxSize = 1000
)

// Transport names a wire protocol between client and server.
type Transport string

const (
	// TransportGRPC serves the tool service over gRPC.
	TransportGRPC Transport = "grpc"
	// TransportHTTP serves the tool service as a JSON HTTP API.
	TransportHTTP Transport = "http"
	// TransportStdio serves newline-delimited JSON over stdin/stdout.
	TransportStdio Transport = "stdio"
)

// ParseTransport validates a transport name.
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TransportGRPC, TransportHTTP, TransportStdio:
		return Transport(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidTransport, "expected grpc, http or stdio"), "transport", s)
	}
}

// RateLimit configures the upstream token bucket.
type RateLimit struct {
	PerSecond float64 `yaml:"perSecond"`
	Burst     int     `yaml:"burst"`
}

// ServerConfig configures the serving side.
type ServerConfig struct {
	Transport   Transport     `yaml:"transport"`
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Auth        string        `yaml:"auth"`
	BaseURL     string        `yaml:"baseURL"`
	Timeout     time.Duration `yaml:"timeout"`
	IdleTimeout time.Duration `yaml:"idleTimeout"`
	RateLimit   RateLimit     `yaml:"rateLimit"`
	Cache       CacheConfig   `yaml:"cache"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ClientConfig configures the calling side.
type ClientConfig struct {
	Transport Transport   `yaml:"transport"`
	Host      string      `yaml:"host"`
	Port      int         `yaml:"port"`
	Auth      string      `yaml:"auth"`
	Cache     CacheConfig `yaml:"cache"`
}

// Addr returns the dial address.
func (c ClientConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Config is the root of thingsgate.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is present.
// Servers clear everything on writes, clients purge precisely.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: TransportHTTP,
			Host:      DefaultListenHost,
			Port:      DefaultPort,
			BaseURL:   DefaultBaseURL,
			Timeout:   DefaultRequestTimeout,
			RateLimit: RateLimit{PerSecond: DefaultRateLimit, Burst: DefaultRateBurst},
			Cache:     DefaultCacheConfig(InvalidationCoarse),
		},
		Client: ClientConfig{
			Transport: TransportHTTP,
			Host:      DefaultHost,
			Port:      DefaultPort,
			Cache:     DefaultCacheConfig(InvalidationPrecise),
		},
	}
}

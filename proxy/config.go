package proxy

import "github.com/0xPolygon/cdk-txrelay/config/types"

// Config is the configuration of the JSON-RPC HTTP front door
type Config struct {
	// Enabled starts the front door
	Enabled bool `mapstructure:"Enabled"`
	// Host to listen on
	Host string `mapstructure:"Host"`
	// Port to listen on
	Port int `mapstructure:"Port"`
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout types.Duration `mapstructure:"ReadTimeout"`
	// WriteTimeout is the maximum duration before timing out the response
	WriteTimeout types.Duration `mapstructure:"WriteTimeout"`
	// MaxBatchSize is the maximum number of calls in a batch, 0 means unlimited
	MaxBatchSize int `mapstructure:"MaxBatchSize"`
	// AllowedOrigins for CORS, empty allows any origin
	AllowedOrigins []string `mapstructure:"AllowedOrigins"`
	// DebugMode enables the gin debug output
	DebugMode bool `mapstructure:"DebugMode"`
}

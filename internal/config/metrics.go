package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool   `default:"true"`
	Port         string `default:"9090"`
	OtlpEndpoint string `split_words:"true"`
	ServiceName  string `split_words:"true" default:"prospect-scout"`
	OtlpInsecure bool   `split_words:"true" default:"true"`
}

package contracts

import "time"

type Config struct {
	InstallRoot   string          `toml:"install_root"`
	PayloadPath   string          `toml:"payload_path"`
	SuccessPolicy SuccessPolicy   `toml:"success_policy"`
	Download      DownloadConfig  `toml:"download"`
	Install       InstallConfig   `toml:"install"`
	Process       ProcessConfig   `toml:"process"`
	Transport     TransportConfig `toml:"transport"`
}

// SuccessPolicy decides whether isolated item or file failures turn the
// final completion signal into a failure.
type SuccessPolicy string

const (
	SuccessIsolated SuccessPolicy = "isolated"
	SuccessStrict   SuccessPolicy = "strict"
)

type DownloadConfig struct {
	MaxRetry        int `toml:"max_retry"`
	RetryStepMillis int `toml:"retry_step_ms"`
}

// RetryDelays lists the pause before each retry; the n-th retry waits n steps.
func (this DownloadConfig) RetryDelays() (delays []time.Duration) {
	for x := 1; x <= this.MaxRetry; x++ {
		delays = append(delays, time.Duration(x*this.RetryStepMillis)*time.Millisecond)
	}
	return delays
}

type InstallConfig struct {
	MaxAttempts      int `toml:"max_attempts"`
	RetryDelayMillis int `toml:"retry_delay_ms"`
}

func (this InstallConfig) RetryDelay() time.Duration {
	return time.Duration(this.RetryDelayMillis) * time.Millisecond
}

type ProcessConfig struct {
	PollIntervalMillis int `toml:"poll_interval_ms"`
	TimeoutSeconds     int `toml:"timeout_seconds"`
}

func (this ProcessConfig) PollInterval() time.Duration {
	return time.Duration(this.PollIntervalMillis) * time.Millisecond
}

func (this ProcessConfig) Timeout() time.Duration {
	return time.Duration(this.TimeoutSeconds) * time.Second
}

// TransportConfig is handed to the HTTP client at construction so that no
// process-wide network state is touched.
type TransportConfig struct {
	RequestTimeoutSeconds      int    `toml:"request_timeout_seconds"`
	DialTimeoutSeconds         int    `toml:"dial_timeout_seconds"`
	TLSHandshakeTimeoutSeconds int    `toml:"tls_handshake_timeout_seconds"`
	MinTLSVersion              string `toml:"min_tls_version"`
	UserAgent                  string `toml:"user_agent"`
}

func DefaultConfig() Config {
	return Config{
		PayloadPath:   "update",
		SuccessPolicy: SuccessIsolated,
		Download: DownloadConfig{
			MaxRetry:        3,
			RetryStepMillis: 1000,
		},
		Install: InstallConfig{
			MaxAttempts:      10,
			RetryDelayMillis: 1000,
		},
		Process: ProcessConfig{
			PollIntervalMillis: 500,
			TimeoutSeconds:     60,
		},
		Transport: TransportConfig{
			DialTimeoutSeconds:         30,
			TLSHandshakeTimeoutSeconds: 16,
			MinTLSVersion:              "1.2",
			UserAgent:                  "swapper",
		},
	}
}

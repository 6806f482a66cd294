package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// ConfigLoader layers an optional TOML file and SWAPPER_* environment
// variables over the built-in defaults.
type ConfigLoader struct {
	storage     contracts.FileReader
	environment contracts.Environment
}

func NewConfigLoader(storage contracts.FileReader, environment contracts.Environment) *ConfigLoader {
	return &ConfigLoader{storage: storage, environment: environment}
}

func (this *ConfigLoader) Load(path string) (config contracts.Config, err error) {
	config = contracts.DefaultConfig()
	if path != "" {
		data, err := this.storage.ReadFile(path)
		if err != nil {
			return contracts.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err = toml.Unmarshal(data, &config); err != nil {
			return contracts.Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err = this.applyEnvironment(&config); err != nil {
		return contracts.Config{}, err
	}
	if err = ValidateConfig(config); err != nil {
		return contracts.Config{}, err
	}
	return config, nil
}

func (this *ConfigLoader) applyEnvironment(config *contracts.Config) error {
	if value, found := this.lookup("SWAPPER_INSTALL_ROOT"); found {
		config.InstallRoot = value
	}
	if value, found := this.lookup("SWAPPER_PAYLOAD"); found {
		config.PayloadPath = value
	}
	if value, found := this.lookup("SWAPPER_SUCCESS_POLICY"); found {
		config.SuccessPolicy = contracts.SuccessPolicy(strings.ToLower(value))
	}
	if value, found := this.lookup("SWAPPER_USER_AGENT"); found {
		config.Transport.UserAgent = value
	}
	if value, found := this.lookup("SWAPPER_MAX_RETRY"); found {
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("SWAPPER_MAX_RETRY: %w", err)
		}
		config.Download.MaxRetry = retries
	}
	return nil
}

func (this *ConfigLoader) lookup(key string) (string, bool) {
	value, found := this.environment.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, found && value != ""
}

func ValidateConfig(config contracts.Config) error {
	if config.Download.MaxRetry < 0 {
		return maxRetryErr
	}
	if config.Download.RetryStepMillis < 0 || config.Install.RetryDelayMillis < 0 {
		return negativeDelayErr
	}
	if config.Install.MaxAttempts < 1 {
		return maxAttemptsErr
	}
	if config.Process.PollIntervalMillis <= 0 {
		return pollIntervalErr
	}
	if config.Process.TimeoutSeconds < 0 {
		return processTimeoutErr
	}
	if config.PayloadPath == "" {
		return blankPayloadPathErr
	}
	switch config.SuccessPolicy {
	case contracts.SuccessIsolated, contracts.SuccessStrict:
	default:
		return fmt.Errorf("%w: %q", successPolicyErr, config.SuccessPolicy)
	}
	switch config.Transport.MinTLSVersion {
	case "", "1.0", "1.1", "1.2", "1.3":
	default:
		return fmt.Errorf("%w: %q", tlsVersionErr, config.Transport.MinTLSVersion)
	}
	return nil
}

var (
	maxRetryErr         = errors.New("download max_retry must not be negative")
	negativeDelayErr    = errors.New("retry delays must not be negative")
	maxAttemptsErr      = errors.New("install max_attempts must be at least 1")
	pollIntervalErr     = errors.New("process poll_interval_ms must be positive")
	processTimeoutErr   = errors.New("process timeout_seconds must not be negative")
	blankPayloadPathErr = errors.New("payload path should not be blank")
	successPolicyErr    = errors.New("success policy must be \"isolated\" or \"strict\"")
	tlsVersionErr       = errors.New("unsupported minimum TLS version")
)

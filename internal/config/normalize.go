// internal/config/normalize.go
package config

// Reconnect and push defaults applied when the config omits them.
const (
	DefaultReconnectInitialMs     = 500
	DefaultReconnectMaxIntervalMs = 10_000
	DefaultReconnectMaxRetries    = 5
	DefaultReconnectAttemptMs     = 2_000
	DefaultPushMaxInFlightRounds  = 4
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Reconnect.InitialIntervalMs == 0 {
		cfg.Reconnect.InitialIntervalMs = DefaultReconnectInitialMs
	}
	if cfg.Reconnect.MaxIntervalMs == 0 {
		cfg.Reconnect.MaxIntervalMs = DefaultReconnectMaxIntervalMs
	}
	if cfg.Reconnect.MaxRetries == 0 {
		cfg.Reconnect.MaxRetries = DefaultReconnectMaxRetries
	}
	if cfg.Reconnect.AttemptTimeoutMs == 0 {
		cfg.Reconnect.AttemptTimeoutMs = DefaultReconnectAttemptMs
	}
	if cfg.Push.MaxInFlightRounds == 0 {
		cfg.Push.MaxInFlightRounds = DefaultPushMaxInFlightRounds
	}
}

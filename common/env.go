// Package common provides shared types and constants used across the spectre
// backend, its JSON-RPC surface and the command line client.
package common

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the data directory holding .cookies.dat,
	// .settings.dat and spectre.db.
	ConfigDirEnv = "SPECTRE_CONFIG_DIR"

	// APIBaseEnv overrides the authenticated API base URL.
	APIBaseEnv = "SPECTRE_API_BASE"

	// WebBaseEnv overrides the public web API base URL (time, visits).
	WebBaseEnv = "SPECTRE_WEB_BASE"

	// PipelineURLEnv overrides the pipeline websocket URL.
	PipelineURLEnv = "SPECTRE_PIPELINE_URL"

	// ProxyEnv is an optional http, https or socks5 proxy for outbound calls.
	ProxyEnv = "SPECTRE_PROXY"

	// HTTPTimeoutEnv is the whole-request timeout as a Go duration string.
	HTTPTimeoutEnv = "SPECTRE_HTTP_TIMEOUT"

	// RPCSecretEnv is the bearer token required by the JSON-RPC endpoint.
	RPCSecretEnv = "SPECTRE_RPC_SECRET"

	// RPCPortEnv is the TCP port of the JSON-RPC endpoint.
	RPCPortEnv = "SPECTRE_RPC_PORT"

	// RPCListenAllEnv binds the JSON-RPC endpoint to all interfaces.
	RPCListenAllEnv = "SPECTRE_RPC_LISTEN_ALL"

	// LogFileEnv additionally appends log lines to the named file.
	LogFileEnv = "SPECTRE_LOG_FILE"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "SPECTRE_DEBUG"
)

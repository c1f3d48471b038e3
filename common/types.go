package common

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CodeParams struct {
	Code string `json:"code"`
}

// BodyResult carries an opaque upstream response body.
type BodyResult struct {
	Body string `json:"body"`
}

type CountResult struct {
	Count uint64 `json:"count"`
}

type StatusResult struct {
	State        string `json:"state"`
	HasAuth      bool   `json:"hasAuth"`
	HasTwoFactor bool   `json:"hasTwoFactor"`
}

type RequestParams struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    any               `json:"body,omitempty"`
}

type CallParams struct {
	Endpoint string            `json:"endpoint"`
	Params   map[string]string `json:"params,omitempty"`
}

type EndpointInfo struct {
	Name   string   `json:"name"`
	Method string   `json:"method"`
	Path   string   `json:"path"`
	Params []string `json:"params,omitempty"`
}

type EndpointsResult struct {
	Endpoints []*EndpointInfo `json:"endpoints"`
}

type ValueParams struct {
	Value string `json:"value"`
}

// ValueResult holds an optional stored value; Found is false when absent.
type ValueResult struct {
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// ImportParams names a browser cookie store; an empty path scans the
// installed browsers.
type ImportParams struct {
	Path string `json:"path,omitempty"`
}

type ImportResult struct {
	Browser      string `json:"browser"`
	HasTwoFactor bool   `json:"hasTwoFactor"`
}

type KeyParams struct {
	Key string `json:"key"`
}

type SettingParams struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type LineParams struct {
	Line string `json:"line"`
}

type AddLogResult struct {
	Stored bool `json:"stored"`
}

type GameLogListParams struct {
	Limit int    `json:"limit,omitempty"`
	Type  string `json:"type,omitempty"`
}

type GameLogEntry struct {
	ID      int64  `json:"id"`
	Time    string `json:"time"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type GameLogListResult struct {
	Entries []*GameLogEntry `json:"entries"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

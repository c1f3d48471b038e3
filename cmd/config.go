package cmd

const DESCRIPTION = `
Spectre is the backend of a VRChat companion app. It keeps your
VRChat session on disk, signs every API call with it and serves
the UI over a local JSON-RPC endpoint. The same operations are
available from the command line.
`

const (
	DaemonDescription = `The daemon command serves the JSON-RPC endpoint used by
the UI. Every call must carry "Authorization: Bearer <secret>"
where the secret comes from --secret or SPECTRE_RPC_SECRET.

Example:
        spectre daemon --port 40601 --secret s3cr3t

`
	LoginDescription = `The login command authenticates with your VRChat
username and password and stores the returned auth cookie.
When the account has two-factor auth enabled, finish with
"spectre verify <code>".

Example:
        spectre login --password hunter2 myname

`
	VerifyDescription = `The verify command submits a two-factor code. Codes
from an authenticator app are sent as TOTP; use --email for
codes received by email.

Example:
        spectre verify 123456
        spectre verify --email 654321

`
	RequestDescription = `The request command sends a request to any URL with the
stored session cookies attached and prints the response body.

Example:
        spectre request https://api.vrchat.cloud/api/1/auth/user
        spectre request -X PUT -H "X-Custom: 1" -d '{"status":"active"}' <url>

`
	CallDescription = `The call command sends one of the named API endpoints
(see "spectre endpoints"). Placeholders are filled from
key=value arguments.

Example:
        spectre call user userId=usr_c1644b5b-3ca4-45b4-97c6-a2a0de70d469
        spectre call friends offline=true

`
	GameLogDescription = `The gamelog commands record video playback errors and
players joining or leaving from the VRChat client log into a
local SQLite database.

Example:
        spectre gamelog ingest output_log.txt
        spectre gamelog list --type OnPlayerJoined --limit 20

`
	PipelineDescription = `The pipeline command connects to the VRChat pipeline
websocket with the stored auth cookie and prints every event
as "<type> <content>" until interrupted.

Example:
        spectre pipeline

`
)

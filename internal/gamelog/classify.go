package gamelog

import (
	"regexp"
	"strings"
)

// Type is the kind of a stored game log event.
type Type string

const (
	TypeError        Type = "Error"
	TypePlayerJoined Type = "OnPlayerJoined"
	TypePlayerLeft   Type = "OnPlayerLeft"
)

var markers = []struct {
	prefix string
	typ    Type
}{
	{"[Video Playback] ERROR:", TypeError},
	{"[Behaviour] OnPlayerJoined", TypePlayerJoined},
	{"[Behaviour] OnPlayerLeft", TypePlayerLeft},
}

// linePrefix matches the timestamp and level the client writes in front of
// every line of output_log.txt.
var linePrefix = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2} [A-Za-z]+\s+-\s+`)

// Classify returns the event type of a log line and the message to store.
// Lines may come bare or with the log file's timestamp prefix. ok is false
// for lines that are not tracked.
func Classify(line string) (msg string, typ Type, ok bool) {
	msg = strings.TrimRight(line, "\r\n")
	msg = linePrefix.ReplaceAllString(msg, "")
	for _, m := range markers {
		if strings.HasPrefix(msg, m.prefix) {
			return msg, m.typ, true
		}
	}
	return "", "", false
}

// ValidType reports whether t names a tracked event type.
func ValidType(t Type) bool {
	for _, m := range markers {
		if m.typ == t {
			return true
		}
	}
	return false
}

package browsercookies

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/angelware-net/spectre/pkg/logger"
)

const httpOnlyPrefix = "#HttpOnly_"

// readNetscape parses a cookies.txt stream. Malformed lines are skipped
// with a warning that never includes the line itself.
func readNetscape(r io.Reader, domain string, now time.Time, l logger.Logger) ([]Cookie, error) {
	var cookies []Cookie
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		httpOnly := strings.HasPrefix(line, httpOnlyPrefix)
		if httpOnly {
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			l.Warning("cookies.txt line %d: expected 7 fields, got %d", lineNo, len(fields))
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			l.Warning("cookies.txt line %d: invalid expiry", lineNo)
			continue
		}
		if !matchesDomain(fields[0], domain) {
			continue
		}
		c := Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HTTPOnly: httpOnly,
		}
		// Zero expiry marks a session cookie.
		if expiry > 0 {
			c.Expires = time.Unix(expiry, 0)
			if c.Expires.Before(now) {
				continue
			}
		}
		cookies = append(cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to read cookies.txt: %w", err)
	}
	return cookies, nil
}

// matchesDomain reports whether a cookie set for cookieDomain applies to
// domain or one of its subdomains.
func matchesDomain(cookieDomain, domain string) bool {
	d := strings.TrimPrefix(cookieDomain, ".")
	return d == domain || strings.HasSuffix(d, "."+domain)
}

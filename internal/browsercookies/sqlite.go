package browsercookies

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// chromiumEpochOffset is the number of seconds between 1601-01-01 and the
// Unix epoch. Chromium stores expiry as microseconds since the former.
const chromiumEpochOffset int64 = 11_644_473_600

// layout describes one SQLite cookie schema.
type layout struct {
	browser string
	query   string
	// expiry converts the stored expiry column to a time.
	expiry func(int64) time.Time
	// cutoff converts now to the stored expiry unit.
	cutoff func(time.Time) int64
}

var firefoxLayout = layout{
	browser: "Firefox",
	query: `SELECT name, value, host, path, expiry, isSecure, isHttpOnly
		FROM moz_cookies
		WHERE (host = ? OR host = ? OR host LIKE ?) AND expiry > ?
		ORDER BY name ASC, path DESC`,
	expiry: func(v int64) time.Time { return time.Unix(v, 0) },
	cutoff: func(t time.Time) int64 { return t.Unix() },
}

// Encrypted Chromium values are stored in encrypted_value with an empty
// value column; those rows are skipped.
var chromiumLayout = layout{
	browser: "Chromium",
	query: `SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly
		FROM cookies
		WHERE (host_key = ? OR host_key = ? OR host_key LIKE ?) AND value != '' AND expires_utc > ?
		ORDER BY name ASC, path DESC`,
	expiry: func(v int64) time.Time { return time.Unix(v/1_000_000-chromiumEpochOffset, 0) },
	cutoff: func(t time.Time) int64 { return (t.Unix() + chromiumEpochOffset) * 1_000_000 },
}

// readSQLite queries a copy of a SQLite store for the cookies of domain
// and its subdomains that have not expired at now.
func readSQLite(ctx context.Context, dbPath, domain string, l layout, now time.Time) ([]Cookie, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?immutable=1")
	if err != nil {
		return nil, fmt.Errorf("error: cannot open %s cookie database: %w", l.browser, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, l.query, domain, "."+domain, "%."+domain, l.cutoff(now))
	if err != nil {
		return nil, fmt.Errorf("error: failed to query %s cookies: %w", l.browser, err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		var (
			c                Cookie
			expiry           int64
			secure, httpOnly int
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &expiry, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("error: failed to scan %s cookie row: %w", l.browser, err)
		}
		c.Expires = l.expiry(expiry)
		c.Secure = secure != 0
		c.HTTPOnly = httpOnly != 0
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate %s cookie rows: %w", l.browser, err)
	}
	return cookies, nil
}

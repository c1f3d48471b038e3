package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelware-net/spectre/cmd/common"
	"github.com/angelware-net/spectre/internal/browsercookies"
	"github.com/angelware-net/spectre/pkg/session"
	"github.com/urfave/cli"
)

var (
	cookiesShowValues bool

	cookiesShowFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "values",
			Usage:       "print the raw cookie strings instead of cookie names",
			Destination: &cookiesShowValues,
		},
	}
)

func cookiesShow(ctx *cli.Context) error {
	b := getBackend(ctx, "cookies")
	if b == nil {
		return nil
	}
	defer b.close()
	ss, err := b.sessions.Snapshot()
	if err != nil {
		printRuntimeErr(ctx, "cookies", "load", err)
		return nil
	}
	fmt.Printf("File: %s\n", b.cookies.Path())
	printCookie("Auth", ss.AuthCookie, ss.HasAuth)
	printCookie("2FA", ss.OTPCookie, ss.HasOTP)
	return nil
}

func printCookie(label, raw string, ok bool) {
	switch {
	case !ok:
		fmt.Printf("%s: (none)\n", label)
	case cookiesShowValues:
		fmt.Printf("%s: %s\n", label, raw)
	default:
		fmt.Printf("%s: %s\n", label, strings.Join(cookieNames(raw), ", "))
	}
}

// cookieNames lists the cookie names in a stored string, skipping
// attribute fragments such as Path or Expires.
func cookieNames(raw string) []string {
	var names []string
	for _, frag := range strings.Split(raw, ";") {
		name := session.CookieName(frag)
		if name == "" || session.IsCookieAttribute(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func cookiesSet(ctx *cli.Context) error {
	return saveCookie(ctx, "set", func(b *backend, v string) error { return b.cookies.SaveLoginCookies(v) })
}

func cookiesSetOTP(ctx *cli.Context) error {
	return saveCookie(ctx, "set-otp", func(b *backend, v string) error { return b.cookies.SaveOTPCookies(v) })
}

func saveCookie(ctx *cli.Context, action string, save func(*backend, string) error) error {
	value := ctx.Args().First()
	if value == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no cookie provided"))
	}
	b := getBackend(ctx, "cookies")
	if b == nil {
		return nil
	}
	defer b.close()
	if err := save(b, value); err != nil {
		printRuntimeErr(ctx, "cookies", action, err)
		return nil
	}
	fmt.Println("Saved")
	return nil
}

func cookiesClear(ctx *cli.Context) error {
	b := getBackend(ctx, "cookies")
	if b == nil {
		return nil
	}
	defer b.close()
	if err := b.cookies.Clear(); err != nil {
		printRuntimeErr(ctx, "cookies", "clear", err)
		return nil
	}
	fmt.Println("Cleared stored cookies")
	return nil
}

// cookiesImport reads the session from the given cookie store, or scans
// the installed browsers when no path is given.
func cookiesImport(ctx *cli.Context) error {
	b := getBackend(ctx, "cookies")
	if b == nil {
		return nil
	}
	defer b.close()
	src, hasOTP, err := browsercookies.New(b.log).ImportSession(context.Background(), ctx.Args().First(), b.cookies)
	if err != nil {
		printRuntimeErr(ctx, "cookies", "import", err)
		return nil
	}
	fmt.Printf("Imported VRChat session from %s\n", src.Browser)
	if !hasOTP {
		fmt.Println("No two-factor cookie found, you may need to run verify")
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelware-net/spectre/cmd/common"
	"github.com/angelware-net/spectre/pkg/auth"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli"
)

var (
	loginPassword string
	verifyEmail   bool

	loginFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "password, p",
			Usage:       "account password, prompted for when omitted",
			Destination: &loginPassword,
		},
	}
	verifyFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "email, e",
			Usage:       "the code was received by email (default: authenticator app)",
			Destination: &verifyEmail,
		},
	}
)

func login(ctx *cli.Context) error {
	username := ctx.Args().First()
	if username == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no username provided"))
	}
	password := loginPassword
	if password == "" {
		var err error
		password, err = readLine("Password: ")
		if err != nil {
			printRuntimeErr(ctx, "login", "read_password", err)
			return nil
		}
	}
	b := getBackend(ctx, "login")
	if b == nil {
		return nil
	}
	defer b.close()
	body, err := b.auth.Login(context.Background(), username, password)
	if err != nil {
		printAuthErr(ctx, "login", err)
		return nil
	}
	if methods := gjson.Get(body, "requiresTwoFactorAuth"); methods.IsArray() {
		var names []string
		for _, m := range methods.Array() {
			names = append(names, m.String())
		}
		fmt.Printf("Two-factor code required (%s), continue with \"%s verify <code>\"\n",
			strings.Join(names, ", "), ctx.App.Name)
		return nil
	}
	printLoggedIn(body)
	return nil
}

func verify(ctx *cli.Context) error {
	code := ctx.Args().First()
	if code == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no code provided"))
	}
	b := getBackend(ctx, "verify")
	if b == nil {
		return nil
	}
	defer b.close()
	verifyCode := b.auth.VerifyTotp
	if verifyEmail {
		verifyCode = b.auth.VerifyEmailOtp
	}
	body, err := verifyCode(context.Background(), code)
	if err != nil {
		printAuthErr(ctx, "verify", err)
		return nil
	}
	if !gjson.Get(body, "verified").Bool() {
		fmt.Println("Code rejected")
		return nil
	}
	fmt.Println("Two-factor verification succeeded")
	return nil
}

func logout(ctx *cli.Context) error {
	b := getBackend(ctx, "logout")
	if b == nil {
		return nil
	}
	defer b.close()
	if _, err := b.auth.Logout(context.Background()); err != nil {
		printAuthErr(ctx, "logout", err)
		return nil
	}
	fmt.Println("Logged out")
	return nil
}

func status(ctx *cli.Context) error {
	b := getBackend(ctx, "status")
	if b == nil {
		return nil
	}
	defer b.close()
	state, ss, err := b.auth.Status()
	if err != nil {
		printRuntimeErr(ctx, "status", "read_cookies", err)
		return nil
	}
	fmt.Printf("State:       %s\n", state)
	fmt.Printf("Auth cookie: %t\n", ss.HasAuth)
	fmt.Printf("2FA cookie:  %t\n", ss.HasOTP)
	return nil
}

// printAuthErr reports err; when only saving the cookie failed the
// response body is printed too since the call itself went through.
func printAuthErr(ctx *cli.Context, cmd string, err error) {
	var perr *auth.PersistError
	if errors.As(err, &perr) {
		printRuntimeErr(ctx, cmd, "persist", err)
		fmt.Println(perr.Body)
		return
	}
	printRuntimeErr(ctx, cmd, "request", err)
}

func printLoggedIn(body string) {
	name := gjson.Get(body, "displayName").String()
	if name == "" {
		fmt.Println(body)
		return
	}
	fmt.Printf("Logged in as %s\n", name)
}

package cmd

import (
	"fmt"
	"runtime"

	"github.com/angelware-net/spectre/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// buildInfo is reported by system.getVersion when the daemon runs.
var buildInfo BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	buildInfo = bArgs
	app := cli.App{
		Name:                  "spectre",
		HelpName:              "spectre",
		Usage:                 "A VRChat companion backend.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "spectre <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "serve the JSON-RPC endpoint for the UI",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             daemon,
				Flags:              daemonFlags,
			},
			{
				Name:               "login",
				Usage:              "log in with username and password",
				Description:        LoginDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             login,
				Flags:              loginFlags,
			},
			{
				Name:               "verify",
				Usage:              "submit a two-factor code",
				Description:        VerifyDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             verify,
				Flags:              verifyFlags,
			},
			{
				Name:               "logout",
				Usage:              "end the session and forget the auth cookie",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             logout,
			},
			{
				Name:               "status",
				Usage:              "show the stored login state",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             status,
			},
			{
				Name:                   "request",
				Aliases:                []string{"r"},
				Usage:                  "send a raw authenticated request",
				Description:            RequestDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				UseShortOptionHandling: true,
				Action:                 request,
				Flags:                  requestFlags,
			},
			{
				Name:               "call",
				Aliases:            []string{"c"},
				Usage:              "call a named API endpoint",
				Description:        CallDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             call,
			},
			{
				Name:               "endpoints",
				Usage:              "list the named API endpoints",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             endpoints,
			},
			{
				Name:               "time",
				Usage:              "print the VRChat server time",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             serverTime,
			},
			{
				Name:               "visits",
				Usage:              "print the number of users online",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             visits,
			},
			{
				Name:  "cookies",
				Usage: "inspect or edit the stored session cookies",
				Subcommands: []cli.Command{
					{
						Name:   "show",
						Usage:  "show which cookies are stored",
						Action: cookiesShow,
						Flags:  cookiesShowFlags,
					},
					{
						Name:      "set",
						Usage:     "store the auth cookie string",
						ArgsUsage: "<cookie>",
						Action:    cookiesSet,
					},
					{
						Name:      "set-otp",
						Usage:     "store the two-factor cookie string",
						ArgsUsage: "<cookie>",
						Action:    cookiesSetOTP,
					},
					{
						Name:   "clear",
						Usage:  "remove both stored cookie strings",
						Action: cookiesClear,
					},
					{
						Name:      "import",
						Usage:     "copy the VRChat session from a browser",
						ArgsUsage: "[cookie store path]",
						Action:    cookiesImport,
					},
				},
			},
			{
				Name:  "settings",
				Usage: "read or write UI settings",
				Subcommands: []cli.Command{
					{
						Name:      "get",
						ArgsUsage: "<key>",
						Action:    settingsGet,
					},
					{
						Name:      "set",
						ArgsUsage: "<key> <value>",
						Action:    settingsSet,
					},
				},
			},
			{
				Name:        "gamelog",
				Usage:       "record and list game log events",
				Description: GameLogDescription,
				Subcommands: []cli.Command{
					{
						Name:      "ingest",
						Usage:     "store the notable lines of a log file (- for stdin)",
						ArgsUsage: "<file>",
						Action:    gamelogIngest,
					},
					{
						Name:   "list",
						Usage:  "list stored events, newest first",
						Action: gamelogList,
						Flags:  gamelogListFlags,
					},
					{
						Name:   "follow",
						Usage:  "store lines streamed by the log reader sidecar",
						Action: gamelogFollow,
						Flags:  gamelogFollowFlags,
					},
				},
			},
			{
				Name:               "pipeline",
				Usage:              "print live events from the VRChat pipeline",
				Description:        PipelineDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             pipelineRun,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of spectre",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}

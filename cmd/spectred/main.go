// Command spectred runs only the JSON-RPC daemon, configured from the
// environment. It is what the desktop shell launches next to the UI.
package main

import (
	"fmt"
	"os"

	"github.com/angelware-net/spectre/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

func main() {
	args := append([]string{os.Args[0], "daemon"}, os.Args[1:]...)
	err := cmd.Execute(args, cmd.BuildArgs{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildType: buildType,
	})
	if err != nil {
		fmt.Println("spectred:", err.Error())
		os.Exit(1)
	}
}

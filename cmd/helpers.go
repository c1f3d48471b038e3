package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/angelware-net/spectre/cmd/common"
)

var printRuntimeErr = common.PrintRuntimeErr

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runContext bounds the long running commands. Tests replace it.
var runContext = signalContext

// readLine prompts on stdout and reads one line from stdin.
func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

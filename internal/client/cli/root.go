package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the command loop needs. The
// real App satisfies it; tests provide a stub.
type execIface interface {
	isSignedIn() bool
	Signup(ctx context.Context) error
	Signin(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Check(ctx context.Context) error
	Status(ctx context.Context) error
}

func (a *App) isSignedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getPrompt() string {
	if user := a.session.User(); user != nil && user.Email != "" {
		return fmt.Sprintf("vt (%s)> ", user.Email)
	}
	return "vt> "
}

// Root runs the interactive command loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to VitalTrack (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(a.getPrompt())
		if !scanner.Scan() {
			break
		}
		runCommand(ctx, a, scanner.Text())
		if isExit(scanner.Text()) {
			break
		}
	}
}

func isExit(line string) bool {
	cmd := strings.TrimSpace(line)
	return cmd == "exit" || cmd == "quit"
}

// runCommand parses one input line and dispatches to the App. Handler
// errors are reported and swallowed; the loop stays alive.
func runCommand(ctx context.Context, a execIface, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}

	var err error
	switch cmd := parts[0]; cmd {
	case "help":
		if a.isSignedIn() {
			printlnFn("Available commands: whoami, profile, check, status, logout, exit")
		} else {
			printlnFn("Available commands: signup, signin, status, exit")
		}

	case "signup":
		err = a.Signup(ctx)

	case "signin", "login":
		err = a.Signin(ctx)

	case "logout":
		err = a.Logout(ctx)

	case "whoami":
		err = a.WhoAmI(ctx)

	case "profile":
		err = a.Profile(ctx)

	case "check":
		err = a.Check(ctx)

	case "status":
		err = a.Status(ctx)

	case "exit", "quit":
		printlnFn("Bye!")

	default:
		printlnFn("Unknown command:", cmd)
	}

	if err != nil {
		printlnFn("Error:", err.Error())
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/filekeeper/internal/client/errmsg"
	"github.com/dmitrijs2005/filekeeper/internal/client/router"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

var ErrUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", ErrUsage, s)
}

// execIface is the command surface the REPL drives. *App implements it.
type execIface interface {
	currentPath() string
	Goto(ctx context.Context, args []string) error
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

var (
	authViews = []string{router.PathLogin, router.PathRegister}
	homeView  = []string{router.PathHome}
)

// commandViews lists the views each view-bound command may run on.
var commandViews = map[string][]string{
	"login":    authViews,
	"register": authViews,
	"list":     homeView,
	"l":        homeView,
	"next":     homeView,
	"prev":     homeView,
	"upload":   homeView,
	"download": homeView,
	"rename":   homeView,
	"delete":   homeView,
	"whoami":   homeView,
	"logout":   homeView,
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx)
	case "register":
		return a.Register(ctx)
	case "l", "list":
		return a.List(ctx, args)
	case "next":
		return a.Next(ctx)
	case "prev":
		return a.Prev(ctx)
	case "upload":
		return a.Upload(ctx, args)
	case "download":
		return a.Download(ctx, args)
	case "rename":
		return a.Rename(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "whoami":
		return a.WhoAmI(ctx)
	case "logout":
		return a.Logout(ctx)
	}
	return nil
}

func helpFor(path string) string {
	if path == router.PathHome {
		return "Available commands: list [limit] [offset] [sort_by] [order], next, prev, upload <path>, " +
			"download <id> [dest], rename <id> <name>, delete <id>, whoami, logout, goto <view>, exit"
	}
	return "Available commands: login, register, goto <view>, exit"
}

// runREPL reads commands line by line from reader and dispatches them to a
// according to the current view. Command errors are shown to the user and
// never end the loop; EOF, "exit" and "quit" do.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("fk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpFor(a.currentPath()))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "goto":
			cmdErr = a.Goto(ctx, args)

		default:
			views, ok := commandViews[cmd]
			switch {
			case !ok:
				printlnFn("Unknown command:", cmd)
			case !slices.Contains(views, a.currentPath()):
				printlnFn(fmt.Sprintf("Command %q is not available on %s", cmd, a.currentPath()))
			default:
				cmdErr = dispatch(ctx, a, cmd, args)
			}
		}

		if cmdErr != nil {
			printlnFn("Error:", errmsg.Extract(cmdErr))
		}
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/config"
	"github.com/kinderhub/backend/internal/logging"
	"github.com/kinderhub/backend/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errReported means the user has already been told about the failure; the
// command only needs a non-zero exit.
var errReported = errors.New("already reported")

// app carries what every command needs. Nothing here is global.
type app struct {
	cfg    *config.Config
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(cfg *config.Config, in io.Reader, out, errOut io.Writer) *app {
	return &app{cfg: cfg, in: bufio.NewReader(in), out: out, errOut: errOut}
}

// colorNotifier prints list notifications.
type colorNotifier struct {
	w io.Writer
}

func (n colorNotifier) Info(message string) {
	color.New(color.FgGreen).Fprintln(n.w, message)
}

func (n colorNotifier) Error(message string) {
	color.New(color.FgRed).Fprintln(n.w, message)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.App.Env, os.Stderr)

	a := newApp(cfg, os.Stdin, os.Stdout, os.Stderr)
	os.Exit(a.run(context.Background(), os.Args[1:]))
}

// run executes one command line and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	var authErr *session.AuthError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
	case errors.As(err, &authErr):
		color.New(color.FgYellow).Fprintln(a.errOut, authErr.Error())
	default:
		color.New(color.FgRed).Fprintf(a.errOut, "Error: %v\n", err)
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kinderctl",
		Short:         "Kindergarten admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfg.Client.APIURL, "api", a.cfg.Client.APIURL, "API base URL")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.exportCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.importCmd(),
		a.deleteCmd(),
		a.assignTeacherCmd(),
		a.uploadDocumentCmd(),
		a.newsChatCmd(),
	)
	return root
}

func (a *app) notifier() colorNotifier {
	return colorNotifier{w: a.errOut}
}

func (a *app) success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(a.out, format+"\n", args...)
}

func (a *app) warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(a.errOut, format+"\n", args...)
}

// adminClient loads the session and refuses anyone but admins.
func (a *app) adminClient() (*client.Client, *session.Session, error) {
	s, err := session.Load(a.cfg.Client.SessionFile)
	if err != nil {
		return nil, nil, err
	}
	if err := s.RequireAdmin(); err != nil {
		return nil, nil, err
	}
	c := client.New(a.cfg.Client.APIURL, nil)
	c.SetToken(s.Token)
	return c, s, nil
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func (a *app) confirm(question string) bool {
	answer := a.prompt(question + " (y/n): ")
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

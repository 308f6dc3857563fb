package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/hackboard/go-session-client/apiclient"
	"github.com/hackboard/go-session-client/guard"
	"github.com/hackboard/go-session-client/identity"
	"github.com/hackboard/go-session-client/internal/config"
	apperrors "github.com/hackboard/go-session-client/internal/errors"
	"github.com/hackboard/go-session-client/internal/utils"
	"github.com/hackboard/go-session-client/navigation"
	"github.com/hackboard/go-session-client/session"
	"github.com/hackboard/go-session-client/tokens"
	"github.com/hackboard/go-session-client/tokens/refresh"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	var (
		apiURL       = flag.String("api-url", "", "hackboard API base URL (overrides HACKBOARD_API_URL)")
		manifestFile = flag.String("manifest", "", "navigation manifest YAML override")
		verbose      = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		return errors.New("missing command")
	}

	cfg := config.New()
	if *apiURL != "" {
		os.Setenv("HACKBOARD_API_URL", *apiURL)
	}
	if *manifestFile != "" {
		os.Setenv("HACKBOARD_MANIFEST_FILE", *manifestFile)
	}

	logger := newLogger(*verbose)
	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch flag.Arg(0) {
	case "login":
		return app.login(ctx)
	case "whoami":
		return app.whoami(ctx)
	case "can-access":
		return app.canAccess(ctx, flag.Args()[1:])
	case "logout":
		app.exec.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", flag.Arg(0))
	}
}

func usage() {
	displayAppname("sessionctl")
	fmt.Println("Usage: sessionctl [flags] <login|whoami|can-access <path>|logout>")
	fmt.Println()
	flag.PrintDefaults()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// app wires the full session stack: file-backed token store, refresh
// coordinator, authenticated executor, session cache, and the manifest-driven
// authorizer.
type app struct {
	store    *tokens.Store
	exec     *apiclient.Executor
	sessions *session.Cache
	authz    *navigation.Authorizer
	log      zerolog.Logger
}

func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	storage, err := tokens.NewFileStorage(cfg.GetCredentialsFile())
	if err != nil {
		return nil, err
	}
	store, err := tokens.NewStore(storage)
	if err != nil {
		return nil, err
	}

	coordinator, err := refresh.NewCoordinator(store, cfg, refresh.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	redirect := &loginNotice{loginPath: cfg.GetLoginPath()}
	exec, err := apiclient.NewExecutor(store, coordinator, redirect, cfg, apiclient.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewCache(exec, session.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	manifest := navigation.Default()
	if path := cfg.GetManifestFile(); path != "" {
		manifest, err = navigation.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}
	authz, err := navigation.NewAuthorizer(manifest)
	if err != nil {
		return nil, err
	}

	return &app{store: store, exec: exec, sessions: sessions, authz: authz, log: logger}, nil
}

func (a *app) login(ctx context.Context) error {
	email := prompt("Email: ")
	password := prompt("Password: ")
	if err := a.exec.Login(ctx, email, password); err != nil {
		return err
	}
	if token, ok := a.store.AccessToken(); ok {
		if claims, err := tokens.PeekClaims(token); err == nil {
			a.log.Debug().Str("subject", claims.Subject).Time("expires_at", claims.ExpiresAt).Msg("logged in")
		}
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	g, err := guard.New(a.store, a.sessions, &loginNotice{})
	if err != nil {
		return err
	}
	if g.Check(ctx) != guard.StateAuthenticated {
		return apperrors.ErrNotAuthenticated
	}

	user := a.sessions.Current()
	role, _ := user.ParsedRole()
	fmt.Printf("%s <%s> role=%s\n", user.FullName(), user.Email, role)
	return nil
}

func (a *app) canAccess(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("can-access requires a path argument")
	}
	path := args[0]

	user := a.sessions.LoadUser(ctx)
	role, _ := identity.ParseRole(utils.Value(user).Role)
	if a.authz.CanAccessPath(path, role) {
		fmt.Printf("allowed: %s may access %s\n", role, path)
		return nil
	}
	fmt.Printf("denied: %s\n", path)
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	var value string
	fmt.Scanln(&value)
	return value
}

// loginNotice is the CLI's redirector: there is no page to navigate, so the
// "return to the login surface" operation degrades to telling the operator to
// log in again. Stored credentials are already cleared by the executor.
type loginNotice struct {
	loginPath string
}

func (n *loginNotice) RedirectToLogin() {
	if n.loginPath != "" {
		fmt.Fprintf(os.Stderr, "Session expired (login surface: %s). Run `sessionctl login` to continue.\n", n.loginPath)
		return
	}
	fmt.Fprintln(os.Stderr, "Session expired. Run `sessionctl login` to continue.")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	pages "github.com/dpotapov/go-mjml"
	"github.com/dpotapov/go-mjml/config"
	"github.com/dpotapov/go-mjml/mjml"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		env.Cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.Log, err = env.Cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.redirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.restoreLog()
	return nil
}

// Errors are returned from subcommands as regular errors and reported once, either by
// exitErrHandler or directly to stderr when logging is not set up yet.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "compiles MJML email templates into responsive HTML",
		Version:         runtime.Version(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to the console"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Renders MJML template(s) to HTML",
				OnUsageError: usageErrorHandler,
				Action:       runRender,
				ArgsUsage:    "SOURCE...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write HTML to `PATH`, a directory when there are several sources"},
					&cli.StringFlag{Name: "vars", Usage: "load template variables from `FILE` (YAML or JSON)"},
				},
			},
			{
				Name:         "serve",
				Usage:        "Serves a directory of templates with live preview",
				OnUsageError: usageErrorHandler,
				Action:       runServe,
				ArgsUsage:    "[DIRECTORY]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "listen on `ADDRESS` instead of the configured one"},
					&cli.StringFlag{Name: "vars", Usage: "load template variables from `FILE` (YAML or JSON)"},
				},
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
			},
		},
	}

	var err error
	// os.Exit is called at the end of main to set exit code, there must be no other deferred
	// functions after that
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

// parseBreakpoint reads the configured responsive breakpoint.
func parseBreakpoint(cfg *config.RenderConfig) (mjml.Size, error) {
	bp, ok := mjml.ParseSize(cfg.Breakpoint)
	if !ok {
		return mjml.Size{}, fmt.Errorf("invalid breakpoint %q", cfg.Breakpoint)
	}
	return bp, nil
}

// newLoader resolves local includes under root and, if allowed, remote ones over HTTP.
func newLoader(cfg *config.IncludeConfig, root string) mjml.Loader {
	var m mjml.MultiLoader
	if cfg.AllowHTTP {
		hl := &mjml.HTTPLoader{
			Client: &http.Client{Timeout: cfg.Timeout},
			Allow:  cfg.AllowedOrigins,
			Deny:   cfg.DeniedOrigins,
		}
		m.Handle("http://", hl)
		m.Handle("https://", hl)
	}
	m.Handle("", &mjml.FSLoader{FS: os.DirFS(root)})
	return &m
}

func loadVars(fname string) (map[string]any, error) {
	if fname == "" {
		return nil, nil
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read variables: %w", err)
	}
	vars := map[string]any{}
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("unable to decode variables '%s': %w", fname, err)
	}
	return vars, nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	sources := cmd.Args().Slice()
	if len(sources) == 0 {
		return errors.New("nothing to render, no sources specified")
	}
	bp, err := parseBreakpoint(&env.Cfg.Render)
	if err != nil {
		return err
	}
	vars, err := loadVars(cmd.String("vars"))
	if err != nil {
		return err
	}

	root := env.Cfg.Include.Root
	loader := newLoader(&env.Cfg.Include, root)
	ropts := &mjml.RenderOptions{
		Breakpoint:      bp,
		Fonts:           env.Cfg.Render.Fonts,
		DisableComments: !env.Cfg.Render.KeepComments,
		Vars:            vars,
		Logger:          env.Log,
	}

	out := cmd.String("out")
	for _, src := range sources {
		dst := out
		switch {
		case len(sources) > 1 && out != "":
			dst = filepath.Join(out, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+".html")
		case len(sources) > 1:
			dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".html"
		}
		if er := renderFile(ctx, env, loader, ropts, root, src, dst); er != nil {
			env.Log.Error("Unable to render template", zap.String("source", src), zap.Error(er))
			err = multierr.Append(err, fmt.Errorf("%s: %w", src, er))
		}
	}
	return err
}

func renderFile(ctx context.Context, env *localEnv, loader mjml.Loader, ropts *mjml.RenderOptions, root, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	// include paths are relative to the file, which is named relative to the include root
	name := filepath.Base(src)
	if rel, err := filepath.Rel(root, src); err == nil && !strings.HasPrefix(rel, "..") {
		name = filepath.ToSlash(rel)
	}

	html, warnings, err := mjml.Compile(ctx, string(data), &mjml.ParserOptions{Loader: loader, File: name, Logger: env.Log}, ropts)
	for _, w := range warnings {
		env.Log.Warn("Template warning", zap.String("source", src), zap.Stringer("warning", w))
	}
	if err != nil {
		return err
	}

	if dst == "" {
		_, err = os.Stdout.WriteString(html)
		return err
	}
	if err := os.WriteFile(dst, []byte(html), 0o644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", dst, err)
	}
	env.Log.Info("Template rendered", zap.String("source", src), zap.String("destination", dst))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)

	dir := env.Cfg.Server.Templates
	if cmd.Args().Len() > 0 {
		dir = cmd.Args().Get(0)
	}
	listen := env.Cfg.Server.Listen
	if l := cmd.String("listen"); l != "" {
		listen = l
	}
	bp, err := parseBreakpoint(&env.Cfg.Render)
	if err != nil {
		return err
	}
	vars, err := loadVars(cmd.String("vars"))
	if err != nil {
		return err
	}

	reload := env.Cfg.Server.ReloadInterval
	if reload == 0 {
		reload = -1
	}

	h := &pages.Handler{
		FileSystem:      os.DirFS(dir),
		Loader:          newLoader(&env.Cfg.Include, dir),
		Breakpoint:      bp,
		Fonts:           env.Cfg.Render.Fonts,
		DisableComments: !env.Cfg.Render.KeepComments,
		Vars:            vars,
		ReloadInterval:  reload,
		Logger:          env.Log,
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		env.Log.Info("Serving templates", zap.String("dir", dir), zap.String("address", "http://"+listen))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err = <-errc:
		return fmt.Errorf("unable to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if er := srv.Shutdown(shutdownCtx); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to shutdown server: %w", er))
	}
	if er := <-errc; er != nil && !errors.Is(er, http.ErrServerClosed) {
		err = multierr.Append(err, er)
	}
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Debug("Outputting configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

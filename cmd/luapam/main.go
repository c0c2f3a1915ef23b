// Command luapam runs a Lua script with the pam module loaded.
//
// With no script argument it runs a built-in login script that prompts on
// the terminal, authenticates the user and checks the account:
//
//	luapam -service login -user alice
//	LUAPAM_FAKE=true LUAPAM_FAKE_USERS=alice:secret123 luapam -user alice
//	luapam ./scripts/check.lua
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Shopify/go-lua"

	"github.com/hsiuhsiu/luapam-go/internal/config"
	"github.com/hsiuhsiu/luapam-go/internal/otel"
	"github.com/hsiuhsiu/luapam-go/pkg/luapam"
	"github.com/hsiuhsiu/luapam-go/pkg/luapam/logging"
	"github.com/hsiuhsiu/luapam-go/pkg/luapam/pamtest"
)

//go:embed login.lua
var loginScript string

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, luapam.ErrNotBuilt) {
			fmt.Fprintf(os.Stderr, "libpam unavailable: %v (set LUAPAM_FAKE=true to use the in-process framework)\n", err)
			os.Exit(2)
		}
		log.Printf("luapam: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("luapam", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Service, "service", cfg.Service, "PAM service name")
	fs.StringVar(&cfg.User, "user", cfg.User, "user to authenticate; prompted for when empty")
	fs.BoolVar(&cfg.Fake, "fake", cfg.Fake, "use the in-process framework instead of libpam")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "luapam %s\n", luapam.WrapperVersion())
		return nil
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one script, got %d", fs.NArg())
	}

	handler, err := logging.NewHandler(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	logger := logging.New(handler)

	shutdown, err := otel.Setup(ctx, "luapam", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if serr := shutdown(context.Background()); serr != nil {
			logger.Warn(ctx, "tracing shutdown", "error", serr)
		}
	}()

	fw, err := framework(cfg)
	if err != nil {
		return err
	}

	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := luapam.Open(l, luapam.Config{Framework: fw, Logger: logger}); err != nil {
		return err
	}
	newTerminal(stdin, stdout).register(l)
	l.PushString(cfg.Service)
	l.SetGlobal("service")
	if cfg.User != "" {
		l.PushString(cfg.User)
		l.SetGlobal("user")
	}

	name := "login.lua"
	if fs.NArg() == 1 {
		path, err := securePath(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("secure path: %w", err)
		}
		name = path
		if err := lua.LoadFile(l, path, ""); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	} else if err := lua.LoadString(l, loginScript); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	logger.Debug(ctx, "running script", "script", name, "service", cfg.Service, "fake", cfg.Fake)
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func framework(cfg config.Config) (luapam.Framework, error) {
	if cfg.Fake {
		return pamtest.New(pamtest.Service{Name: cfg.Service, Users: cfg.FakeUsers}), nil
	}
	return luapam.Native()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/bountip-console/internal/config"
	"github.com/jrsteele09/bountip-console/internal/logging"
)

const usage = `usage: console [command]

commands:
  status          restore the session and show where the console lands (default)
  signin          sign in with email and password
  sso             sign in through the identity provider
  outlet          choose the outlet to work in
  upload <file>   upload a file and print its url and phash
  signout         forget the stored session
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("console failed")
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c, err := config.Load(os.Getenv(config.ConfigFileVar))
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(logging.ParseLevel(c.GetLogLevel()))
	log.Logger = logging.New("console")
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(c, log.Logger)
	if err != nil {
		return err
	}

	command := "status"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "status":
		return app.status(ctx)
	case "signin":
		return app.signIn(ctx)
	case "sso":
		return app.singleSignOn(ctx)
	case "outlet":
		return app.chooseOutlet(ctx)
	case "upload":
		if len(args) < 2 {
			return errors.New("upload needs a file path")
		}
		return app.upload(ctx, args[1])
	case "signout":
		return app.signOut()
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

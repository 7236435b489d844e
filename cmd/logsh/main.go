package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/logship/logsh/internal/adapters/driven/auth"
	"github.com/logship/logsh/internal/adapters/driven/browser"
	"github.com/logship/logsh/internal/adapters/driven/config/file"
	"github.com/logship/logsh/internal/adapters/driven/httpclient"
	"github.com/logship/logsh/internal/adapters/driven/logship"
	"github.com/logship/logsh/internal/adapters/driving/cli"
	"github.com/logship/logsh/internal/core/services"
	"github.com/logship/logsh/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	// A .env file is optional; it may carry LOGSH_CONFIG_PATH.
	_ = godotenv.Load()

	configPath, err := file.ResolvePath(file.OSEnv())
	if err != nil {
		log.Printf("failed to resolve configuration path: %v", err)
		return 1
	}

	settings, err := file.LoadSettings(configPath)
	if err != nil {
		log.Printf("ignoring settings: %v", err)
	}
	if settings.Logging.Verbose {
		logger.SetVerbose(true)
	}
	if settings.Logging.File {
		if err := logger.EnableFile(file.LogPath(configPath)); err != nil {
			log.Printf("failed to open log file: %v", err)
		}
	}
	defer logger.Close()

	httpClient := httpclient.New(settings.Timeout(), version)

	var opener browser.Opener
	if settings.OAuth.OpenBrowser {
		opener = browser.Default
	}
	prompter := cli.NewPrompter(os.Stderr, opener)

	authenticator := services.NewAuthenticator(
		auth.NewJWTExchanger(httpClient),
		auth.NewOAuthEngine(httpClient, prompter, auth.Options{
			MaxPoll:      settings.MaxPoll(),
			RedirectPort: settings.OAuth.RedirectPort,
		}),
	)
	connectionSvc := services.NewConnectionService(
		file.NewStore(configPath),
		authenticator,
		logship.NewClient(httpClient),
	)

	cli.SetServices(&cli.Services{
		Connection: connectionSvc,
		ConfigPath: configPath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

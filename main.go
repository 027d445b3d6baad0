package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/bug-c/github-backup/auth"
	"github.com/bug-c/github-backup/backup"
	"github.com/bug-c/github-backup/gh"
	"github.com/bug-c/github-backup/repository"
)

// appTokenUsername is the username git expects when the password is a
// GitHub App installation token
const appTokenUsername = "x-access-token"

var (
	loggerLevel = new(slog.LevelVar)
	logger      *slog.Logger

	levelStrings = map[string]slog.Level{
		"trace": slog.Level(-8),
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Sources: cli.EnvVars("GITHUB_BACKUP_CONFIG"),
			Value:   "config.yaml",
			Usage:   "Path to the config file.",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Sources: cli.EnvVars("LOG_LEVEL"),
			Value:   "info",
			Usage:   "Log level",
		},
	}
)

func init() {
	loggerLevel.Set(slog.LevelInfo)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loggerLevel,
	}))
}

// newGithubClient creates the API client and the clone credentials from
// the configured auth method. With a personal access token the credential
// is verified up front, with a GitHub App a fresh installation token is
// minted for this run.
func newGithubClient(ctx context.Context, conf *backup.Config) (*gh.Client, repository.Auth, error) {
	if conf.GitHub.Token != "" {
		client := gh.NewClient(ctx, conf.GitHub.Token, logger.With("logger", "gh"))
		user, err := client.Authenticate(ctx)
		if err != nil {
			return nil, repository.Auth{}, err
		}
		logger.Info("authenticated with github", "user", user)
		return client, repository.Auth{Token: conf.GitHub.Token}, nil
	}

	// the backup only reads repository contents
	tokenReq := auth.AppTokenRequest{
		Permissions: map[string]string{"contents": "read"},
	}
	token, err := auth.GithubAppInstallationToken(ctx,
		conf.GitHub.AppID, conf.GitHub.AppInstallationID, conf.GitHub.AppPrivateKeyPath, tokenReq)
	if err != nil {
		return nil, repository.Auth{}, fmt.Errorf("unable to create github app installation token err:%w", err)
	}
	logger.Info("created github app installation token", "expires_at", token.ExpiresAt)

	client := gh.NewClient(ctx, token.Token, logger.With("logger", "gh"))
	return client, repository.Auth{Username: appTokenUsername, Token: token.Token}, nil
}

func run(ctx context.Context, c *cli.Command) error {
	// set log level according to argument
	if v, ok := levelStrings[strings.ToLower(c.String("log-level"))]; ok {
		loggerLevel.Set(v)
	}

	conf, err := parseConfigFile(c.String("config"))
	if err != nil {
		return fmt.Errorf("unable to parse config file err:%w", err)
	}

	if err := conf.ValidateAndApplyDefaults(); err != nil {
		return fmt.Errorf("unable to validate config err:%w", err)
	}

	// from this point onwards logs also go to the rotated run log under
	// the backup root
	logDir, err := setupFileLogging(conf)
	if err != nil {
		return err
	}

	// per repository sync metrics are only worth collecting when they
	// can be pushed somewhere
	if conf.Backup.MetricsPushURL != "" {
		repository.EnableMetrics(metricsNamespace, metricsRegistry)
	}

	client, repoAuth, err := newGithubClient(ctx, conf)
	if err != nil {
		return err
	}

	// path to resolve the git binary and its helpers
	gitENV := []string{fmt.Sprintf("PATH=%s", os.Getenv("PATH"))}

	runner, err := backup.NewRunner(*conf, client, repoAuth, gitENV, logger.With("logger", "backup"))
	if err != nil {
		return fmt.Errorf("unable to create backup runner err:%w", err)
	}

	summary := runner.Run(ctx)
	logger.Info("backup run finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration(),
	)

	// post run housekeeping happens regardless of sync failures
	cleanupOldLogs(logDir, conf.Backup.LogRetentionDays)

	if conf.Backup.MetricsPushURL != "" {
		pushRunMetrics(conf.Backup.MetricsPushURL, summary)
	}

	if conf.Backup.HeartbeatURL != "" {
		sendHeartbeat(ctx, conf.Backup.HeartbeatURL)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d repositories failed to sync", summary.Failed, summary.Total)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "github-backup",
		Usage:  "github-backup clones or updates local mirrors of all repositories of the configured GitHub organizations.",
		Flags:  flags,
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("failed to run app", "err", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"mjjbox-checkin/lib/configutil"
	"mjjbox-checkin/lib/creds"
	"mjjbox-checkin/lib/notify/serverchan"
	"mjjbox-checkin/lib/restyutil"
	"mjjbox-checkin/lib/scrapers/mjjbox"
	"mjjbox-checkin/lib/serviceutil"
	"mjjbox-checkin/lib/telemetry"
	checkinservice "mjjbox-checkin/services/checkin"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// exit codes are the CLI's externally observable contract
const (
	exitSuccess     = 0
	exitFailed      = 1
	exitConfigError = 2
)

// Config is the optional config.json5 overlay; flags win over it.
type Config struct {
	Retries            int    `json:"retries"`
	DelaySeconds       int    `json:"delay_seconds"`
	NotifyIntermediate bool   `json:"notify_on_intermediate_failure"`
	UserAgent          string `json:"user_agent"`
}

var (
	credPath           *string
	baseUrl            *string
	retries            *int
	delaySeconds       *int
	notifyIntermediate *bool
	verbose            *bool
)

func init() {
	credPath = runCmd.Flags().StringP("cred", "c", "credentials.conf", "Path to the credentials file.")
	baseUrl = runCmd.Flags().StringP("base", "b", "", "Site base url, overrides the credentials file.")
	retries = runCmd.Flags().IntP("retries", "r", 0, "Max check-in attempts, including the first.")
	delaySeconds = runCmd.Flags().Int("delay", 0, "Seconds to wait between attempts.")
	notifyIntermediate = runCmd.Flags().Bool("notify-intermediate", false, "Notify on every failed attempt instead of staying silent until the final verdict.")
	verbose = runCmd.Flags().Bool("verbose", false, "Debug logging and HTTP exchange dumps.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--cred <path/to/credentials.conf>]",
	Short: "Logs in (best effort), performs the check-in with retries, and notifies the result.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		tel, err := telemetry.SetupFromEnv(cmd.Context(), "checkin-cli")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}

		code := run(cmd.Context())
		err = tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
		os.Exit(code)
	},
}

func run(ctx context.Context) int {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		slog.Error("failed to read config", "err", err)
		return exitConfigError
	}
	if *retries > 0 {
		config.Retries = *retries
	}
	if *delaySeconds > 0 {
		config.DelaySeconds = *delaySeconds
	}
	if *notifyIntermediate {
		config.NotifyIntermediate = true
	}

	credentials, err := creds.Load(*credPath)
	if err != nil {
		slog.Error("failed to read credentials", "err", err)
		return exitConfigError
	}
	if *baseUrl != "" {
		credentials.BaseUrl = *baseUrl
	}

	client, err := mjjbox.NewClient(mjjbox.ClientOptions{
		BaseUrl:   credentials.BaseUrl,
		Username:  credentials.Username,
		Password:  credentials.Password,
		UserAgent: config.UserAgent,
	})
	if err != nil {
		slog.Error("invalid base url", "url", credentials.BaseUrl, "err", err)
		return exitConfigError
	}
	if *verbose {
		dump, err := restyutil.NewFilesystemOutput(".dev/resty/checkin")
		if err != nil {
			slog.Warn("failed to setup http dump directory", "err", err)
		} else {
			dump.Attach(client.Http)
		}
	}

	if !client.TryLogin(ctx) {
		// not fatal: some sites accept check-ins without a session
		slog.Warn("login not confirmed, attempting checkin anyway")
	}

	var notifier checkinservice.Notifier
	if credentials.ServerChan != "" {
		notifier = serverchan.NewClient(credentials.ServerChan)
	}

	service := checkinservice.NewService(client, notifier, checkinservice.Options{
		Username:                    credentials.Username,
		BaseUrl:                     credentials.BaseUrl,
		Attempts:                    config.Retries,
		Delay:                       time.Duration(config.DelaySeconds) * time.Second,
		NotifyOnIntermediateFailure: config.NotifyIntermediate,
	})

	ok, failures := service.Run(ctx)
	if ok {
		return exitSuccess
	}

	renderFailures(failures)
	return exitFailed
}

func renderFailures(failures []checkinservice.Attempt) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Attempt", "Reason"})
	for _, attempt := range failures {
		t.AppendRow(table.Row{attempt.Index, attempt.Reason})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

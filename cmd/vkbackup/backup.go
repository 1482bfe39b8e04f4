package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vkbackup/pkg/auth"
	"vkbackup/pkg/backup"
	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/ui"
)

// Exit codes of a backup run
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

var (
	userID       string
	photoCount   int
	manifestPath string
	folderPrefix string
	httpTimeout  time.Duration
	vkToken      string
	ydToken      string
	logFile      string
	profile      string
	notify       bool
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&userID, "user", "u", "", "VK user ID (prompted when empty)")
	flags.IntVarP(&photoCount, "count", "n", 0, "number of profile photos to back up (prompted when not set)")
	flags.StringVarP(&manifestPath, "manifest", "o", "", "manifest file (default is uploaded_photos.json)")
	flags.StringVar(&folderPrefix, "folder-prefix", "", "Yandex.Disk folder prefix (default is vk_profile_photos_)")
	flags.DurationVar(&httpTimeout, "timeout", 0, "HTTP request timeout (default 30s)")
	flags.StringVar(&vkToken, "vk-token", "", "VK access token (overrides settings.ini)")
	flags.StringVar(&ydToken, "yd-token", "", "Yandex.Disk OAuth token (overrides settings.ini)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.StringVar(&profile, "profile", auth.DefaultProfile, "credential store profile used when tokens are missing")
	flags.BoolVar(&notify, "notify", false, "send a desktop notification when the backup finishes")
}

// backupFlags collects the flags that override configuration values
func backupFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if settingsFile != "" {
		flags["settings"] = settingsFile
	}
	if vkToken != "" {
		flags["vk-token"] = vkToken
	}
	if ydToken != "" {
		flags["yd-token"] = ydToken
	}
	if manifestPath != "" {
		flags["manifest"] = manifestPath
	}
	if folderPrefix != "" {
		flags["folder-prefix"] = folderPrefix
	}
	if httpTimeout > 0 {
		flags["timeout"] = httpTimeout
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if logFile != "" {
		flags["log-file"] = logFile
	}
	return flags
}

func runBackup(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, backupFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(exitFailure)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(exitFailure)
	}
	log := logger.WithField("version", version)

	if source := fillTokens(cfg, profile); source != "" {
		log.WithField("store", source).Info("using stored tokens")
		ui.PrintInfo("Using stored tokens", source)
	}

	if err := cfg.RequireTokens(); err != nil {
		log.WithError(err).Error("missing API tokens")
		ui.PrintError("Missing API tokens", err.Error())
		fmt.Fprintln(os.Stderr, "\nAdd them to settings.ini, set VKBACKUP_VK_TOKEN and VKBACKUP_YD_TOKEN,")
		fmt.Fprintln(os.Stderr, "or run 'vkbackup auth login'. See 'vkbackup auth guide' for how to get them.")
		os.Exit(exitFailure)
	}

	req, err := promptRequest(os.Stdin, ui.Output(), userID, photoCount, cmd.Flags().Changed("count"), cfg.VK.DefaultCount)
	if err != nil {
		ui.PrintError("Invalid input", err.Error())
		os.Exit(exitFailure)
	}

	runner, err := backup.New(cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize backup", err.Error())
		os.Exit(exitFailure)
	}

	folder := runner.FolderFor(req.UserID)
	ui.PrintInfo("VK user", req.UserID)
	ui.PrintInfo("Destination", folder)
	if !ui.IsQuietMode() {
		runner.SetProgress(ui.NewUploadProgress(ui.Output(), folder, req.Count))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, req)
	report(result, err)

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}
	sendNotification(notifier, result, err)

	if code := exitCode(result, err); code != exitOK {
		stop()
		os.Exit(code)
	}
}

// fillTokens completes missing tokens from the credential stores
func fillTokens(cfg *config.Config, profile string) string {
	if cfg.Tokens.VKToken != "" && cfg.Tokens.YDToken != "" {
		return ""
	}

	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Debug("credential stores unavailable")
		return ""
	}
	return manager.FillConfig(cfg, profile)
}

// report prints the outcome of a run
func report(result *backup.Result, err error) {
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			ui.PrintWarning("Backup interrupted", "the manifest lists the uploads accepted so far")
		case errors.Is(err, backup.ErrNoPhotos):
			ui.PrintWarning("Nothing to back up", "the user has no profile photos")
		default:
			ui.PrintError("Backup failed", err.Error())
		}
	}

	if result == nil || result.State < backup.StatePersistManifest {
		return
	}

	ui.PrintSummary("Backup finished", [][2]string{
		{"Folder", result.Folder},
		{"Fetched", strconv.Itoa(result.Fetched)},
		{"Uploaded", strconv.Itoa(result.Uploaded)},
		{"Failed", strconv.Itoa(result.Failed)},
		{"Manifest", result.ManifestPath},
		{"Run", result.RunID},
	})
}

func sendNotification(n *ui.Notifier, result *backup.Result, err error) {
	if n == nil {
		return
	}
	if err != nil {
		n.SendError("VK backup failed", err.Error())
		return
	}
	n.SendSuccess("VK backup finished", fmt.Sprintf("%d of %d photos uploaded to %s", result.Uploaded, result.Fetched, result.Folder))
}

// exitCode maps the outcome of a run to a process exit code. Failures reported
// by VK or Yandex.Disk end the run but not with an error status; configuration
// problems and an unwritable manifest do.
func exitCode(result *backup.Result, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case apperrors.IsType(err, apperrors.ErrorTypeConfig):
		return exitFailure
	case result != nil && result.State == backup.StatePersistManifest:
		return exitFailure
	}
	return exitOK
}

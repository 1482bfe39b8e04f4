package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"vkbackup/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile   string
	settingsFile string
	logLevel     string
	quiet        bool
	verbose      bool
)

// rootCmd runs a backup when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "vkbackup",
	Short: "Back up VK profile photos to Yandex.Disk",
	Long: `vkbackup copies the profile photos of a VK user into a folder on your
Yandex.Disk. Photos are transferred by reference: Yandex.Disk downloads every
file from VK on its own, nothing passes through this machine.

Each photo is named after its like count. Accepted uploads are listed in
uploaded_photos.json.

Tokens are read from settings.ini ([Tokens] vk_token, yd_token), from the
VKBACKUP_VK_TOKEN and VKBACKUP_YD_TOKEN environment variables, or from the
credential store filled by 'vkbackup auth login'.`,
	Example: `  # Interactive run
  vkbackup

  # Back up the 10 newest profile photos of user 1
  vkbackup --user 1 --count 10`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}

		// Logs would tear the progress bar, so only errors are shown unless asked for
		if !cmd.Flags().Changed("log-level") {
			if verbose {
				logLevel = "debug"
			} else {
				logLevel = "error"
			}
		}

		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
	Run: runBackup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .vkbackup.yaml or ~/.config/vkbackup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "INI file with a [Tokens] section (default is settings.ini)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs")

	rootCmd.SetVersionTemplate(`vkbackup {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

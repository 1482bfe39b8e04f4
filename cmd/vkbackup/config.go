package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vkbackup/pkg/config"
	"vkbackup/pkg/storage"
	"vkbackup/pkg/ui"
)

const defaultConfigPath = ".vkbackup.yaml"

const exampleConfig = `# vkbackup configuration file
#
# Tokens do not belong here. Keep them in settings.ini:
#
#   [Tokens]
#   vk_token = ...
#   yd_token = ...
#
# or in the environment (VKBACKUP_VK_TOKEN, VKBACKUP_YD_TOKEN),
# or run 'vkbackup auth login'.

tokens:
  # INI file with the [Tokens] section
  settings_file: "settings.ini"

# VK API
vk:
  api_url: "https://api.vk.com/method"
  api_version: "5.131"

  # Time zone used for the date in names like 10_2024-01-03.jpg
  # "Local" uses the system time zone
  timezone: "Local"

  # Photo count used when the prompt is left empty
  default_count: 5

# Yandex.Disk REST API
yandex_disk:
  api_url: "https://cloud-api.yandex.net/v1/disk"

  # Photos go to <folder_prefix><user id>
  folder_prefix: "vk_profile_photos_"

# HTTP client
http:
  timeout: 30s
  user_agent: "vkbackup/1.0"

# Output
output:
  # List of accepted uploads
  manifest_path: "uploaded_photos.json"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log format: text, json
  format: "text"

  # Log file path (optional)
  # Leave empty to log to stderr
  file: ""
`

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vkbackup configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (VKBACKUP_*)
  - .env files
  - settings.ini ([Tokens] section)
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.vkbackup.yaml' in the current directory unless a
different path is given with --config.`,
	Run: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.
Tokens are masked.`,
	Run: runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration and check that the manifest and log files
can be written.`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := writeExampleConfig(configPath); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		if errors.Is(err, os.ErrExist) {
			fmt.Println("\nTo overwrite, first remove the existing file:")
			fmt.Printf("  rm %s\n", configPath)
		}
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Put your tokens into settings.ini or run 'vkbackup auth login'")
	fmt.Println("2. Run 'vkbackup config validate' to check the configuration")
	fmt.Println("3. Start a backup with 'vkbackup'")
}

// writeExampleConfig creates path with the commented example, never overwriting
func writeExampleConfig(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(exampleConfig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, backupFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (VKBACKUP_*)")
	fmt.Printf("3. Settings file: %s\n", cfg.Tokens.SettingsFile)
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (not specified)")
	}
	fmt.Println("5. Default values")

	if manifest, err := storage.LoadManifest(cfg.Output.ManifestPath); err == nil {
		fmt.Println()
		ui.PrintInfo("Last manifest", fmt.Sprintf("%s (%d photos)", manifest.Path(), manifest.Len()))
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, backupFlags())
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings, problems := checkConfig(cfg)

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Settings file: %s\n", cfg.Tokens.SettingsFile)
	fmt.Printf("  Folder prefix: %s\n", cfg.YandexDisk.FolderPrefix)
	fmt.Printf("  Manifest: %s\n", cfg.Output.ManifestPath)
	fmt.Printf("  Time zone: %s\n", cfg.VK.TimeZone)
	fmt.Printf("  HTTP timeout: %s\n", cfg.HTTP.Timeout)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

// checkConfig reports what would get in the way of a run beyond Config.Validate
func checkConfig(cfg *config.Config) (warnings, problems []string) {
	if err := cfg.RequireTokens(); err != nil {
		warnings = append(warnings, err.Error()+" (stored tokens from 'vkbackup auth login' may still be used)")
	}

	if dir := filepath.Dir(cfg.Output.ManifestPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create manifest directory: %v", err))
		}
	}
	if info, err := os.Stat(cfg.Output.ManifestPath); err == nil && info.IsDir() {
		problems = append(problems, fmt.Sprintf("Manifest path %s is a directory", cfg.Output.ManifestPath))
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	return warnings, problems
}

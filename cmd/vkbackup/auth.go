package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vkbackup/pkg/auth"
	"vkbackup/pkg/config"
	"vkbackup/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored API tokens",
	Long: `Manage VK and Yandex.Disk tokens outside of settings.ini.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

Stored tokens are only used when settings.ini, the environment and the
command line do not provide one.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store API tokens securely",
	Long: `Store a VK access token and a Yandex.Disk OAuth token in the system
keychain or in an encrypted file. Input is hidden while you type.

Leave a prompt empty to keep a token that is already stored.`,
	Example: `  # Store tokens for the default profile
  vkbackup auth login

  # Store tokens under another profile
  vkbackup auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove stored tokens",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where tokens come from",
	Long: `Show stored profiles and which token sources the next backup will use.
Token values are masked.`,
	Run: runStatus,
}

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to obtain the tokens",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowTokenGuide(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(guideCmd)
}

func profileArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return auth.DefaultProfile
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	name := profileArg(args)
	reader := bufio.NewReader(os.Stdin)

	tokens := &auth.Tokens{Profile: name}
	if existing, _, err := manager.Retrieve(name); err == nil {
		fmt.Printf("Profile '%s' already has tokens. Update them? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
		tokens.VKToken = existing.VKToken
		tokens.YDToken = existing.YDToken
	} else {
		fmt.Print("Show how to obtain the tokens first? (y/N): ")
		input, _ := reader.ReadString('\n')
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			fmt.Println()
			auth.ShowTokenGuide(os.Stdout)
		}
	}

	fmt.Println("\nEnter your tokens (they will be hidden as you type):")
	fmt.Println()

	fmt.Print("VK access token: ")
	vk, err := readPassword(reader)
	if err != nil {
		ui.PrintError("Failed to read VK token", err.Error())
		os.Exit(1)
	}
	if vk != "" {
		tokens.VKToken = vk
	}

	fmt.Print("Yandex.Disk OAuth token: ")
	yd, err := readPassword(reader)
	if err != nil {
		ui.PrintError("Failed to read Yandex.Disk token", err.Error())
		os.Exit(1)
	}
	if yd != "" {
		tokens.YDToken = yd
	}

	store, err := manager.Store(tokens)
	if err != nil {
		ui.PrintError("Failed to store tokens", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Tokens saved for profile '%s'", name))
	ui.PrintInfo("Stored in", store)
	printTokens(tokens)
	if tokens.VKToken == "" || tokens.YDToken == "" {
		ui.PrintWarning("Only one token was stored; the other must come from settings.ini or the environment")
	}
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	name := profileArg(args)
	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove tokens", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Tokens removed for profile: " + name)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	profiles, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list stored tokens", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Stored Profiles")
	if len(profiles) == 0 {
		ui.PrintInfo("No stored tokens", "Use 'vkbackup auth login' to add them")
	}
	for _, tokens := range profiles {
		fmt.Printf("\n%s (modified %s)\n", tokens.Profile, tokens.LastModified.Format("2006-01-02 15:04:05"))
		printTokens(tokens)
	}

	fmt.Println()
	ui.PrintHighlight("Next Backup")
	cfg, err := config.Load(configFile, backupFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	source := manager.FillConfig(cfg, profile)
	if source == "" {
		source = "settings, environment or flags"
	}
	ui.PrintInfo("Settings file", cfg.Tokens.SettingsFile)
	ui.PrintInfo("Token source", source)
	if err := cfg.RequireTokens(); err != nil {
		ui.PrintWarning("Tokens incomplete", err.Error())
		return
	}
	ui.PrintSuccess("Both tokens are available")
}

func printTokens(tokens *auth.Tokens) {
	sanitized := auth.Sanitize(tokens)
	fmt.Printf("   VK token: %s\n", orNone(sanitized.VKToken))
	fmt.Printf("   Yandex.Disk token: %s\n", orNone(sanitized.YDToken))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// readPassword reads a token from stdin without echoing
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Fallback to regular input
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

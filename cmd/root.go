package cmd

import (
	"fmt"
	"os"
)

// Version is set at build time with -ldflags "-X".
var Version = "v0.1.0"

// knownSubcommands is the set of CLI subcommands that bypass the TUI.
var knownSubcommands = map[string]bool{
	"run":     true,
	"status":  true,
	"next":    true,
	"servers": true,
	"export":  true,
	"backup":  true,
	"restore": true,
	"login":   true,
	"config":  true,
	"themes":  true,
	"version": true,
	"help":    true,
}

// IsSubcommand returns true if the argument is a known CLI subcommand.
func IsSubcommand(arg string) bool {
	return knownSubcommands[arg]
}

// Execute dispatches to the appropriate CLI subcommand handler and exits
// with its status once the handler has cleaned up.
func Execute(args []string) {
	if len(args) == 0 {
		return
	}
	if code := dispatch(args); code != 0 {
		os.Exit(code)
	}
}

func dispatch(args []string) int {
	switch args[0] {
	case "run":
		return runCmd(args[1:])
	case "status":
		return statusCmd()
	case "next":
		return nextCmd()
	case "servers":
		return serversCmd()
	case "export":
		return exportCmd(args[1:])
	case "backup":
		return backupCmd(args[1:])
	case "restore":
		return restoreCmd(args[1:], os.Stdin)
	case "login":
		return loginCmd(args[1:])
	case "config":
		return configCmd(args[1:])
	case "themes":
		themesCmd()
	case "version":
		fmt.Println("speedlog " + Version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println(`speedlog - speed test dashboard client

Usage:
  speedlog                      Launch TUI dashboard
  speedlog run [--server ID]    Trigger a speed test and wait for the result
  speedlog status               Show the ping watchdog status
  speedlog next                 Show when the next scheduled test runs
  speedlog servers              List speed test servers
  speedlog export [FILE]        Export results as CSV (stdout without FILE)
  speedlog backup [FILE]        Download a database backup
  speedlog restore FILE [--yes] Replace the server database with a backup
  speedlog login <cmd>          Manage saved server logins
  speedlog config <cmd>         Manage configuration
  speedlog themes               List available themes
  speedlog version              Show version
  speedlog help                 Show this help

Login Commands:
  speedlog login list           List saved logins
  speedlog login add            Add a login (interactive)
  speedlog login remove NAME    Remove a login
  speedlog login passwd         Change the vault master password

Config Commands:
  speedlog config path          Show config directory path
  speedlog config server URL    Set the server URL
  speedlog config profile NAME  Set the login used at startup
  speedlog config theme NAME    Set default theme
  speedlog config language LANG Set display language (en, pl)
  speedlog config unit UNIT     Set speed unit (Mbps, MBps)
  speedlog config range RANGE   Set dashboard range (24h, 7d, 30d, all)

Environment:
  SPEEDLOG_SERVER, SPEEDLOG_PROFILE, SPEEDLOG_LANG, SPEEDLOG_LOG_LEVEL
  override the config file. SPEEDLOG_MASTER_KEY unlocks the login vault.`)
}

// ABOUTME: Entry point for the chatrelay server
// ABOUTME: Relays website chat to an OpenAI assistant and alerts an operator about leads

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/chatrelay/internal/auth"
	"github.com/2389/chatrelay/internal/config"
	"github.com/2389/chatrelay/internal/gateway"
)

// version is set by goreleaser at build time.
var version = "dev"

const banner = `
      _           _            _
  ___| |__   __ _| |_ _ __ ___| | __ _ _   _
 / __| '_ \ / _' | __| '__/ _ \ |/ _' | | | |
| (__| | | | (_| | |_| | |  __/ | (_| | |_| |
 \___|_| |_|\__,_|\__|_|  \___|_|\__,_|\__, |
                                       |___/
`

// getConfigPath returns the path to the config file.
// Priority: CHATRELAY_CONFIG env var > XDG_CONFIG_HOME/chatrelay/config.yaml > ~/.config/chatrelay/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CHATRELAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chatrelay", "config.yaml")
}

func usage() {
	fmt.Println("Usage: chatrelay <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                   Start the relay server")
	fmt.Println("  init                    Create a new config file interactively")
	fmt.Println("  health                  Check server health")
	fmt.Println("  hash-password [secret]  Print a bcrypt hash for viewer.password_hash")
	fmt.Println("  version                 Print the version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "health":
		err = runHealth(ctx)
	case "hash-password":
		err = runHashPassword(os.Args[2:], os.Stdin, os.Stdout)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, fromFile, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stdout)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	if fromFile {
		fmt.Printf("Config:    %s\n", configPath)
	} else {
		fmt.Printf("Config:    environment ")
		gray.Printf("(%s not found)\n", configPath)
	}
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("History:   %s", cfg.History.Backend)
	if cfg.History.Backend == "sqlite" {
		gray.Printf(" (%s)", cfg.History.Path)
	}
	fmt.Println()

	green.Print("    ▶ ")
	fmt.Printf("Leads:     ")
	switch {
	case cfg.Mail.Enabled() && cfg.Matrix.Enabled:
		fmt.Printf("mail → %s, matrix → %s\n", cfg.Mail.To, cfg.Matrix.RoomID)
	case cfg.Mail.Enabled():
		fmt.Printf("mail → %s\n", cfg.Mail.To)
	case cfg.Matrix.Enabled:
		fmt.Printf("matrix → %s\n", cfg.Matrix.RoomID)
	default:
		yellow.Println("no notification channel")
	}

	if !cfg.Viewer.Enabled() {
		yellow.Print("    ▶ ")
		fmt.Println("Viewer:    disabled (no credentials)")
	}

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting chatrelay",
		"config", configPath,
		"config_file", fromFile,
		"http_addr", cfg.Server.HTTPAddr,
		"history", cfg.History.Backend,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

// healthURL builds the local health check URL for a listen address.
// Wildcard and empty hosts are checked on localhost.
func healthURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Sprintf("http://%s/health", addr)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/health", net.JoinHostPort(host, port))
}

func runHealth(ctx context.Context) error {
	cfg, _, err := config.LoadOrDefault(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL(cfg.Server.HTTPAddr), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// runHashPassword prints a bcrypt hash of the secret given as the only
// argument, or read from the first line of in.
func runHashPassword(args []string, in io.Reader, out io.Writer) error {
	var secret string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading secret: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	case 1:
		secret = args[0]
	default:
		return fmt.Errorf("hash-password takes at most one argument")
	}

	hash, err := auth.HashPassword(secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

// ABOUTME: Entry point for the vault-gateway server
// ABOUTME: Serves the TLS vault API and provides setup and maintenance commands

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/vault-gateway/internal/auth"
	"github.com/2389/vault-gateway/internal/config"
	"github.com/2389/vault-gateway/internal/gateway"
	"github.com/2389/vault-gateway/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                  _ _                      _
 __   ____ _ _   _| | |_       __ _  __ _| |_ _____      ____ _ _   _
 \ \ / / _' | | | | | __|____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
  \ V / (_| | |_| | | ||_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
   \_/ \__,_|\__,_|_|\__|     \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                              |___/                             |___/
`

// Exit codes: 1 for generic failures, 2 when TLS material is missing so
// deploy scripts can tell misconfiguration from runtime errors.
const (
	exitFailure    = 1
	exitMissingTLS = 2
)

// getConfigPath returns the path to the gateway config file.
// Priority: VAULT_GATEWAY_CONFIG env var > XDG_CONFIG_HOME/vault-gateway/gateway.yaml > ~/.config/vault-gateway/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("VAULT_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "vault-gateway", "gateway.yaml")
}

// getDataPath returns the path to the vault-gateway data directory.
// Priority: XDG_DATA_HOME/vault-gateway > ~/.local/share/vault-gateway
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "vault-gateway")
}

func main() {
	// Local .env files carry TLS paths and the database location in dev.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: vault-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                      Start the vault server")
		fmt.Println("  init                       Create a new config file interactively")
		fmt.Println("  register --username NAME   Create a user account directly in the database")
		fmt.Println("  passwd --username NAME     Change a user's password")
		fmt.Println("  purge                      Delete expired sessions from the database")
		os.Exit(exitFailure)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "register":
		err = runRegister(ctx)
	case "passwd":
		err = runPasswd(ctx)
	case "purge":
		err = runPurge(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(exitFailure)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, gateway.ErrMissingTLSMaterial) {
			os.Exit(exitMissingTLS)
		}
		os.Exit(exitFailure)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTPS:     %s\n", cfg.Server.Addr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Server.Docroot != "" {
		green.Print("    ▶ ")
		fmt.Printf("Docroot:   %s\n", cfg.Server.Docroot)
	}

	fmt.Println()

	logger.Info("starting vault-gateway",
		"config", configPath,
		"addr", cfg.Server.Addr,
		"session_ttl", cfg.Auth.SessionTTL,
	)

	// Create and run gateway
	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// runRegister creates a user account directly in the database, bypassing
// the HTTP API. Useful for seeding the first account before the server is
// reachable.
func runRegister(ctx context.Context) error {
	username, err := parseUsernameFlag(os.Args[2:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	password := prompt(reader, "Password", "")
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	confirm := prompt(reader, "Confirm password", "")
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	existing, err := s.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}

	authService := auth.NewService(s, cfg.Auth.SessionTTL)
	if err := authService.Register(ctx, username, password); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return fmt.Errorf("username %q is already taken", username)
		}
		return fmt.Errorf("registering user: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created user: %s\n", username)
	if existing == 0 {
		fmt.Println("  First account in this database.")
	}
	return nil
}

// parseUsernameFlag extracts the --username value from subcommand args.
// Supports both "--username value" and "--username=value" formats.
func parseUsernameFlag(args []string) (string, error) {
	var username string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--username" || arg == "-u":
			if i+1 >= len(args) {
				return "", fmt.Errorf("--username requires a value")
			}
			username = args[i+1]
			i++
		case strings.HasPrefix(arg, "--username="):
			username = strings.TrimPrefix(arg, "--username=")
		case strings.HasPrefix(arg, "-u="):
			username = strings.TrimPrefix(arg, "-u=")
		case strings.HasPrefix(arg, "-"):
			return "", fmt.Errorf("unknown flag: %s", arg)
		default:
			return "", fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("--username flag is required")
	}
	return username, nil
}

// runPasswd changes a user's password after verifying the current one.
// Sessions and tokens stay valid; they are independent credentials.
func runPasswd(ctx context.Context) error {
	username, err := parseUsernameFlag(os.Args[2:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	oldPassword := prompt(reader, "Current password", "")
	newPassword := prompt(reader, "New password", "")
	if newPassword == "" {
		return fmt.Errorf("password cannot be empty")
	}
	confirm := prompt(reader, "Confirm new password", "")
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	authService := auth.NewService(s, cfg.Auth.SessionTTL)
	if err := authService.ChangePassword(ctx, username, oldPassword, newPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return fmt.Errorf("current password is incorrect")
		}
		return fmt.Errorf("changing password: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Password changed for: %s\n", username)
	return nil
}

// runPurge performs a one-shot sweep of expired sessions. The serve loop
// does this periodically; the subcommand covers stopped servers and cron.
func runPurge(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	authService := auth.NewService(s, cfg.Auth.SessionTTL)
	purged, err := authService.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("purging sessions: %w", err)
	}

	fmt.Printf("Purged %d expired session(s)\n", purged)
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("vault-gateway configuration setup")
	fmt.Println("=================================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "vault.db")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	addr := prompt(reader, "Listen address", "0.0.0.0:8443")
	certFile := prompt(reader, "TLS certificate file (PEM)", filepath.Join(defaultDataPath, "cert.pem"))
	keyFile := prompt(reader, "TLS private key file (PEM)", filepath.Join(defaultDataPath, "key.pem"))
	docroot := prompt(reader, "Static file docroot (empty to disable)", "")

	// Database
	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	// Sessions
	fmt.Println("\n--- Session Configuration ---")
	sessionTTL := prompt(reader, "Session lifetime", "1h")
	purgeInterval := prompt(reader, "Expired session sweep interval", "10m")

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# vault-gateway configuration\n")
	cfg.WriteString("# Generated by vault-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  addr: \"%s\"\n", addr))
	cfg.WriteString(fmt.Sprintf("  cert_file: \"%s\"\n", certFile))
	cfg.WriteString(fmt.Sprintf("  key_file: \"%s\"\n", keyFile))
	if docroot != "" {
		cfg.WriteString(fmt.Sprintf("  docroot: \"%s\"\n", docroot))
	}
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  session_ttl: \"%s\"\n", sessionTTL))
	cfg.WriteString(fmt.Sprintf("  purge_interval: \"%s\"\n", purgeInterval))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  vault-gateway serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apiscope/apiscope/internal/config"
	"github.com/apiscope/apiscope/internal/netlog"
	"github.com/apiscope/apiscope/internal/report"
	"github.com/apiscope/apiscope/pkg/apiscope"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Output flags
	outputFile   string
	outputFormat string
	pretty       bool
	storePath    string

	// Fetch flags
	timeout   int
	rateLimit float64
	userAgent string

	// Capture flags
	settleTime int
	headful    bool

	// Login flags
	profileName   string
	loginURL      string
	username      string
	password      string
	usernameField string
	passwordField string
	submitButton  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "apiscope",
		Short: "apiscope - API Surface Discovery Engine",
		Long: `apiscope - Discover the API surface a web page exposes.

Extracts endpoint references from markup and inline scripts, correlates
captured browser network traffic, scores candidates by confidence, detects
authentication forms, and renders the findings as JSON, CSV, or Markdown.`,
		Version: version,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [target]",
		Short: "Analyze a URL or local HTML file",
		Long: `Analyze a target and report its API surface.

The target is fetched over HTTP when it looks like a URL, otherwise it is
read as a local HTML file and analyzed in raw-content mode.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	captureCmd := &cobra.Command{
		Use:   "capture [target]",
		Short: "Capture a page with a headless browser and analyze its traffic",
		Long: `Load the target in headless Chrome, record its network traffic, then
analyze the rendered markup together with the captured trace. Supports
form login for gated targets via --profile or explicit login flags.`,
		Args: cobra.ExactArgs(1),
		RunE: runCapture,
	}

	traceCmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Analyze a saved network trace",
		Long: `Analyze a performance-log trace file: one JSON event per line, in the
Chrome DevTools Network domain format. Corrupt lines are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runTrace,
	}

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in gated platform profiles",
		RunE:  runProfiles,
	}

	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "List reports saved in the store",
		RunE:  runReports,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	for _, cmd := range []*cobra.Command{analyzeCmd, captureCmd, traceCmd} {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
		cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, markdown)")
		cmd.Flags().BoolVar(&pretty, "pretty", true, "Pretty-print JSON output")
		cmd.Flags().StringVar(&storePath, "store", "", "Persist the report in a store at this path")
	}

	analyzeCmd.Flags().IntVarP(&timeout, "timeout", "t", 30, "Request timeout in seconds")
	analyzeCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 10, "Requests per second")
	analyzeCmd.Flags().StringVar(&userAgent, "user-agent", "", "User agent override")

	captureCmd.Flags().IntVarP(&timeout, "timeout", "t", 60, "Capture timeout in seconds")
	captureCmd.Flags().IntVar(&settleTime, "settle", 5, "Seconds to wait for post-load traffic")
	captureCmd.Flags().BoolVar(&headful, "headful", false, "Run the browser with a visible window")
	captureCmd.Flags().StringVar(&profileName, "profile", "", "Built-in login profile (see 'apiscope profiles')")
	captureCmd.Flags().StringVar(&loginURL, "login-url", "", "Login page URL for form authentication")
	captureCmd.Flags().StringVarP(&username, "username", "u", "", "Username for authentication")
	captureCmd.Flags().StringVarP(&password, "password", "p", "", "Password for authentication")
	captureCmd.Flags().StringVar(&usernameField, "username-field", "", "Username input name attribute")
	captureCmd.Flags().StringVar(&passwordField, "password-field", "", "Password input name attribute")
	captureCmd.Flags().StringVar(&submitButton, "submit-button", "", "Submit button CSS selector")

	reportsCmd.Flags().StringVar(&storePath, "store", "apiscope.db", "Report store path")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(reportsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig assembles the engine configuration from the config file
// and command-line flags; flags take precedence.
func buildConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		fileConfig, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg = fileConfig
	}

	cfg.Target = target
	cfg.Verbose = verbose
	cfg.Debug = debug

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimit.RequestsPerSecond = rateLimit
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if cmd.Flags().Changed("settle") {
		cfg.Capture.SettleTime = time.Duration(settleTime) * time.Second
	}
	if headful {
		cfg.Capture.Headless = false
	}
	if cmd.Flags().Changed("timeout") && cmd.Name() == "capture" {
		cfg.Capture.Timeout = time.Duration(timeout) * time.Second
	}

	if profileName != "" {
		cfg.Login.Profile = profileName
	}
	if loginURL != "" {
		cfg.Login.LoginURL = loginURL
	}
	if username != "" {
		cfg.Login.Username = username
	}
	if password != "" {
		cfg.Login.Password = password
	}
	if usernameField != "" {
		cfg.Login.UsernameField = usernameField
	}
	if passwordField != "" {
		cfg.Login.PasswordField = passwordField
	}
	if submitButton != "" {
		cfg.Login.SubmitButton = submitButton
	}

	if storePath != "" {
		cfg.Store.Enabled = true
		cfg.Store.Path = storePath
	}

	if outputFormat != "" {
		if err := report.ValidateFormat(outputFormat); err != nil {
			return nil, err
		}
		cfg.Output.Format = outputFormat
	}
	cfg.Output.Pretty = pretty
	cfg.Output.FilePath = outputFile

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	target := args[0]

	cfg, err := buildConfig(cmd, target)
	if err != nil {
		return err
	}

	engine, err := apiscope.New(apiscope.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var result *apiscope.Result
	if isURL(target) {
		result, err = engine.AnalyzeURL(ctx, target)
	} else {
		data, readErr := os.ReadFile(target)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", target, readErr)
		}
		result, err = engine.AnalyzeContent(string(data), target)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return finishRun(engine, cfg, result)
}

func runCapture(cmd *cobra.Command, args []string) error {
	target := args[0]
	if !isURL(target) {
		return fmt.Errorf("capture requires an http(s) URL, got %q", target)
	}

	cfg, err := buildConfig(cmd, target)
	if err != nil {
		return err
	}
	cfg.Capture.Enabled = true

	engine, err := apiscope.New(apiscope.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	ctx, cancel := signalContext()
	defer cancel()

	result, err := engine.CaptureURL(ctx, target)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	return finishRun(engine, cfg, result)
}

func runTrace(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := buildConfig(cmd, path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	events := netlog.ParseEntries(lines)
	if len(events) == 0 {
		return fmt.Errorf("no recognizable network events in %s", path)
	}

	engine, err := apiscope.New(apiscope.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	result := engine.AnalyzeTrace(events, path)
	return finishRun(engine, cfg, result)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	for _, name := range config.ProfileNames() {
		profile, _ := config.LookupProfile(name)
		fmt.Printf("%-14s %s\n", name, profile.Description)
		if profile.LoginURL != "" {
			fmt.Printf("%-14s login: %s (user field: %s, password field: %s)\n",
				"", profile.LoginURL, profile.UsernameField, profile.PasswordField)
		}
		fmt.Printf("%-14s %s\n\n", "", profile.Notes)
	}
	return nil
}

func runReports(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Target = "-"
	cfg.Store.Enabled = true
	cfg.Store.Path = storePath

	engine, err := apiscope.New(apiscope.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	metas, err := engine.SavedReports()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No saved reports")
		return nil
	}
	for _, meta := range metas {
		fmt.Printf("%s  %s  %s\n", meta.CreatedAt.Format(time.RFC3339), meta.Target, meta.Key)
	}
	return nil
}

// finishRun writes the report and persists it when a store is enabled.
func finishRun(engine *apiscope.Engine, cfg *config.Config, result *apiscope.Result) error {
	var out io.Writer = os.Stdout
	if cfg.Output.FilePath != "" {
		f, err := os.Create(cfg.Output.FilePath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer := report.NewWriter(out, report.Config{
		Format: cfg.Output.Format,
		Pretty: cfg.Output.Pretty,
	})
	if err := writer.WriteDocument(result.Document()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	if cfg.Store.Enabled {
		key, err := engine.Save(result)
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report saved as %s\n", key)
	}

	printSummary(result)
	return nil
}

// printSummary writes a short human summary to stderr so it never
// pollutes machine-readable output on stdout.
func printSummary(result *apiscope.Result) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Endpoints:       %d\n", len(result.Endpoints))
	fmt.Fprintf(os.Stderr, "Forms:           %d\n", len(result.Forms))
	fmt.Fprintf(os.Stderr, "Script calls:    %d\n", len(result.ScriptCalls))
	fmt.Fprintf(os.Stderr, "Network records: %d\n", len(result.NetworkRecords))
	if result.Analysis != nil {
		fmt.Fprintf(os.Stderr, "Patterns:        %d\n", len(result.Analysis.Patterns))
		fmt.Fprintf(os.Stderr, "Concerns:        %d\n", len(result.Analysis.SecurityConcerns))
	}
	if result.Access != nil && result.Access.AuthRequired {
		fmt.Fprintln(os.Stderr, "Access:          authentication required")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
		cancel()
	}()

	return ctx, cancel
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

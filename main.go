// Package main provides the entry point for the readaloud CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
	"github.com/dgnsrekt/readaloud/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	markdownExts = []string{".md", ".markdown", ".mdown", ".mkdn", ".mkd", ".mdwn"}

	configFile    string
	fromClipboard bool
	plain         bool
	raw           bool
	watch         bool
	mouse         bool
	width         uint
	metricsAddr   string
	debug         bool

	rootCmd = &cobra.Command{
		Use:   "readaloud [FILE|-]",
		Short: "Read text aloud in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nRead text and markdown %s, highlighting every word as it is spoken.", keyword("aloud")),
		),
		Example:          paragraph("readaloud README.md\ncat notes.txt | readaloud --plain\nreadaloud --clipboard --rate 1.25"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOptions()
		},
		RunE: execute,
	}
)

func validateOptions() error {
	// grab config values from Viper
	plain = viper.GetBool("plain")
	mouse = viper.GetBool("mouse")
	width = viper.GetUint("width")
	debug = viper.GetBool("debug")

	tts.InitializeLogging(debug)

	if fromClipboard && watch {
		return errors.New("cannot watch the clipboard")
	}
	if plain && watch {
		return errors.New("cannot use watch mode with plain output")
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func isMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range markdownExts {
		if ext == v {
			return true
		}
	}
	return false
}

// loadDocument finds the text to read: the clipboard, stdin or a file.
func loadDocument(args []string) (ui.Document, error) {
	switch {
	case fromClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return ui.Document{}, fmt.Errorf("unable to read clipboard: %w", err)
		}
		return ui.NewDocument("", text, !raw), nil

	case len(args) == 1 && args[0] != "-":
		return ui.LoadDocument(args[0], !raw && isMarkdownFile(args[0]))
	}

	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if len(args) == 0 {
		yes, err := stdinIsPipe()
		if err != nil {
			return ui.Document{}, err
		}
		if !yes {
			return ui.Document{}, errors.New("nothing to read: pass a file, pipe text or use --clipboard")
		}
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ui.Document{}, fmt.Errorf("unable to read from stdin: %w", err)
	}
	return ui.NewDocument("", string(b), !raw), nil
}

func execute(_ *cobra.Command, args []string) error {
	doc, err := loadDocument(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return errors.New("nothing to read")
	}

	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Destroy()

	if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := runPlain(ctx, provider, doc, os.Stdout, cfg.HighlightColor)
		if err != nil && !tts.IsRecoverableError(err) {
			log.Error("Speech engine is unavailable, run `readaloud voices` to list installed voices", "engine", cfg.Engine)
		}
		return err
	}
	return runTUI(provider, doc, cfg)
}

// newProvider wires the configured engine, voice and metrics into a session
// provider.
func newProvider(cfg tts.Config) (*tts.Provider, error) {
	logger := log.Default().WithPrefix("tts")

	factory, err := engines.NewFactory(cfg, logger)
	if err != nil {
		return nil, err
	}
	voice, err := cfg.Voice()
	if err != nil {
		return nil, err
	}

	opts := []tts.Option{tts.WithLogger(logger), tts.WithVoice(voice)}
	if metricsAddr != "" {
		metrics := tts.NewMetrics()
		serveMetrics(metricsAddr, metrics)
		opts = append(opts, tts.WithMetrics(metrics))
	}
	return tts.NewProvider(factory, opts...), nil
}

func serveMetrics(addr string, metrics *tts.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Debug("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "err", err)
		}
	}()
}

func runTUI(provider *tts.Provider, doc ui.Document, ttsCfg tts.Config) error {
	// Read environment to get UI settings
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	if _, ok := os.LookupEnv("READALOUD_HIGHLIGHT_COLOR"); !ok {
		cfg.HighlightColor = ttsCfg.HighlightColor
	}
	if width > 0 {
		cfg.Width = width
	}
	cfg.EnableMouse = cfg.EnableMouse || mouse
	cfg.Watch = watch

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, provider, doc).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs")
	flags.StringP("engine", "e", "", "speech engine (mock, piper)")
	flags.StringP("lang", "l", "", "voice language, e.g. en-US (default from the system locale)")
	flags.Float64("pitch", tts.DefaultPitchAndRate, "voice pitch multiplier")
	flags.Float64P("rate", "r", tts.DefaultPitchAndRate, "speech rate multiplier")
	flags.BoolVarP(&fromClipboard, "clipboard", "c", false, "read the clipboard")
	flags.BoolVarP(&plain, "plain", "p", false, "print words as they are spoken instead of running the TUI")
	flags.BoolVar(&raw, "raw", false, "speak markdown sources as is")
	flags.BoolVarP(&watch, "watch", "w", false, "start over when the file changes (TUI-mode only)")
	flags.UintVar(&width, "width", 0, "word-wrap at width (set to 0 to use the terminal width)")
	flags.BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = flags.MarkHidden("mouse")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	// Config bindings
	_ = viper.BindPFlag("tts.engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("tts.language", flags.Lookup("lang"))
	_ = viper.BindPFlag("tts.pitch", flags.Lookup("pitch"))
	_ = viper.BindPFlag("tts.rate", flags.Lookup("rate"))
	_ = viper.BindPFlag("plain", flags.Lookup("plain"))
	_ = viper.BindPFlag("width", flags.Lookup("width"))
	_ = viper.BindPFlag("mouse", flags.Lookup("mouse"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("width", 0)
	tts.SetDefaults()

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "readaloud")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "readaloud")}, dirs...)
	}

	if c := os.Getenv("READALOUD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readaloud")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("readaloud")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "readaloud.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

// Package main provides the entry point for the utter CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/utter/pkg/tts"
	"github.com/dgnsrekt/utter/pkg/tts/engines"
	"github.com/dgnsrekt/utter/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	markdownExtensions = []string{".md", ".mdown", ".mkdn", ".mkd", ".markdown"}

	configFile string
	engineID   string
	speed      float64
	language   string
	voice      string
	filePath   string
	debug      bool

	dataDir           string
	piperBinary       string
	requestsPerMinute int
	cacheAudio        bool

	rootCmd = &cobra.Command{
		Use:   "utter [text]",
		Short: "Speak text from the command line",
		Long: paragraph(
			fmt.Sprintf("\nRead text %s, straight from the command line.", keyword("out loud")),
		),
		Example:          "utter \"dinner is ready\"\nutter -f notes.md\nfortune | utter",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOptions()
		},
		RunE: execute,
	}
)

func validateOptions() error {
	// grab config values from Viper
	engineID = viper.GetString("engine")
	speed = viper.GetFloat64("speed")
	language = viper.GetString("language")
	voice = viper.GetString("voice")
	dataDir = viper.GetString("data_dir")
	piperBinary = viper.GetString("piper_binary")
	requestsPerMinute = viper.GetInt("requests_per_minute")
	cacheAudio = viper.GetBool("cache_audio")
	debug = viper.GetBool("debug")

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if !tts.ValidSpeed(speed) {
		return fmt.Errorf("speed %.2f is out of range (%.1f to %.1f)", speed, tts.MinSpeed, tts.MaxSpeed)
	}

	// accept names like "german" as well as tags like "de"
	if language != "" {
		resolved, err := tts.ResolveLanguage(language)
		if err != nil {
			return err
		}
		language = resolved
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

func execute(_ *cobra.Command, args []string) error {
	// an explicit file wins over everything else
	if filePath != "" {
		return speakFile(filePath)
	}

	// if stdin is a pipe then speak from stdin. note that you can also
	// explicitly use a - to read from stdin.
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes {
		return speakReader(os.Stdin, true)
	}
	if len(args) == 1 && args[0] == "-" {
		return speakReader(os.Stdin, true)
	}

	if len(args) > 0 {
		return speakText(strings.Join(args, " "))
	}

	// no input and an interactive terminal: run the TUI
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return runTUI()
	}
	return errors.New("no text to speak")
}

func speakFile(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("unable to expand path: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return speakReader(f, isMarkdownFile(path))
}

func isMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range markdownExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// speakReader reads everything from r and speaks it. Markdown input is
// flattened to plain speakable text first.
func speakReader(r io.Reader, markdown bool) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read from reader: %w", err)
	}
	text := string(b)
	if markdown {
		text = tts.SpeakableText(b)
	}
	return speakText(text)
}

func speakText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return tts.ErrEmptyText
	}

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Stop()

	// ctrl-c interrupts playback instead of tearing the process down
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results, err := manager.Play(ctx, text, cfg.Speed, cfg.Language)
	if err != nil {
		return playbackHint(err)
	}
	res := <-results
	if res.Err != nil && !errors.Is(res.Err, tts.ErrCancelled) {
		return playbackHint(res.Err)
	}
	return nil
}

// playbackHint decorates readiness errors with the command that fixes them.
func playbackHint(err error) error {
	switch {
	case errors.Is(err, tts.ErrAssetMissing):
		return fmt.Errorf("%w\n\nRun %s to fetch the configured voice", err, keyword("utter download"))
	case errors.Is(err, tts.ErrEngineUnavailable):
		return fmt.Errorf("%w\n\nRun %s to see what each engine needs", err, keyword("utter engines"))
	default:
		return err
	}
}

// currentConfig assembles the effective settings: environment first, then
// everything already resolved through flags and the config file.
func currentConfig() (tts.Config, error) {
	cfg, err := env.ParseAs[tts.Config]()
	if err != nil {
		return cfg, fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Engine = engineID
	cfg.Speed = speed
	cfg.Language = language
	cfg.Voice = voice
	cfg.DataDir = dataDir
	cfg.PiperBinary = piperBinary
	cfg.RequestsPerMinute = requestsPerMinute
	cfg.CacheAudio = cacheAudio
	cfg.Debug = debug
	return cfg, nil
}

// buildManager wires the voice store, the cache, and both engines. Piper
// comes first so a working offline setup is preferred when no engine is
// pinned.
func buildManager(cfg tts.Config) (*tts.Manager, error) {
	voiceDir := cfg.DataDir
	if voiceDir == "" {
		dir, err := gap.NewScope(gap.User, "utter").DataPath("voices")
		if err != nil {
			home, herr := homedir.Dir()
			if herr != nil {
				return nil, fmt.Errorf("could not find a data directory: %w", err)
			}
			dir = filepath.Join(home, ".utter", "voices")
		}
		voiceDir = dir
	}

	store := tts.NewVoiceStore(voiceDir, cfg.Voice)

	var cache *tts.AudioCache
	if cfg.CacheAudio {
		cache = tts.NewAudioCache(tts.DefaultCacheLimit)
	}

	manager := tts.NewManager(store,
		engines.NewPiper(engines.PiperConfig{
			Binary: cfg.PiperBinary,
			Store:  store,
			Cache:  cache,
		}),
		engines.NewGoogle(engines.GoogleConfig{
			RequestsPerMinute: cfg.RequestsPerMinute,
			Cache:             cache,
		}),
	)
	if cfg.Engine != "" {
		if err := manager.SelectEngine(cfg.Engine); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

func runTUI() error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Stop()

	// keep stderr logging from bleeding into the alt screen
	if os.Getenv("UTTER_LOGFILE") == "" {
		log.SetOutput(io.Discard)
	}

	if _, err := ui.NewProgram(cfg, manager).Run(); err != nil {
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

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&engineID, "engine", "e", "", "speech engine (piper/gtts)")
	rootCmd.Flags().Float64VarP(&speed, "speed", "s", tts.DefaultSpeed, "speech rate, from 0.5 to 2.0")
	rootCmd.Flags().StringVarP(&language, "language", "l", tts.DefaultLanguage, "language tag or name for the online engine")
	rootCmd.Flags().StringVar(&voice, "voice", tts.DefaultVoice, "offline voice model name")
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "speak the contents of a file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose logging")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("language", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))

	viper.SetDefault("engine", "")
	viper.SetDefault("speed", tts.DefaultSpeed)
	viper.SetDefault("language", tts.DefaultLanguage)
	viper.SetDefault("voice", tts.DefaultVoice)
	viper.SetDefault("data_dir", "")
	viper.SetDefault("piper_binary", "piper")
	viper.SetDefault("requests_per_minute", 30)
	viper.SetDefault("cache_audio", true)
	viper.SetDefault("debug", false)

	rootCmd.AddCommand(configCmd, enginesCmd, downloadCmd, languagesCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "utter")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "utter")}, dirs...)
	}

	if c := os.Getenv("UTTER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("utter")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("utter")
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
		configFile = filepath.Join(dirs[0], "utter.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"threadpack/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// envKeys lists every config key; each maps to THREADPACK_<KEY> with dots as underscores.
var envKeys = []string{
	"app.log_level",
	"evidence.k",
	"evidence.output_dir",
	"evidence.summary_title",
	"pack.top_n",
	"pack.title",
	"pack.xlsx",
	"pack.charts",
	"pack.webp_quality",
	"topics.file",
	"openai.api_key",
	"openai.model",
	"openai.base_url",
	"openai.language",
}

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "threadpack",
	Short: "Threadpack CLI",
	Long:  "Build query-specific evidence packs and analytics packs from discussion thread corpora.",
	// errors are printed once by main
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	v := viper.GetViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/threadpack")
		v.AddConfigPath("configs")
	}
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	setupLogging(appCfg.App.LogLevel)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("THREADPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
}

func setupLogging(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", level)
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}

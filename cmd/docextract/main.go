// Package main is the entry point for the docextract CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/docextract/internal/common"
)

// version is set at build time via ldflags.
var version = "dev"

// viperKey is the flag annotation naming the config key a flag overrides.
const viperKey = "viper_key"

// app carries the loaded configuration and logger into subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *common.Config
	logger  *slog.Logger
	stderr  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "docextract",
		Short: "Extract, validate and deduplicate business documents",
		Long: `docextract reads a directory of PDF and text documents, pulls business fields
(vendor, client, invoice number, dates, amounts, currency) out of each one, normalizes
and validates them, removes duplicates, and writes records plus a validation report
as JSON, YAML or Excel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./docextract.yaml or ~/.config/docextract/docextract.yaml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().String("log-format", "", "log format: json or text")
	bindKey(root.PersistentFlags(), "log-format", "log.format")

	root.AddCommand(
		newProcessCmd(a),
		newWatchCmd(a),
		newRecordsCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root
}

// bindKey annotates a flag so load() binds it onto key.
func bindKey(fs *pflag.FlagSet, flag, key string) {
	_ = fs.SetAnnotation(flag, viperKey, []string{key})
}

// load reads the config file and env, applies the executing command's flags, and installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("docextract")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "docextract"))
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return common.NewAppError(common.CodeConfig, "read config file", err)
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys, ok := f.Annotations[viperKey]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return common.NewAppError(common.CodeConfig, "bind flags", bindErr)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		a.v.Set("log.level", "debug")
	}

	cfg, err := common.LoadConfig(a.v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg.Log)
	slog.SetDefault(a.logger)
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config.loaded", "file", used)
	}
	return nil
}

func newLogger(w io.Writer, c common.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if _, werr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); werr != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

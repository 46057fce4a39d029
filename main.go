// Package main is the entry point for the docconv document conversion service.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/friendsonlinesolution/file-converter-backend1/config"
	"github.com/friendsonlinesolution/file-converter-backend1/converters"
	"github.com/friendsonlinesolution/file-converter-backend1/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docconv",
	Short: "Convert documents between Word, PDF and JPEG",
	Long: `docconv converts single uploaded documents between formats: Word to PDF,
PDF to Word, JPEG to PDF and PDF to JPEG. Run "docconv serve" for the HTTP API
or "docconv convert" for a one-off local conversion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docconv.yaml)")
}

// loadConfig reads settings for the running command and builds its logger.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), nil
}

func converterOptions(cfg *config.Config) converters.Options {
	return converters.Options{
		PDFToJPEGEnabled: cfg.PDFToJPEGEnabled,
		RasterDPI:        cfg.RasterDPI,
		RasterPages:      cfg.RasterPages,
		JPEGQuality:      cfg.JPEGQuality,
		SofficePath:      cfg.SofficePath,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsonlinesolution/file-converter-backend1/converters"
	"github.com/friendsonlinesolution/file-converter-backend1/models"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert one local file",
	Long: `Convert runs a single conversion on a local file with the same validation
and codecs as the HTTP API. The result is written next to the input under the
derived name unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("type", "", "conversion type: "+conversionTypeList())
	convertCmd.Flags().String("out", "", "output path (default: derived from the input name)")
	_ = convertCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(convertCmd)
}

func conversionTypeList() string {
	names := make([]string, 0, len(models.AllConversionTypes()))
	for _, ct := range models.AllConversionTypes() {
		names = append(names, string(ct))
	}
	return strings.Join(names, ", ")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	typeFlag, _ := cmd.Flags().GetString("type")
	out, _ := cmd.Flags().GetString("out")
	input := args[0]

	ct, err := models.ParseConversionType(typeFlag)
	if err != nil {
		return err
	}
	if err := models.ValidateExtension(input, ct); err != nil {
		return err
	}

	conv := converters.New(converterOptions(cfg))
	if !conv.Enabled(ct) {
		return fmt.Errorf("%w: %s conversion is currently disabled", models.ErrFeatureDisabled, ct.Label())
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrMissingFile, err)
	}

	ctx := log.WithContext(cmd.Context())
	result, err := conv.Convert(ctx, models.ConversionRequest{
		File: models.UploadedFile{Path: input, OriginalName: filepath.Base(input), SizeBytes: info.Size()},
		Type: ct,
	})
	if err != nil {
		return fmt.Errorf("conversion error: %w", err)
	}

	if out == "" {
		out = filepath.Join(filepath.Dir(input), result.Filename)
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", input, out, len(result.Data))
	return nil
}

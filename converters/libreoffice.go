package converters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

var sofficeCandidates = []string{
	"/opt/homebrew/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	"/usr/bin/libreoffice",
	"/usr/bin/soffice",
}

// FindSoffice returns configured if set, otherwise the first LibreOffice
// binary found in the usual install locations or on PATH. An empty result
// means legacy .doc uploads cannot be converted.
func FindSoffice(configured string) string {
	if configured != "" {
		return configured
	}
	for _, p := range sofficeCandidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p, err := exec.LookPath("soffice"); err == nil {
		return p
	}
	return ""
}

// LegacyDocToDOCX upgrades a Word 97-2003 file with headless LibreOffice.
func LegacyDocToDOCX(ctx context.Context, sofficePath string, data []byte) ([]byte, error) {
	if sofficePath == "" {
		return nil, fmt.Errorf("%w: LibreOffice not available", ErrLegacyDoc)
	}

	workDir, err := os.MkdirTemp("", "docconv-soffice-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "input.doc")
	if err := os.WriteFile(inputPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing input: %w", err)
	}

	// A private profile dir avoids lock contention between parallel instances.
	userInstallDir := filepath.Join(workDir, "soffice_user")
	if err := os.MkdirAll(userInstallDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating user installation directory: %w", err)
	}

	args := []string{
		"-env:UserInstallation=file://" + userInstallDir,
		"--headless",
		"--convert-to", "docx",
		"--outdir", workDir,
		inputPath,
	}

	log := zerolog.Ctx(ctx)
	log.Debug().Str("soffice", sofficePath).Strs("args", args).Msg("running LibreOffice")

	cmd := exec.CommandContext(ctx, sofficePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn().Err(err).Bytes("output", output).Msg("LibreOffice failed")
		return nil, fmt.Errorf("LibreOffice failed: %w, output: %s", err, output)
	}

	out, err := os.ReadFile(filepath.Join(workDir, "input.docx"))
	if err != nil {
		return nil, fmt.Errorf("conversion succeeded but no output file found in %s: %w", workDir, err)
	}
	return out, nil
}

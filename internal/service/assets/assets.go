package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/oshokin/msix-gen/internal/logger"
)

const (
	// AssetsDirName is the package-relative directory holding staged logos.
	AssetsDirName = "msix_assets"

	// SmallLogoFilename is the expected 44x44 icon filename.
	SmallLogoFilename = "logo_44x44.png"

	// LargeLogoFilename is the expected 150x150 icon filename.
	LargeLogoFilename = "logo_150x150.png"

	// stagedDirMode is the permission for the created assets directory.
	stagedDirMode os.FileMode = 0o755

	// stagedFileMode is the permission for copied logo files.
	stagedFileMode os.FileMode = 0o644
)

// StagedLogos holds the package-relative references to both copied logos.
// Paths use forward slashes so the emitted XML is identical across build hosts.
type StagedLogos struct {
	// Square44x44 references the staged small icon.
	Square44x44 string
	// Square150x150 references the staged large icon.
	Square150x150 string
}

// Stage verifies the logo source directory, copies both expected files
// into <destDir>/msix_assets (creating it if absent, overwriting silently)
// and returns their package-relative paths.
func Stage(ctx context.Context, logoDir, destDir string) (*StagedLogos, error) {
	info, err := os.Stat(logoDir)
	if err != nil {
		return nil, fmt.Errorf("logo directory not found: %s: %w", logoDir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("logo directory is not a directory: %s", logoDir)
	}

	stagedDir := filepath.Join(destDir, AssetsDirName)
	if err = os.MkdirAll(stagedDir, stagedDirMode); err != nil {
		return nil, fmt.Errorf("create assets directory: %w", err)
	}

	staged := &StagedLogos{}

	for _, logo := range []struct {
		name string
		ref  *string
	}{
		{SmallLogoFilename, &staged.Square44x44},
		{LargeLogoFilename, &staged.Square150x150},
	} {
		source := filepath.Join(logoDir, logo.name)
		if _, err = os.Stat(source); err != nil {
			return nil, fmt.Errorf("expected logo file not found: %s: %w", source, err)
		}

		if err = copyFile(source, filepath.Join(stagedDir, logo.name)); err != nil {
			return nil, fmt.Errorf("copy %s: %w", logo.name, err)
		}

		*logo.ref = path.Join(AssetsDirName, logo.name)
	}

	logger.InfoKV(ctx, "Staged logo assets", "dir", stagedDir)

	return staged, nil
}

// copyFile copies source to destination, truncating any existing file.
func copyFile(source, destination string) error {
	in, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	// Best-effort cleanup.
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(destination), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, stagedFileMode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}

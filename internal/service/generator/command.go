package generator

import (
	"context"
	"fmt"
	"os"

	"github.com/oshokin/msix-gen/internal/config"
	"github.com/oshokin/msix-gen/internal/logger"
	"github.com/oshokin/msix-gen/internal/manifest"
	"github.com/oshokin/msix-gen/internal/service/assets"
	"github.com/oshokin/msix-gen/internal/service/certstore"
	"github.com/oshokin/msix-gen/internal/service/emitter"
)

// Options contains inputs for the generator entry point.
type Options struct {
	// DestinationDir is where generated files are placed. Must pre-exist.
	DestinationDir string
	// AppVersion is the version stamped onto the manifest and installer.
	AppVersion string
	// ManifestPath is the JSON input document to build from.
	ManifestPath string
	// LogoDir contains the logo files staged into the package.
	LogoDir string
	// CertSubject is an explicit signing certificate subject; when set,
	// the certificate store is not queried.
	CertSubject string
	// CertPath overrides the store location searched for a certificate.
	CertPath string
	// SkipManifest disables AppxManifest generation.
	SkipManifest bool
	// GenInstaller enables AppInstaller descriptor generation.
	GenInstaller bool
	// ConfigPath is an optional path to the tool settings YAML.
	ConfigPath string

	// Store overrides the certificate store, used by tests.
	// When nil, a PowerShell-backed store is used.
	Store certstore.Store
}

// Run executes the generation workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "msix-gen")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = ensureDirectory(opts.DestinationDir); err != nil {
		return err
	}

	doc, err := manifest.LoadDocument(opts.ManifestPath)
	if err != nil {
		return err
	}

	app, err := manifest.NewApplication(doc, opts.AppVersion)
	if err != nil {
		return fmt.Errorf("build application identity: %w", err)
	}

	if app.Logo.BackgroundColor == "" {
		app.Logo.BackgroundColor = cfg.DefaultBackgroundColor
	}

	logger.Info(ctx, "Generating MSIX files")

	app.Publisher, err = resolvePublisher(ctx, opts, cfg)
	if err != nil {
		return fmt.Errorf("resolve certificate subject: %w", err)
	}

	staged, err := assets.Stage(ctx, opts.LogoDir, opts.DestinationDir)
	if err != nil {
		return fmt.Errorf("stage assets: %w", err)
	}

	app.Logo.Square44x44 = staged.Square44x44
	app.Logo.Square150x150 = staged.Square150x150

	if !opts.SkipManifest {
		if err = emitter.WriteAppxManifest(ctx, app, opts.DestinationDir); err != nil {
			return err
		}
	}

	if opts.GenInstaller {
		var ins *manifest.Installer

		ins, err = manifest.NewInstaller(doc)
		if err != nil {
			return fmt.Errorf("build installer policy: %w", err)
		}

		if err = emitter.WriteAppInstaller(ctx, app, ins, opts.DestinationDir, cfg.PadLimit); err != nil {
			return err
		}
	}

	logger.Info(ctx, "Completed successfully")

	return nil
}

// resolvePublisher picks the certificate subject: explicit flag, then the
// store (flag path, then settings path, then the machine-wide default).
func resolvePublisher(ctx context.Context, opts *Options, cfg *config.Settings) (string, error) {
	store := opts.Store
	if store == nil {
		storePath := cfg.CertStorePath
		if opts.CertPath != "" {
			storePath = opts.CertPath
		}

		store = certstore.NewPowerShellStore(storePath)
	}

	return certstore.Resolve(ctx, opts.CertSubject, store)
}

// ensureDirectory verifies the destination exists and is a directory.
func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("destination directory not found: %s: %w", path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("destination is not a directory: %s", path)
	}

	return nil
}

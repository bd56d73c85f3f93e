package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/msix-gen/internal/logger"
	"github.com/oshokin/msix-gen/internal/service/generator"
	"github.com/oshokin/msix-gen/internal/version"
)

var (
	// opts collects pipeline inputs from flags and the positional argument.
	opts generator.Options

	// logLevel is the minimum level for console output.
	logLevel string

	// rootCmd represents the base command generating MSIX packaging files.
	rootCmd = &cobra.Command{
		Use:   "msix-gen [destination-dir]",
		Short: "Generate AppxManifest and AppInstaller files from a JSON manifest",
		Long: "msix-gen converts a JSON application manifest and a pair of logo assets " +
			"into the AppxManifest.xml required to package a desktop application as MSIX " +
			"and, optionally, an AppInstaller descriptor for hosted self-updating installs. " +
			"The manifest Publisher is resolved from the local certificate store unless " +
			"--cert-subject is provided.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(lvl)
			}

			opts.DestinationDir = args[0]

			return generator.Run(ctx, &opts)
		},
	}
)

// Execute runs the msix-gen CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVar(&opts.AppVersion, "app-version", "", "version of the application to be packaged")
	flags.StringVar(&opts.ManifestPath, "manifest", "", "manifest JSON file to build the documents from")
	flags.StringVar(&opts.LogoDir, "logo-dir", "", "directory containing the logos for the MSIX package")
	flags.StringVar(&opts.CertSubject, "cert-subject", "",
		"code signing certificate subject; when omitted, the certificate store is searched")
	flags.StringVar(&opts.CertPath, "cert-path", "",
		"certificate store location to search when --cert-subject is absent")
	flags.BoolVar(&opts.SkipManifest, "no-manifest", false, "do not generate an AppxManifest XML file")
	flags.BoolVar(&opts.GenInstaller, "gen-installer", false, "generate an AppInstaller XML file")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to tool settings file")
	flags.StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")

	for _, required := range []string{"app-version", "manifest", "logo-dir"} {
		if err := rootCmd.MarkFlagRequired(required); err != nil {
			panic(err)
		}
	}
}

// Package generator runs the msix-gen pipeline: load the manifest JSON,
// resolve the signing certificate subject, stage logo assets, then emit
// the AppxManifest and optionally the padded AppInstaller descriptor.
//
// Every failure is fatal to the run. The tool is a one-shot build step;
// retrying is the calling pipeline's job.
package generator

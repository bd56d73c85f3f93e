// Package manifest parses the JSON application manifest supplied to
// msix-gen and exposes the immutable domain values consumed by the
// emitters: the application identity with its visual assets and the
// optional AppInstaller update policy.
package manifest

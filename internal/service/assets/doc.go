// Package assets stages the logo files required by the package manifest
// into the package-relative msix_assets directory.
package assets

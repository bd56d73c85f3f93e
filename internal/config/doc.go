// Package config defines tool settings shared between invocations and
// provides helpers to load, validate and save them in YAML format.
//
// The Settings type holds the certificate store path and the
// AppInstaller padding limit. Command-line flags override file values.
package config

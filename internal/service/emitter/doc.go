// Package emitter builds and writes the two XML documents msix-gen
// produces: the AppxManifest describing the package and the optional
// AppInstaller descriptor enabling hosted self-updating installs.
//
// The AppInstaller file is padded to a fixed byte size after writing,
// working around a Delivery Optimization bug where only the byte range
// fetched on a prior request is re-served, truncating grown documents.
package emitter

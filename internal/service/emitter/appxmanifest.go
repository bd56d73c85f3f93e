package emitter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/oshokin/msix-gen/internal/logger"
	"github.com/oshokin/msix-gen/internal/manifest"
)

const (
	// ManifestFilename is the fixed output name of the package manifest.
	ManifestFilename = "AppxManifest.xml"

	// xmlDeclaration matches the declaration emitted for both documents.
	xmlDeclaration = `version="1.0" encoding="utf-8"`

	// indentSpaces is the indentation width of emitted XML.
	indentSpaces = 2

	// AppxManifest schema namespaces.
	nsFoundation             = "http://schemas.microsoft.com/appx/manifest/foundation/windows10"
	nsUap                    = "http://schemas.microsoft.com/appx/manifest/uap/windows10"
	nsUap10                  = "http://schemas.microsoft.com/appx/manifest/uap/windows10/10"
	nsUap13                  = "http://schemas.microsoft.com/appx/manifest/uap/windows10/13"
	nsRestrictedCapabilities = "http://schemas.microsoft.com/appx/manifest/foundation/windows10/restrictedcapabilities"
)

// BuildAppxManifest assembles the package manifest document for the
// provided application.
func BuildAppxManifest(app *manifest.Application) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)

	pkg := doc.CreateElement("Package")
	pkg.CreateAttr("xmlns", nsFoundation)
	pkg.CreateAttr("xmlns:uap", nsUap)
	pkg.CreateAttr("xmlns:uap10", nsUap10)
	pkg.CreateAttr("xmlns:uap13", nsUap13)
	pkg.CreateAttr("xmlns:rescap", nsRestrictedCapabilities)
	pkg.CreateAttr("IgnorableNamespaces", "uap13")

	// Identity is the source of the Package Full Name. The Publisher
	// attribute must match the signing certificate subject exactly,
	// quoting included, or signing fails downstream.
	identity := pkg.CreateElement("Identity")
	identity.CreateAttr("Name", app.Name)
	identity.CreateAttr("Version", app.Version)
	identity.CreateAttr("Publisher", app.Publisher)
	identity.CreateAttr("ProcessorArchitecture", app.Arch)

	// Presented to the user by the MSIX installer.
	properties := pkg.CreateElement("Properties")
	properties.CreateElement("DisplayName").SetText(app.DisplayName)
	properties.CreateElement("PublisherDisplayName").SetText(app.DisplayedPublisher)
	properties.CreateElement("Description").SetText(app.Description)
	properties.CreateElement("Logo").SetText(app.Logo.Square150x150)

	resources := pkg.CreateElement("Resources")
	resources.CreateElement("Resource").CreateAttr("Language", "en-us")

	dependencies := pkg.CreateElement("Dependencies")
	family := dependencies.CreateElement("TargetDeviceFamily")
	family.CreateAttr("Name", "Windows.Desktop")
	family.CreateAttr("MinVersion", app.MinWindowsVersion)
	family.CreateAttr("MaxVersionTested", app.MaxWindowsVersionTested)

	capabilities := pkg.CreateElement("Capabilities")
	capabilities.CreateElement("rescap:Capability").CreateAttr("Name", "runFullTrust")

	applications := pkg.CreateElement("Applications")
	application := applications.CreateElement("Application")
	application.CreateAttr("Id", app.PackageRelativeAppID())
	application.CreateAttr("Executable", app.EntryPoint)
	application.CreateAttr("uap10:RuntimeBehavior", "packagedClassicApp")
	application.CreateAttr("uap10:TrustLevel", "mediumIL")

	// Used by Windows in the taskbar, start menu, tiles, etc.
	visual := application.CreateElement("uap:VisualElements")
	visual.CreateAttr("DisplayName", app.DisplayName)
	visual.CreateAttr("Description", app.Description)
	visual.CreateAttr("Square150x150Logo", app.Logo.Square150x150)
	visual.CreateAttr("Square44x44Logo", app.Logo.Square44x44)
	visual.CreateAttr("BackgroundColor", app.Logo.BackgroundColor)

	return doc
}

// WriteAppxManifest serializes the manifest with indentation and an XML
// declaration to AppxManifest.xml inside the destination directory.
func WriteAppxManifest(ctx context.Context, app *manifest.Application, destDir string) error {
	doc := BuildAppxManifest(app)
	doc.Indent(indentSpaces)

	target := filepath.Join(destDir, ManifestFilename)
	if err := doc.WriteToFile(target); err != nil {
		return fmt.Errorf("write %s: %w", ManifestFilename, err)
	}

	logger.InfoKV(ctx, "Generated package manifest", "path", target)

	return nil
}

package emitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/msix-gen/internal/manifest"
)

// testPublisher includes quoting that must survive byte-for-byte.
const testPublisher = `CN="Contoso, Ltd.", O=Contoso, L=Redmond, S=Washington, C=US`

func sampleApplication() *manifest.Application {
	return &manifest.Application{
		Name:        "Contoso.App.Tool",
		DisplayName: "Contoso Tool",
		Description: "A sample tool.",
		Version:     "2.3.4.0",
		Publisher:   testPublisher,
		Arch:        "x64",
		Logo: manifest.Logo{
			Square44x44:     "msix_assets/logo_44x44.png",
			Square150x150:   "msix_assets/logo_150x150.png",
			BackgroundColor: "transparent",
		},
		EntryPoint:              `bin\tool.exe`,
		DisplayedPublisher:      "Contoso Ltd.",
		MinWindowsVersion:       "10.0.17763.0",
		MaxWindowsVersionTested: "10.0.22621.0",
	}
}

func sampleInstaller() *manifest.Installer {
	return &manifest.Installer{
		Version:                  "1.0.0.0",
		InstallerURI:             "https://updates.contoso.com/tool/Tool.appinstaller",
		PackageURI:               "https://updates.contoso.com/tool/Tool.msix",
		HoursBetweenUpdateChecks: 8,
		ShowPrompt:               true,
		UpdateBlocksActivation:   false,
		AutomaticBackgroundTask:  true,
	}
}

// TestBuildAppxManifest checks identity, PRAID, asset references and the
// fixed schema skeleton.
func TestBuildAppxManifest(t *testing.T) {
	t.Parallel()

	doc := BuildAppxManifest(sampleApplication())
	pkg := doc.Root()
	require.Equal(t, "Package", pkg.Tag)
	require.Equal(t, nsFoundation, pkg.SelectAttrValue("xmlns", ""))
	require.Equal(t, "uap13", pkg.SelectAttrValue("IgnorableNamespaces", ""))

	identity := pkg.SelectElement("Identity")
	require.NotNil(t, identity)
	require.Equal(t, testPublisher, identity.SelectAttrValue("Publisher", ""))
	require.Equal(t, "2.3.4.0", identity.SelectAttrValue("Version", ""))
	require.Equal(t, "x64", identity.SelectAttrValue("ProcessorArchitecture", ""))

	properties := pkg.SelectElement("Properties")
	require.NotNil(t, properties)
	require.Equal(t, "msix_assets/logo_150x150.png", properties.SelectElement("Logo").Text())

	resource := pkg.FindElement("./Resources/Resource")
	require.NotNil(t, resource)
	require.Equal(t, "en-us", resource.SelectAttrValue("Language", ""))

	family := pkg.FindElement("./Dependencies/TargetDeviceFamily")
	require.NotNil(t, family)
	require.Equal(t, "Windows.Desktop", family.SelectAttrValue("Name", ""))
	require.Equal(t, "10.0.17763.0", family.SelectAttrValue("MinVersion", ""))

	capability := pkg.FindElement("./Capabilities/rescap:Capability")
	require.NotNil(t, capability)
	require.Equal(t, "runFullTrust", capability.SelectAttrValue("Name", ""))

	application := pkg.FindElement("./Applications/Application")
	require.NotNil(t, application)
	require.Equal(t, "Tool", application.SelectAttrValue("Id", ""))
	require.Equal(t, `bin\tool.exe`, application.SelectAttrValue("Executable", ""))
	require.Equal(t, "packagedClassicApp", application.SelectAttrValue("uap10:RuntimeBehavior", ""))
	require.Equal(t, "mediumIL", application.SelectAttrValue("uap10:TrustLevel", ""))

	visual := application.SelectElement("uap:VisualElements")
	require.NotNil(t, visual)
	require.Equal(t, "msix_assets/logo_44x44.png", visual.SelectAttrValue("Square44x44Logo", ""))
	require.Equal(t, "transparent", visual.SelectAttrValue("BackgroundColor", ""))
}

// TestWriteAppxManifest writes the fixed filename with a declaration and
// parseable content.
func TestWriteAppxManifest(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()
	require.NoError(t, WriteAppxManifest(context.Background(), sampleApplication(), destDir))

	contents, err := os.ReadFile(filepath.Join(destDir, ManifestFilename))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(contents), "<?xml"))

	parsed := etree.NewDocument()
	require.NoError(t, parsed.ReadFromBytes(contents))
	require.Equal(t, testPublisher, parsed.FindElement("//Identity").SelectAttrValue("Publisher", ""))
}

// TestBuildAppInstaller checks attribute serialization and the conditional
// update-settings elements.
func TestBuildAppInstaller(t *testing.T) {
	t.Parallel()

	app := sampleApplication()
	ins := sampleInstaller()

	doc := BuildAppInstaller(app, ins)
	root := doc.Root()
	require.Equal(t, "AppInstaller", root.Tag)
	require.Equal(t, nsAppInstaller, root.SelectAttrValue("xmlns", ""))
	require.Equal(t, "1.0.0.0", root.SelectAttrValue("Version", ""))

	mainPkg := root.SelectElement("MainPackage")
	require.NotNil(t, mainPkg)
	// The package carries the app version, not the descriptor version.
	require.Equal(t, "2.3.4.0", mainPkg.SelectAttrValue("Version", ""))
	require.Equal(t, testPublisher, mainPkg.SelectAttrValue("Publisher", ""))

	onLaunch := root.FindElement("./UpdateSettings/OnLaunch")
	require.NotNil(t, onLaunch)
	require.Equal(t, "8", onLaunch.SelectAttrValue("HoursBetweenUpdateChecks", ""))
	require.Equal(t, "true", onLaunch.SelectAttrValue("ShowPrompt", ""))
	require.Equal(t, "false", onLaunch.SelectAttrValue("UpdateBlocksActivation", ""))

	task := root.FindElement("./UpdateSettings/AutomaticBackgroundTask")
	require.NotNil(t, task)
	require.Empty(t, task.Text())
	require.Nil(t, root.FindElement("./UpdateSettings/ForceUpdateFromAnyVersion"))

	// Flags flipped: task absent, force element carries literal text.
	ins.AutomaticBackgroundTask = false
	ins.ForceUpdateFromAnyVersion = true

	doc = BuildAppInstaller(app, ins)
	root = doc.Root()
	require.Nil(t, root.FindElement("./UpdateSettings/AutomaticBackgroundTask"))
	require.Equal(t, "true", root.FindElement("./UpdateSettings/ForceUpdateFromAnyVersion").Text())
}

// TestWriteAppInstallerPads verifies the descriptor lands under its
// URI-derived filename at exactly the padding limit, XML intact as a prefix.
func TestWriteAppInstallerPads(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()
	app := sampleApplication()
	ins := sampleInstaller()

	// A stale descriptor must not survive.
	target := filepath.Join(destDir, "Tool.appinstaller")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0o644))

	const limit = int64(4096)
	require.NoError(t, WriteAppInstaller(context.Background(), app, ins, destDir, limit))

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Len(t, contents, int(limit))

	expected := BuildAppInstaller(app, ins)
	expected.Indent(indentSpaces)
	prefix, err := expected.WriteToBytes()
	require.NoError(t, err)

	require.Equal(t, string(prefix), string(contents[:len(prefix)]))
	require.Equal(t, "\n"+strings.Repeat(" ", int(limit)-len(prefix)-1), string(contents[len(prefix):]))
}

// TestWriteAppInstallerOverLimit aborts when the document cannot fit under
// the padding limit, reporting both sizes.
func TestWriteAppInstallerOverLimit(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()

	err := WriteAppInstaller(context.Background(), sampleApplication(), sampleInstaller(), destDir, 64)
	require.Error(t, err)
	require.Contains(t, err.Error(), "padding limit is 64")
}

// TestPadFileLeavesOversizedFile ensures an already-oversized file is not modified.
func TestPadFileLeavesOversizedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "big.appinstaller")
	payload := strings.Repeat("x", 128)
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	require.Error(t, PadFile(path, 128))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, string(contents))
}

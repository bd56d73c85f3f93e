package emitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"

	"github.com/oshokin/msix-gen/internal/logger"
	"github.com/oshokin/msix-gen/internal/manifest"
)

// nsAppInstaller is the AppInstaller 2018 schema namespace.
const nsAppInstaller = "http://schemas.microsoft.com/appx/appinstaller/2018"

// BuildAppInstaller assembles the update descriptor document. The
// MainPackage version is the application version, not the descriptor's own.
func BuildAppInstaller(app *manifest.Application, ins *manifest.Installer) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)

	root := doc.CreateElement("AppInstaller")
	root.CreateAttr("xmlns", nsAppInstaller)
	root.CreateAttr("Version", ins.Version)
	root.CreateAttr("Uri", ins.InstallerURI)

	mainPkg := root.CreateElement("MainPackage")
	mainPkg.CreateAttr("Name", app.Name)
	mainPkg.CreateAttr("Publisher", app.Publisher)
	mainPkg.CreateAttr("Version", app.Version)
	mainPkg.CreateAttr("Uri", ins.PackageURI)
	mainPkg.CreateAttr("ProcessorArchitecture", app.Arch)

	updateSettings := root.CreateElement("UpdateSettings")
	onLaunch := updateSettings.CreateElement("OnLaunch")
	onLaunch.CreateAttr("HoursBetweenUpdateChecks", strconv.Itoa(ins.HoursBetweenUpdateChecks))
	onLaunch.CreateAttr("ShowPrompt", strconv.FormatBool(ins.ShowPrompt))
	onLaunch.CreateAttr("UpdateBlocksActivation", strconv.FormatBool(ins.UpdateBlocksActivation))

	if ins.AutomaticBackgroundTask {
		updateSettings.CreateElement("AutomaticBackgroundTask")
	}

	if ins.ForceUpdateFromAnyVersion {
		updateSettings.CreateElement("ForceUpdateFromAnyVersion").SetText("true")
	}

	return doc
}

// WriteAppInstaller serializes the descriptor to the destination directory
// under the filename derived from its hosting URI, removing any stale file
// first, then pads it to exactly padLimit bytes.
func WriteAppInstaller(
	ctx context.Context,
	app *manifest.Application,
	ins *manifest.Installer,
	destDir string,
	padLimit int64,
) error {
	name, err := ins.Filename()
	if err != nil {
		return err
	}

	target := filepath.Join(destDir, name)

	// A stale descriptor from a previous run is removed so the write starts
	// from a clean file. Missing is fine.
	if err = os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", name, err)
	}

	doc := BuildAppInstaller(app, ins)
	doc.Indent(indentSpaces)

	if err = doc.WriteToFile(target); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	if err = PadFile(target, padLimit); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Generated AppInstaller descriptor", "path", target, "size", padLimit)

	return nil
}

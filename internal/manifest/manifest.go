package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Document mirrors the top-level layout of the input JSON manifest.
type Document struct {
	// AppManifest describes the packaged application identity and UI metadata.
	AppManifest AppManifestSection `json:"AppManifest"`
	// AppInstaller describes the hosted update policy. Optional unless
	// installer generation is requested.
	AppInstaller *AppInstallerSection `json:"AppInstaller"`
}

// AppManifestSection groups the AppxManifest inputs.
type AppManifestSection struct {
	Identity struct {
		// Name is the reverse-domain package identifier (e.g. Contoso.App.Tool).
		Name string `json:"Name"`
		// Arch is the processor architecture tag (e.g. x64).
		Arch string `json:"Arch"`
	} `json:"Identity"`
	Properties struct {
		DisplayName          string `json:"DisplayName"`
		PublisherDisplayName string `json:"PublisherDisplayName"`
		Description          string `json:"Description"`
	} `json:"Properties"`
	Application struct {
		// EntryPoint is the package-relative path of the executable.
		EntryPoint string `json:"EntryPoint"`
	} `json:"Application"`
	VisualElements struct {
		BackgroundColor string `json:"BackgroundColor"`
	} `json:"VisualElements"`
	Dependencies struct {
		MinVersion       string `json:"MinVersion"`
		MaxVersionTested string `json:"MaxVersionTested"`
	} `json:"Dependencies"`
}

// AppInstallerSection groups the AppInstaller descriptor inputs.
type AppInstallerSection struct {
	// Version is the descriptor's own version, independent of the app version.
	Version string `json:"Version"`
	// URI is the public address the descriptor will be hosted at.
	URI string `json:"Uri"`
	MainPackage struct {
		// URI is the address of the MSIX package file.
		URI string `json:"Uri"`
	} `json:"MainPackage"`
	UpdateSettings struct {
		OnLaunch struct {
			HoursBetweenUpdateChecks int  `json:"HoursBetweenUpdateChecks"`
			ShowPrompt               bool `json:"ShowPrompt"`
			UpdateBlocksActivation   bool `json:"UpdateBlocksActivation"`
		} `json:"OnLaunch"`
		AutomaticBackgroundTask   bool `json:"AutomaticBackgroundTask"`
		ForceUpdateFromAnyVersion bool `json:"ForceUpdateFromAnyVersion"`
	} `json:"UpdateSettings"`
}

// Logo holds package-relative asset paths and the tile background color.
// Paths are filled in by the asset stager once both files are confirmed on disk.
type Logo struct {
	// Square44x44 is the package-relative path of the 44x44 icon.
	Square44x44 string
	// Square150x150 is the package-relative path of the 150x150 icon.
	Square150x150 string
	// BackgroundColor is the visual-elements background color string.
	BackgroundColor string
}

// Application is the resolved application identity stamped into both
// generated documents.
type Application struct {
	// Name is the reverse-domain package identifier.
	Name string
	// DisplayName is shown to the user by the installer and shell.
	DisplayName string
	// Description is the human-readable package description.
	Description string
	// Version is the externally supplied application version.
	Version string
	// Publisher must byte-match the signing certificate subject, quoting included.
	Publisher string
	// Arch is the processor architecture tag.
	Arch string
	// Logo carries staged asset references.
	Logo Logo
	// EntryPoint is the package-relative executable path.
	EntryPoint string
	// DisplayedPublisher is the publisher string shown to the user.
	DisplayedPublisher string
	// MinWindowsVersion is the minimum supported platform version.
	MinWindowsVersion string
	// MaxWindowsVersionTested is the highest platform version tested.
	MaxWindowsVersionTested string
}

// Installer is the resolved AppInstaller update policy.
type Installer struct {
	// Version is the descriptor version attribute.
	Version string
	// InstallerURI is the public address the descriptor is hosted at.
	InstallerURI string
	// PackageURI is the address of the MSIX package file.
	PackageURI string
	// HoursBetweenUpdateChecks is the on-launch update check interval.
	HoursBetweenUpdateChecks int
	// ShowPrompt makes the runtime prompt the user before updating.
	ShowPrompt bool
	// UpdateBlocksActivation blocks app launch until the update applies.
	UpdateBlocksActivation bool
	// AutomaticBackgroundTask enables background update checks.
	AutomaticBackgroundTask bool
	// ForceUpdateFromAnyVersion allows downgrades and forced updates.
	ForceUpdateFromAnyVersion bool
}

var (
	// errNameRequired is returned when the package identifier is missing.
	errNameRequired = errors.New("AppManifest.Identity.Name must be provided")
	// errArchRequired is returned when the architecture tag is missing.
	errArchRequired = errors.New("AppManifest.Identity.Arch must be provided")
	// errEntryPointRequired is returned when the executable path is missing.
	errEntryPointRequired = errors.New("AppManifest.Application.EntryPoint must be provided")
	// errInstallerSectionMissing is returned when installer generation is
	// requested but the manifest has no AppInstaller section.
	errInstallerSectionMissing = errors.New("manifest has no AppInstaller section")
	// errInstallerURIRequired is returned when the descriptor hosting URI is missing.
	errInstallerURIRequired = errors.New("AppInstaller.Uri must be provided")
	// errPackageURIRequired is returned when the package URI is missing.
	errPackageURIRequired = errors.New("AppInstaller.MainPackage.Uri must be provided")
)

// LoadDocument reads and parses the manifest JSON at the provided path.
func LoadDocument(path string) (*Document, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &doc, nil
}

// NewApplication builds the application identity from the parsed document
// and the externally supplied version. Publisher and logo paths are filled
// by later pipeline stages.
func NewApplication(doc *Document, appVersion string) (*Application, error) {
	if err := ValidateVersion(appVersion); err != nil {
		return nil, err
	}

	m := &doc.AppManifest

	switch {
	case m.Identity.Name == "":
		return nil, errNameRequired
	case m.Identity.Arch == "":
		return nil, errArchRequired
	case m.Application.EntryPoint == "":
		return nil, errEntryPointRequired
	}

	return &Application{
		Name:        m.Identity.Name,
		DisplayName: m.Properties.DisplayName,
		Description: m.Properties.Description,
		Version:     appVersion,
		Arch:        m.Identity.Arch,
		Logo: Logo{
			BackgroundColor: m.VisualElements.BackgroundColor,
		},
		EntryPoint:              m.Application.EntryPoint,
		DisplayedPublisher:      m.Properties.PublisherDisplayName,
		MinWindowsVersion:       m.Dependencies.MinVersion,
		MaxWindowsVersionTested: m.Dependencies.MaxVersionTested,
	}, nil
}

// NewInstaller builds the update policy from the parsed document.
func NewInstaller(doc *Document) (*Installer, error) {
	ins := doc.AppInstaller
	if ins == nil {
		return nil, errInstallerSectionMissing
	}

	switch {
	case ins.URI == "":
		return nil, errInstallerURIRequired
	case ins.MainPackage.URI == "":
		return nil, errPackageURIRequired
	}

	return &Installer{
		Version:                   ins.Version,
		InstallerURI:              ins.URI,
		PackageURI:                ins.MainPackage.URI,
		HoursBetweenUpdateChecks:  ins.UpdateSettings.OnLaunch.HoursBetweenUpdateChecks,
		ShowPrompt:                ins.UpdateSettings.OnLaunch.ShowPrompt,
		UpdateBlocksActivation:    ins.UpdateSettings.OnLaunch.UpdateBlocksActivation,
		AutomaticBackgroundTask:   ins.UpdateSettings.AutomaticBackgroundTask,
		ForceUpdateFromAnyVersion: ins.UpdateSettings.ForceUpdateFromAnyVersion,
	}, nil
}

// PackageRelativeAppID returns the application identifier: the last
// dot-separated segment of the package name. It only needs to be unique
// within the package.
func (a *Application) PackageRelativeAppID() string {
	parts := strings.Split(a.Name, ".")
	return parts[len(parts)-1]
}

// Filename returns the on-disk name of the descriptor: the last path
// segment of its own hosting URI.
func (i *Installer) Filename() (string, error) {
	parsed, err := url.Parse(i.InstallerURI)
	if err != nil {
		return "", fmt.Errorf("parse installer URI: %w", err)
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("installer URI %q has no file segment", i.InstallerURI)
	}

	return name, nil
}

// ValidateVersion checks that the version is a dotted numeric string.
func ValidateVersion(version string) error {
	if version == "" {
		return errors.New("version must be provided")
	}

	for _, part := range strings.Split(version, ".") {
		if _, err := strconv.Atoi(part); err != nil {
			return fmt.Errorf("invalid version part: %q is not a number", part)
		}
	}

	return nil
}

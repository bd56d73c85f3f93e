package certstore

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PowerShellStore queries a Windows certificate store through a
// synchronous powershell.exe invocation.
type PowerShellStore struct {
	// storePath is the store location in PowerShell provider syntax,
	// e.g. Cert:\LocalMachine\My.
	storePath string
}

// recordFieldCount is the number of tab-separated fields per certificate record:
// friendly name, thumbprint, not-before, not-after, subject.
const recordFieldCount = 5

// listScript prints one record per code-signing certificate. The subject is
// the last field so distinguished names containing tabs survive splitting.
const listScript = `Get-ChildItem -Path %s -Recurse -CodeSigningCert | ForEach-Object { ` +
	`$_.FriendlyName + "` + "`t" + `" + $_.Thumbprint + "` + "`t" + `" + ` +
	`$_.NotBefore.ToUniversalTime().ToString('o') + "` + "`t" + `" + ` +
	`$_.NotAfter.ToUniversalTime().ToString('o') + "` + "`t" + `" + $_.Subject }`

// NewPowerShellStore returns a store bound to the provided location.
func NewPowerShellStore(storePath string) *PowerShellStore {
	return &PowerShellStore{storePath: storePath}
}

// List runs the store query and parses its output. A non-zero exit or a
// malformed record is an error carrying the captured output for diagnosis.
func (s *PowerShellStore) List(ctx context.Context) ([]Identity, error) {
	cmd := exec.CommandContext(ctx,
		"powershell.exe",
		"-NoProfile",
		"-NonInteractive",
		"-NoLogo",
		"-Command",
		fmt.Sprintf(listScript, s.storePath),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("query certificate store %s: %w: %s",
			s.storePath, err, strings.TrimSpace(stderr.String()))
	}

	ids, err := parseIdentities(stdout.String())
	if err != nil {
		return nil, fmt.Errorf("unexpected output from PowerShell: %w: %q", err, stdout.String())
	}

	return ids, nil
}

// parseIdentities converts query output into identities,
// one tab-separated record per line.
func parseIdentities(output string) ([]Identity, error) {
	var ids []Identity

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", recordFieldCount)
		if len(fields) != recordFieldCount {
			return nil, fmt.Errorf("record %q has %d fields, want %d", line, len(fields), recordFieldCount)
		}

		notBefore, err := time.Parse(time.RFC3339Nano, fields[2])
		if err != nil {
			return nil, fmt.Errorf("parse NotBefore: %w", err)
		}

		notAfter, err := time.Parse(time.RFC3339Nano, fields[3])
		if err != nil {
			return nil, fmt.Errorf("parse NotAfter: %w", err)
		}

		ids = append(ids, Identity{
			FriendlyName: fields[0],
			Thumbprint:   fields[1],
			Subject:      fields[4],
			NotBefore:    notBefore,
			NotAfter:     notAfter,
		})
	}

	return ids, nil
}

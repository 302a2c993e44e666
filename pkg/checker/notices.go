package checker

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jakexks/license-hound/pkg/dirutil"
)

// WriteNotices writes a LICENSES.txt-style attribution file: the license
// text of every successfully audited package, each package once.
func WriteNotices(w io.Writer, reports []Report) error {
	seen := make(map[string]struct{})
	for _, r := range reports {
		if !r.Conclusion.OK() {
			continue
		}
		mod := fmt.Sprintf("%s@%s", r.PackageName, r.Version)
		if _, found := seen[mod]; found {
			continue
		}
		seen[mod] = struct{}{}

		d := r.Conclusion.Description
		if _, err := fmt.Fprintf(w, "Library %s used under the %s License, reproduced below:\n\n%s\n\n", mod, d.ChosenLicense, d.CopyrightNotice); err != nil {
			return fmt.Errorf("package %s: while writing notices: %w", mod, err)
		}
		if _, err := io.WriteString(w, d.FullLicenseDocument); err != nil {
			return fmt.Errorf("package %s: while writing notices: %w", mod, err)
		}
		if _, err := io.WriteString(w, "\n==============================\n\n"); err != nil {
			return fmt.Errorf("package %s: while writing notices: %w", mod, err)
		}
	}
	return nil
}

// CopyReciprocal copies the sources of every package under a reciprocal
// license, e.g. MPL-2.0, into dst/<package name>, since they have to be
// distributed along with the binaries. It returns the copied package names.
func CopyReciprocal(reports []Report, dst string) ([]string, error) {
	var copied []string
	for _, r := range reports {
		if !r.Conclusion.OK() {
			continue
		}
		d := r.Conclusion.Description
		if d.LicenseType != "reciprocal" || d.SourceDir == "" {
			continue
		}

		dstPath := filepath.Join(dst, r.PackageName)
		if err := dirutil.CopyDirectory(d.SourceDir, dstPath); err != nil {
			return copied, fmt.Errorf("while copying the source code of '%s@%s' due to the reciprocal license %s, copying '%s' into '%s': %w",
				r.PackageName, r.Version, d.ChosenLicense, d.SourceDir, dstPath, err)
		}
		copied = append(copied, r.PackageName)
	}
	return copied, nil
}

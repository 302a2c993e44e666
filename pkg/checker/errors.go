package checker

import (
	"fmt"
	"unicode/utf8"
)

// ErrorKind is why a package has no license description.
type ErrorKind int

const (
	// NoSource: the lock file entry has no source, e.g. a path dependency
	// or a workspace member.
	NoSource ErrorKind = iota
	// SourceUnavailable: the package sources are not on disk, or come from
	// a kind of source license-hound does not know.
	SourceUnavailable
	// LicenseNotDeclared: Cargo.toml has no license field. Detail is the
	// path to the manifest.
	LicenseNotDeclared
	// UnacceptableLicense: the declared license is none of the accepted
	// ones. Detail is the declaration.
	UnacceptableLicense
	// UnableToRecoverLicenseFile: no prober found the license text. Detail
	// is the package directory.
	UnableToRecoverLicenseFile
	// UnableToRecoverAttribution: the license text has no copyright line.
	// Detail is the whole text.
	UnableToRecoverAttribution
)

func (k ErrorKind) String() string {
	switch k {
	case NoSource:
		return "NoSource"
	case SourceUnavailable:
		return "SourceUnavailable"
	case LicenseNotDeclared:
		return "LicenseNotDeclared"
	case UnacceptableLicense:
		return "UnacceptableLicense"
	case UnableToRecoverLicenseFile:
		return "UnableToRecoverLicenseFile"
	case UnableToRecoverAttribution:
		return "UnableToRecoverAttribution"
	}
	panic(fmt.Sprintf("checker: unknown error kind %d", int(k)))
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// LicenseError is the conclusion of a package that could not be audited.
type LicenseError struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
	// Err is the underlying error, if any. It is not part of the report.
	Err error `json:"-"`
}

func newError(kind ErrorKind, detail string, err error) *LicenseError {
	return &LicenseError{Kind: kind, Detail: detail, Err: err}
}

func (e *LicenseError) Error() string {
	detail := e.Detail
	if e.Kind == UnableToRecoverAttribution {
		detail = truncate(detail, 80)
	}
	switch {
	case e.Err != nil && detail != "":
		return fmt.Sprintf("%s(%q): %v", e.Kind, detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case detail != "":
		return fmt.Sprintf("%s(%q)", e.Kind, detail)
	}
	return e.Kind.String()
}

// truncate shortens s to at most max runes, the last three being "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}

func (e *LicenseError) Unwrap() error {
	return e.Err
}

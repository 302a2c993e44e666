package checker

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/jakexks/license-hound/pkg/license"
	"github.com/jakexks/license-hound/pkg/provenance"
)

// Description is the conclusion of a successfully audited package.
type Description struct {
	ChosenLicense       license.ID        `json:"chosen_license"`
	LicenseType         string            `json:"license_type"`
	CopyrightNotice     string            `json:"copyright_notice"`
	FullSPDXLicense     string            `json:"full_spdx_license"`
	FullLicenseDocument string            `json:"full_license_document"`
	LicenseSource       provenance.Source `json:"license_source"`
	Link                string            `json:"link,omitempty"`

	// SourceDir is where the package sources are on disk.
	SourceDir string `json:"-"`
}

// Conclusion holds either a Description or a LicenseError, never both.
type Conclusion struct {
	Description *Description
	Err         *LicenseError
}

func (c Conclusion) OK() bool {
	return c.Description != nil
}

// Label is "ok" or the kind of error.
func (c Conclusion) Label() string {
	if c.OK() {
		return "ok"
	}
	return c.Err.Kind.String()
}

var errInvalidConclusion = errors.New("conclusion must hold exactly one of a description and an error")

func (c Conclusion) MarshalJSON() ([]byte, error) {
	if (c.Description == nil) == (c.Err == nil) {
		return nil, errInvalidConclusion
	}
	return marshal(struct {
		OK  *Description  `json:"ok,omitempty"`
		Err *LicenseError `json:"error,omitempty"`
	}{c.Description, c.Err})
}

// marshal is json.Marshal without HTML escaping: license texts and notices
// are full of "<" and "&", and json.Marshal escapes them for good, whatever
// the encoder the result ends up in.
func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type Report struct {
	PackageName string     `json:"package_name"`
	Version     string     `json:"version"`
	Conclusion  Conclusion `json:"conclusion"`
}

// WriteJSON writes reports as a single JSON array, in order.
func WriteJSON(w io.Writer, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(reports)
}

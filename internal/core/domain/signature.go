package domain

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrUnknownSection   = errors.New("unknown signature section")
	ErrSignaturePresent = errors.New("section already signed")
	ErrNotSigned        = errors.New("section is not signed")
	ErrNoSignature      = errors.New("user has no stored signature")
)

// SignatureSection is a sign-off box on a checksheet. Field is the formData
// key holding the signature value.
type SignatureSection struct {
	Field string
	Label string
	Roles []string
}

var signatureSections = map[ReportKind][]SignatureSection{
	KindGel: {
		{Field: "preparedBySignature", Label: "Prepared By", Roles: []string{RoleOperator}},
		{Field: "acceptedBySignature", Label: "Accepted By", Roles: []string{RoleSupervisor, RoleManager}},
		{Field: "verifiedBySignature", Label: "Verified By", Roles: []string{RoleManager}},
	},
	KindPeel: {
		{Field: "preparedBy", Label: "Prepared By", Roles: []string{RoleOperator}},
		{Field: "verifiedBy", Label: "Verified By", Roles: []string{RoleSupervisor, RoleManager}},
	},
	KindAdhesion: {
		{Field: "preparedBySignature", Label: "Prepared By", Roles: []string{RoleOperator}},
		{Field: "verifiedBySignature", Label: "Verified By", Roles: []string{RoleSupervisor, RoleManager}},
	},
	KindWetLeakage: {
		{Field: "preparedBySignature", Label: "Prepared By", Roles: []string{RoleOperator}},
		{Field: "reviewedBySignature", Label: "Reviewed By", Roles: []string{RoleSupervisor, RoleManager}},
		{Field: "approvedBySignature", Label: "Approved By", Roles: []string{RoleManager}},
	},
}

// Sections lists the sign-off boxes for a report kind.
func (k ReportKind) Sections() []SignatureSection {
	return signatureSections[k]
}

// Section looks up a section by its form field. "prepared" is accepted as
// shorthand for "preparedBySignature" (or "preparedBy" on peel sheets).
func (k ReportKind) Section(name string) (SignatureSection, error) {
	for _, s := range signatureSections[k] {
		if s.Field == name || strings.TrimSuffix(strings.TrimSuffix(s.Field, "Signature"), "By") == name {
			return s, nil
		}
	}
	return SignatureSection{}, ErrUnknownSection
}

// CanSign reports whether a user with role may sign this section.
func (s SignatureSection) CanSign(role string) bool {
	return slices.Contains(s.Roles, role)
}

// Signature is the value stored in a section: the signer's name and the image.
type Signature struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Image      string `json:"image,omitempty"`
	SignedAt   string `json:"signedAt"`
}

// CheckAdd validates adding a signature to a section whose current value is
// current.
func CheckAdd(s SignatureSection, current any, role string) error {
	if !s.CanSign(role) {
		return ErrForbidden
	}
	if !signatureEmpty(current) {
		return ErrSignaturePresent
	}
	return nil
}

// CheckRemove validates removing the signature in a section. Only the user
// whose name appears in the signature may remove it.
func CheckRemove(current any, userName string) error {
	if signatureEmpty(current) {
		return ErrNotSigned
	}
	if !strings.Contains(signerName(current), userName) || userName == "" {
		return ErrForbidden
	}
	return nil
}

func signatureEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func signerName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		s, _ := t["name"].(string)
		return s
	}
	return ""
}

// SignatureText renders a stored signature for a spreadsheet cell.
func SignatureText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		name, _ := t["name"].(string)
		at, _ := t["signedAt"].(string)
		if at == "" {
			return name
		}
		return name + " (" + at + ")"
	}
	return ""
}

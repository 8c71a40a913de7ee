package vrm

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// LicenseOther is the VRM 0.x licence name for custom terms.
const LicenseOther = "Other"

// noDerivatives matches Creative Commons licence names with the ND clause, e.g. "CC_BY_ND".
var noDerivatives = regexp.MustCompile(`^CC(.*)ND(.*)`)

// checkLicense rejects models whose licence forbids modification.
func checkLicense(m Meta, log *zap.Logger) error {
	if noDerivatives.MatchString(m.LicenseName) {
		return fmt.Errorf("%w: licence %s allows no derivative works", ErrModificationProhibited, m.LicenseName)
	}

	if m.OtherPermissionURL != "" && vroidDisallows(m.OtherPermissionURL) {
		return fmt.Errorf("%w: %s", ErrModificationProhibited, m.OtherPermissionURL)
	}

	if m.Modification == ModificationProhibited {
		return fmt.Errorf("%w: modification is %q", ErrModificationProhibited, m.Modification)
	}

	if m.LicenseName == LicenseOther {
		log.Warn("model uses a custom licence, check its terms before editing",
			zap.String("title", m.Title),
			zap.String("permission_url", m.OtherPermissionURL))
	}

	return nil
}

// vroidDisallows reports whether raw is a VRoid Hub permission URL that disallows modification.
func vroidDisallows(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if !strings.Contains(strings.ToLower(u.Hostname()), "vroid") {
		return false
	}
	return u.Query().Get("modification") == "disallow"
}

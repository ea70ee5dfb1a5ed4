package auth

import (
	"fmt"

	"github.com/mssola/useragent"
)

// DeviceSummary condenses a raw User-Agent header into "Browser ver (OS)"
// for audit events. Unknown agents come back as "unknown".
func DeviceSummary(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}

	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	os := ua.OS()

	switch {
	case name == "" && os == "":
		return "unknown"
	case os == "":
		return fmt.Sprintf("%s %s", name, version)
	case name == "":
		return os
	default:
		return fmt.Sprintf("%s %s (%s)", name, version, os)
	}
}

package librelink

import (
	"fmt"
	"strings"
)

// Base endpoints before the first login. A regional redirect during login
// overrides them for the lifetime of the session.
const (
	GlobalBaseURL   = "https://api.libreview.io"
	EuropeanBaseURL = "https://api-eu.libreview.io"
)

// BaseURL picks the initial endpoint from the region-server preference.
func BaseURL(useRegionServer bool) string {
	if useRegionServer {
		return EuropeanBaseURL
	}
	return GlobalBaseURL
}

// regionalURL maps a redirect region code to its API endpoint. Unrecognized
// codes synthesize a URL from the code pattern.
func regionalURL(region string) string {
	switch strings.ToLower(region) {
	case "eu":
		return "https://api-eu.libreview.io"
	case "eu2":
		return "https://api-eu2.libreview.io"
	case "us":
		return "https://api-us.libreview.io"
	case "ap":
		return "https://api-ap.libreview.io"
	case "au":
		return "https://api-au.libreview.io"
	case "de":
		return "https://api-de.libreview.io"
	case "fr":
		return "https://api-fr.libreview.io"
	default:
		return fmt.Sprintf("https://api-%s.libreview.io", strings.ToLower(region))
	}
}

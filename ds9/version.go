package ds9

import "strings"

// unknownVersion is reported when the display's "about" response cannot
// be parsed.
const unknownVersion = "0.0.0"

// Version returns the version of the connected ds9, or "0.0.0" when it
// cannot be determined.
func (c *Commander) Version() string {
	out, err := c.Query("about")
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read ds9 version")
		return unknownVersion
	}
	version := parseVersion(out)
	if version == unknownVersion {
		c.logger.Warn().Str("about", out).Msg("failed to parse ds9 version")
	}
	return version
}

// parseVersion extracts the version from an "about" response, whose
// second line reads "SAOImageDS9 <version>".
func parseVersion(about string) string {
	lines := strings.Split(about, "\n")
	if len(lines) < 2 {
		return unknownVersion
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 2 {
		return unknownVersion
	}
	return fields[1]
}

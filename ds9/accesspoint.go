package ds9

import (
	"os"
	"regexp"
)

// defaultAccessPoint is used when XPA_PORT gives no usable address; the
// usual xpans name lookup applies then.
const defaultAccessPoint = "ds9"

var portPattern = regexp.MustCompile(`^DS9:ds9\s+(\d+)\s+(\d+)`)

// AccessPoint returns the XPA addressing template for the target ds9.
// When XPA_PORT is set it is parsed into a direct host:port address so
// commands bypass the name server.
func AccessPoint() string {
	point, _ := ParseAccessPoint(os.Getenv("XPA_PORT"))
	return point
}

// ParseAccessPoint resolves an XPA_PORT value of the form
// "DS9:ds9 <port1> <port2>" into "127.0.0.1:<port1>". The boolean
// reports whether a non-empty value failed to parse.
func ParseAccessPoint(xpaPort string) (string, bool) {
	if xpaPort == "" {
		return defaultAccessPoint, true
	}
	match := portPattern.FindStringSubmatch(xpaPort)
	if match == nil {
		return defaultAccessPoint, false
	}
	return "127.0.0.1:" + match[1], true
}

package ds9

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Event is a key press reported by the display's imexam mode.
type Event struct {
	Key string
	X   float64
	Y   float64
}

// GetEvent blocks until a key is pressed on the display and returns it.
// Coordinates that cannot be parsed come back as NaN. A nil event
// without error is returned for the harmless XPA error ds9 emits when
// TAB is hit in imexam mode.
func (c *Commander) GetEvent() (*Event, error) {
	out, err := c.Query("imexam key coordinate")
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty imexam response")
	}
	if fields[0] == "XPA$ERROR" {
		if isTabBug(fields[1:]) {
			return nil, nil
		}
		return nil, fmt.Errorf("imexam: %s", strings.Join(fields[1:], " "))
	}

	key := fields[0]
	x, y := math.NaN(), math.NaN()
	if len(fields) >= 3 {
		if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
			x = v
		}
		if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
			y = v
		}
	}
	return &Event{Key: key, X: x, Y: y}, nil
}

// isTabBug recognises the "unknown option -state" error some ds9
// versions emit when TAB is pressed in imexam mode.
func isTabBug(fields []string) bool {
	return len(fields) >= 3 &&
		fields[0] == "unknown" &&
		fields[1] == "option" &&
		fields[2] == `"-state"`
}

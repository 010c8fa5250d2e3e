package ds9

import "fmt"

// SelectFrame returns the command selecting a display frame.
func SelectFrame(frame int) string {
	return fmt.Sprintf("frame %d", frame)
}

// ZoomTo returns the command zooming the current frame to the given
// factor.
func ZoomTo(factor int) string {
	return fmt.Sprintf("zoom to %d", factor)
}

// PanTo returns the command panning the current frame to the given
// column and row. ds9 counts pixels from one, so zero-based
// coordinates are shifted.
func PanTo(col, row float64) string {
	return fmt.Sprintf("pan to %g %g physical", col+1, row+1)
}

// ScaleLimits returns the command fixing the greyscale stretch.
func ScaleLimits(min, max float64) string {
	return fmt.Sprintf("scale limits %g %g", min, max)
}

// MaskTransparency returns the command setting mask transparency in
// percent.
func MaskTransparency(percent int) string {
	return fmt.Sprintf("mask transparency %d", percent)
}

// MaskColor returns the command selecting the colour for subsequent
// mask planes.
func MaskColor(color string) string {
	return fmt.Sprintf("mask color %s", color)
}

// RegionCommand wraps a region specification for the regions parser.
func RegionCommand(region string) string {
	return fmt.Sprintf("regions command {%s}", region)
}

// EraseRegions returns the command deleting all regions in the current
// frame.
func EraseRegions() string {
	return "regions delete all"
}

package metadata

// suspiciousSoftware lists editing, design and generation tools whose
// presence in a software tag suggests the screenshot was created or
// reworked rather than captured. Matched case-insensitively as
// substrings.
var suspiciousSoftware = []string{
	"photoshop", "gimp", "paint.net", "affinity", "pixelmator",
	"lightroom", "capture one", "snapseed", "canva", "figma",
	"sketch", "illustrator", "inkscape", "corel", "acorn",
	"fake", "generator", "screenshot maker", "mockup", "browser frame",
	"chrome devtools", "inspect element", "web inspector",
	"midjourney", "dall-e", "stable diffusion", "ai",
	"screen capture pro", "greenshot edited",
}

type resolution struct {
	w, h int
}

// commonResolutions holds expected screenshot dimensions for common
// devices and displays. A genuine capture matches one of these exactly
// or within a small tolerance window.
var commonResolutions = []resolution{
	{1920, 1080}, {2560, 1440}, {3840, 2160}, // Desktop
	{1366, 768}, {1440, 900}, {1536, 864}, // Laptop
	{2880, 1800}, {3024, 1964}, {2560, 1600}, // Retina Mac
	{1170, 2532}, {1284, 2778}, {1290, 2796}, // iPhone
	{1080, 2340}, {1080, 2400}, {1440, 3200}, // Android
	{2048, 2732}, {2360, 1640}, // iPad
	{750, 1334}, {828, 1792}, {1125, 2436}, // Older iPhone
	{1080, 1920}, {1440, 2560}, // Common Android
}

// screenshotFormats are container formats natural for screenshots.
var screenshotFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
	"bmp":  true,
	"tiff": true,
}

// Resolution closeness tolerance. The asymmetry allows for window
// chrome and browser bars cropped off one axis. Heuristic values,
// tunable rather than derived.
const (
	widthTolerance  = 50
	heightTolerance = 200
)

package utils

// ColourScheme is the GoBarber palette: orange accent on a dark purple-grey
// background.
type ColourScheme struct {
	Orange   string
	Base     string
	Surface  string
	Input    string
	Text     string
	Subtext  string
	Overlay  string
	Red      string
	Green    string
	Blue     string
	Shade    string
	Contrast string
}

var Colours = ColourScheme{
	Orange:   "#ff9000",
	Base:     "#312e38",
	Surface:  "#3e3b47",
	Input:    "#232129",
	Text:     "#f4ede8",
	Subtext:  "#999591",
	Overlay:  "#666360",
	Red:      "#c53030",
	Green:    "#2e656a",
	Blue:     "#3172b7",
	Shade:    "#cc7300",
	Contrast: "#312e38",
}

package protocol

// Metrics describes the window/character metrics sent on init and arrange
// requests. The zero value is not meaningful; use DefaultMetrics or
// ScreenshotMetrics.
type Metrics struct {
	Width            int `json:"width"`
	Height           int `json:"height"`
	GridCharWidth    int `json:"gridcharwidth"`
	GridCharHeight   int `json:"gridcharheight"`
	BufferCharWidth  int `json:"buffercharwidth"`
	BufferCharHeight int `json:"buffercharheight"`
	GridMarginX      int `json:"gridmarginx,omitempty"`
	GridMarginY      int `json:"gridmarginy,omitempty"`
	BufferMarginX    int `json:"buffermarginx,omitempty"`
	BufferMarginY    int `json:"buffermarginy,omitempty"`
}

// DefaultMetrics matches the cheap/rem default window size used by the
// original regtest harness.
func DefaultMetrics() Metrics {
	return Metrics{
		Width: 800, Height: 480,
		GridCharWidth: 10, GridCharHeight: 12,
		BufferCharWidth: 10, BufferCharHeight: 12,
	}
}

// ScreenshotMetrics matches the larger canvas used by the screenshot tool's
// twin of this harness.
func ScreenshotMetrics() Metrics {
	m := DefaultMetrics()
	m.Width, m.Height = 800, 600
	return m
}

// SupportList is the fixed capability list advertised on init.
var SupportList = []string{"timer", "hyperlinks", "graphics", "graphicswin"}

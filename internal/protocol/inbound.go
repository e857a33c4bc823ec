package protocol

import "encoding/json"

// Update is the raw decoded shape of one inbound protocol message. The
// codec does not interpret semantics; internal/display folds an Update into
// reconstructed window state.
type Update struct {
	Gen          *int              `json:"gen"`
	Windows      []WindowDesc      `json:"windows"`
	Content      []ContentDelta    `json:"content"`
	Input        []InputDesc       `json:"input"`
	SpecialInput *SpecialInputDesc `json:"specialinput"`
	Timer        json.RawMessage   `json:"timer"`
}

// WindowDesc describes one window as reported in an update's "windows" list.
type WindowDesc struct {
	ID     int    `json:"id"`
	Type   string `json:"type"` // "grid" | "buffer" | "graphics"
	Rock   int    `json:"rock"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Grid-only.
	GridWidth  int `json:"gridwidth"`
	GridHeight int `json:"gridheight"`
}

// ContentDelta is one element of an update's "content" list: a content
// delta for a single window, shape depending on the window's kind.
type ContentDelta struct {
	ID    int  `json:"id"`
	Clear bool `json:"clear"`

	// Buffer-only: ordered paragraph entries.
	Text []BufferEntry `json:"text"`

	// Grid-only: ordered per-line replacements.
	Lines []GridLine `json:"lines"`

	// Graphics-only: opaque draw operations, preserved verbatim.
	Draw []json.RawMessage `json:"draw"`
}

// BufferEntry is one paragraph delta in a buffer window's content list.
type BufferEntry struct {
	Append    bool            `json:"append"`
	FlowBreak bool            `json:"flowbreak"`
	Content   json.RawMessage `json:"content"`
}

// GridLine is one line replacement in a grid window's content list.
type GridLine struct {
	Line    int             `json:"line"`
	Content json.RawMessage `json:"content"`
}

// InputDesc describes one window's pending input request.
type InputDesc struct {
	ID          int    `json:"id"`
	Type        string `json:"type"` // "line" | "char"
	Gen         int    `json:"gen"`
	Hyperlink   bool   `json:"hyperlink"`
	Mouse       bool   `json:"mouse"`
	InitialText string `json:"initial,omitempty"`
}

// SpecialInputDesc describes a special-input prompt (e.g. fileref_prompt).
type SpecialInputDesc struct {
	Type string `json:"type"`
}

// Decode parses one complete JSON object into an Update. It does not
// validate semantics; that is internal/display's job.
func Decode(data []byte) (*Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

package protocol

import "encoding/json"

// Request is an outbound request to the interpreter. It is always a JSON
// object carrying "type" and "gen" plus type-specific fields.
type Request map[string]any

// Init builds the initial handshake request (gen is always 0).
func Init(metrics Metrics) Request {
	return Request{
		"type":    "init",
		"gen":     0,
		"metrics": metrics,
		"support": SupportList,
	}
}

// Arrange builds a window-resize request.
func Arrange(gen int, metrics Metrics) Request {
	return Request{"type": "arrange", "gen": gen, "metrics": metrics}
}

// Refresh requests a full resend of state; gen is always 0 per spec.
func Refresh() Request {
	return Request{"type": "refresh", "gen": 0}
}

// Line builds a line-input response.
func Line(gen, window int, value string) Request {
	return Request{"type": "line", "gen": gen, "window": window, "value": value}
}

// Char builds a char-input response. value may be a one-rune string or a
// named special key (see Char in the command package).
func Char(gen, window int, value string) Request {
	return Request{"type": "char", "gen": gen, "window": window, "value": value}
}

// Hyperlink builds a hyperlink-click response.
func Hyperlink(gen, window, linkValue int) Request {
	return Request{"type": "hyperlink", "gen": gen, "window": window, "value": linkValue}
}

// Mouse builds a mouse-click response.
func Mouse(gen, window, x, y int) Request {
	return Request{"type": "mouse", "gen": gen, "window": window, "x": x, "y": y}
}

// Timer builds a timer-tick event.
func Timer(gen int) Request {
	return Request{"type": "timer", "gen": gen}
}

// FilerefPrompt builds a response to a special fileref_prompt request.
func FilerefPrompt(gen int, value string) Request {
	return Request{"type": "specialresponse", "gen": gen, "response": "fileref_prompt", "value": value}
}

// DebugInput builds a developer debug-console input request.
func DebugInput(gen int, value string) Request {
	return Request{"type": "debuginput", "gen": gen, "value": value}
}

// Encode serializes a Request as a single line of JSON (no trailing
// newline; the channel layer is responsible for framing).
func Encode(r Request) ([]byte, error) {
	return json.Marshal(r)
}

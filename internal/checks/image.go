package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ifregtest/ifregtest/internal/display"
)

// ImageSpan requires a Special image span matching the given image id plus
// every other provided optional constraint. Written as
// "{image=17 width=64 height=64 alignment=top}".
type ImageSpan struct {
	base
	ImageID   int
	Width     *int
	Height    *int
	Alignment *string
	X         *int
	Y         *int
}

func (i *ImageSpan) String() string {
	return fmt.Sprintf("ImageSpan(image=%d)", i.ImageID)
}

func (i *ImageSpan) subeval(p display.Projection) string {
	for _, sp := range spansFor(p, i.target) {
		if sp.Kind != display.SpanSpecial || sp.Special != "image" || sp.ImageID != i.ImageID {
			continue
		}
		if i.Width != nil && (sp.ImgWidth == nil || *sp.ImgWidth != *i.Width) {
			continue
		}
		if i.Height != nil && (sp.ImgHeight == nil || *sp.ImgHeight != *i.Height) {
			continue
		}
		if i.Alignment != nil && sp.Alignment != *i.Alignment {
			continue
		}
		if i.X != nil && !rawIntEquals(sp.Raw, "x", *i.X) {
			continue
		}
		if i.Y != nil && !rawIntEquals(sp.Raw, "y", *i.Y) {
			continue
		}
		return ""
	}
	return "not found"
}

var imagePrefix = regexp.MustCompile(`^\{image=(\d+)([^}]*)\}\s*`)

// ImageSpanBuilder recognizes "{image=ID key=val ...}" check lines.
type ImageSpanBuilder struct{}

func (ImageSpanBuilder) Build(line int, text string, mod Modifiers) (Check, bool) {
	m := imagePrefix.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	c := &ImageSpan{base: newBase(line, mod), ImageID: id}
	for _, field := range strings.Fields(m[2]) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "width":
			if v, err := strconv.Atoi(kv[1]); err == nil {
				c.Width = &v
			}
		case "height":
			if v, err := strconv.Atoi(kv[1]); err == nil {
				c.Height = &v
			}
		case "alignment":
			v := kv[1]
			c.Alignment = &v
		case "x":
			if v, err := strconv.Atoi(kv[1]); err == nil {
				c.X = &v
			}
		case "y":
			if v, err := strconv.Atoi(kv[1]); err == nil {
				c.Y = &v
			}
		}
	}
	return c, true
}

func rawIntEquals(raw map[string]any, key string, want int) bool {
	v, ok := raw[key]
	if !ok {
		return false
	}
	f, ok := v.(float64)
	return ok && int(f) == want
}

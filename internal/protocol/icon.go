package protocol

import (
	"fmt"
	"strings"
)

// Icon is the image shown next to an item. It is either a CharacterIcon or a
// FileIcon; the string form only exists on the wire.
type Icon interface {
	MarshalText() ([]byte, error)
	icon()
}

// CharacterIcon renders a literal glyph, optionally in a named font.
type CharacterIcon struct {
	Font  string
	Glyph string
}

// FileIcon renders an image file. Relative paths are resolved by the host
// against the plugin directory.
type FileIcon struct {
	Path string
}

func (CharacterIcon) icon() {}
func (FileIcon) icon()      {}

// MarshalText encodes the icon as character:<font>:<glyph>.
func (c CharacterIcon) MarshalText() ([]byte, error) {
	if c.Glyph == "" {
		return nil, fmt.Errorf("character icon has no glyph")
	}
	if strings.Contains(c.Font, ":") {
		return nil, fmt.Errorf("character icon font %q must not contain ':'", c.Font)
	}
	return []byte("character:" + c.Font + ":" + c.Glyph), nil
}

// MarshalText encodes the icon as file:<path>.
func (f FileIcon) MarshalText() ([]byte, error) {
	if f.Path == "" {
		return nil, fmt.Errorf("file icon has no path")
	}
	return []byte("file:" + f.Path), nil
}

// ParseIcon decodes the wire form of an icon.
func ParseIcon(s string) (Icon, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("icon %q has no kind prefix", s)
	}
	switch kind {
	case "file":
		if rest == "" {
			return nil, fmt.Errorf("icon %q has an empty path", s)
		}
		return FileIcon{Path: rest}, nil
	case "character":
		font, glyph, ok := strings.Cut(rest, ":")
		if !ok || glyph == "" {
			return nil, fmt.Errorf("icon %q must look like character:<font>:<glyph>", s)
		}
		return CharacterIcon{Font: font, Glyph: glyph}, nil
	default:
		return nil, fmt.Errorf("unknown icon kind %q", kind)
	}
}

package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Item is one result entry returned to the launcher host.
type Item struct {
	Title    string
	Subtitle string
	Badge    string
	Icon     Icon
	Data     string
	DataText string
	Action   string // shell command template run on selection
	Priority *int   // higher sorts first among results from the same plugin
}

// wireItem is the on-the-wire shape of an Item. Field order is the order keys
// are emitted in.
type wireItem struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Badge    string `json:"badge,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Data     string `json:"data,omitempty"`
	DataText string `json:"data_text,omitempty"`
	Action   string `json:"action,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

// wireResults is the object-wrapped document shape.
type wireResults struct {
	Results []wireItem `json:"results"`
}

var (
	ErrMissingTitle       = errors.New("item title is required")
	ErrConflictingPayload = errors.New("item carries both a selection payload and an action")
	ErrDuplicatePayload   = errors.New("item carries both data and data_text")
)

// Validate checks the structural contract of a single item.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return ErrMissingTitle
	}
	if it.Data != "" && it.DataText != "" {
		return ErrDuplicatePayload
	}
	if (it.Data != "" || it.DataText != "") && it.Action != "" {
		return ErrConflictingPayload
	}
	return nil
}

// Priority returns a pointer suitable for Item.Priority.
func Priority(p int) *int {
	return &p
}

func (it Item) toWire() (wireItem, error) {
	w := wireItem{
		Title:    it.Title,
		Subtitle: it.Subtitle,
		Badge:    it.Badge,
		Data:     it.Data,
		DataText: it.DataText,
		Action:   it.Action,
		Priority: it.Priority,
	}
	if it.Icon != nil {
		text, err := it.Icon.MarshalText()
		if err != nil {
			return wireItem{}, fmt.Errorf("encode icon: %w", err)
		}
		w.Icon = string(text)
	}
	return w, nil
}

func (w wireItem) toItem() (Item, error) {
	it := Item{
		Title:    w.Title,
		Subtitle: w.Subtitle,
		Badge:    w.Badge,
		Data:     w.Data,
		DataText: w.DataText,
		Action:   w.Action,
		Priority: w.Priority,
	}
	if w.Icon != "" {
		icon, err := ParseIcon(w.Icon)
		if err != nil {
			return Item{}, err
		}
		it.Icon = icon
	}
	return it, nil
}

// Format selects the top-level shape of the output document.
type Format string

const (
	// FormatArray writes a bare JSON array. This is the canonical shape.
	FormatArray Format = "array"
	// FormatObject wraps the array as {"results": [...]} for hosts that expect it.
	FormatObject Format = "object"
)

// ParseFormat maps a config value to a Format. Empty means FormatArray.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatArray:
		return FormatArray, nil
	case FormatObject:
		return FormatObject, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be 'array' or 'object')", s)
	}
}

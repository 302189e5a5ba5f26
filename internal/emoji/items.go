package emoji

import (
	"errors"
	"strings"

	"github.com/mattjoyce/launchkit/internal/protocol"
)

// Items adapts emoji rows to result items; selecting one yields the glyph.
func Items(emojis []Emoji) []protocol.Item {
	items := make([]protocol.Item, 0, len(emojis))
	for _, e := range emojis {
		items = append(items, protocol.Item{
			Title:    e.Name,
			Subtitle: strings.Join(e.Keywords, " "),
			Badge:    e.Category,
			Icon:     protocol.CharacterIcon{Glyph: e.Glyph},
			DataText: e.Glyph,
		})
	}
	return items
}

// UpdateItem is offered in place of results when the cache is missing or stale.
func UpdateItem(action string, cause error) protocol.Item {
	subtitle := "Emoji data is missing; select to download it"
	if errors.Is(cause, ErrCacheStale) {
		subtitle = "Emoji data is incomplete; select to download it again"
	}
	return protocol.Item{
		Title:    "Update emoji data",
		Subtitle: subtitle,
		Badge:    "Emoji",
		Icon:     protocol.CharacterIcon{Glyph: "🔄"},
		Action:   action,
		Priority: protocol.Priority(100),
	}
}

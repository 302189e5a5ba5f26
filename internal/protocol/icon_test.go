package protocol

import "testing"

func TestParseIcon(t *testing.T) {
	tests := []struct {
		in      string
		want    Icon
		wantErr bool
	}{
		{in: "file:stardict.png", want: FileIcon{Path: "stardict.png"}},
		{in: "file:/usr/share/icons/a.png", want: FileIcon{Path: "/usr/share/icons/a.png"}},
		{in: "character::😀", want: CharacterIcon{Glyph: "😀"}},
		{in: "character:FontAwesome:", wantErr: true},
		{in: "character:FontAwesome:x", want: CharacterIcon{Font: "FontAwesome", Glyph: "x"}},
		{in: "character:a:b:c", want: CharacterIcon{Font: "a", Glyph: "b:c"}},
		{in: "character:x", wantErr: true},
		{in: "file:", wantErr: true},
		{in: "gtk:folder", wantErr: true},
		{in: "stardict.png", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseIcon(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIcon(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseIcon(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestIconRoundTrip(t *testing.T) {
	for _, icon := range []Icon{
		FileIcon{Path: "icons/x.png"},
		CharacterIcon{Glyph: "★"},
		CharacterIcon{Font: "Symbols", Glyph: ":"},
	} {
		text, err := icon.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%#v): %v", icon, err)
		}
		back, err := ParseIcon(string(text))
		if err != nil {
			t.Fatalf("ParseIcon(%q): %v", text, err)
		}
		if back != icon {
			t.Errorf("round trip %#v -> %q -> %#v", icon, text, back)
		}
	}
}

func TestMarshalTextRejectsEmpty(t *testing.T) {
	if _, err := (CharacterIcon{}).MarshalText(); err == nil {
		t.Error("want error for empty glyph")
	}
	if _, err := (FileIcon{}).MarshalText(); err == nil {
		t.Error("want error for empty path")
	}
	if _, err := (CharacterIcon{Font: "a:b", Glyph: "x"}).MarshalText(); err == nil {
		t.Error("want error for font containing ':'")
	}
}

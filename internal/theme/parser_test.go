package theme

import (
	"image/color"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	in := `Name: midnight
# toolbar comment
Background: #1E1E1E
ButtonText: #CCCCCCFF
NotAField: #123456
`
	th, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if th.Name != "midnight" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x1E, 0x1E, 0x1E, 0xFF}) {
		t.Errorf("background = %v", th.Background)
	}
	if th.ButtonText != (color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}) {
		t.Errorf("button text = %v", th.ButtonText)
	}
	// Fields absent from the file keep the default palette.
	if th.Foreground != Default().Foreground {
		t.Errorf("foreground = %v, want default", th.Foreground)
	}
}

func TestParseRejectsMalformedColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: 1E1E1E\n")); err == nil {
		t.Fatal("missing # accepted")
	}
	if _, err := Parse(strings.NewReader("Background: #12345\n")); err == nil {
		t.Fatal("odd-length hex accepted")
	}
}

func TestLoaderFindsEmbeddedThemes(t *testing.T) {
	l := &Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}
	for _, name := range []string{"default", "dark", "high_contrast"} {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("load %q: %v", name, err)
		}
		if th.Name != name {
			t.Errorf("loaded %q, got name %q", name, th.Name)
		}
	}
	if _, err := l.Load("no-such-theme"); err == nil {
		t.Fatal("unknown theme did not error")
	}
}

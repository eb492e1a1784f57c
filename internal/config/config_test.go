package config

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/moleskine/blobs
store = /tmp/moleskine/docs.db
default_color = #00AA00
default_width = 4

[user]
name = Sam Reviewer
id = u-1138

[notify]
save = true
export = false
upload_failure = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/moleskine/blobs" {
		t.Errorf("Expected save_dir '/tmp/moleskine/blobs', got '%s'", cfg.SaveDir)
	}
	if cfg.StorePath != "/tmp/moleskine/docs.db" {
		t.Errorf("Expected store '/tmp/moleskine/docs.db', got '%s'", cfg.StorePath)
	}
	if cfg.DefaultColor != "#00AA00" {
		t.Errorf("Expected default_color '#00AA00', got '%s'", cfg.DefaultColor)
	}
	if cfg.DefaultWidth != 4 {
		t.Errorf("Expected default_width 4, got %v", cfg.DefaultWidth)
	}
	if cfg.User.Name != "Sam Reviewer" || cfg.User.ID != "u-1138" {
		t.Errorf("Unexpected user: %+v", cfg.User)
	}

	if !cfg.Notify.Save {
		t.Error("Expected notify.save to be true")
	}
	if cfg.Notify.Export {
		t.Error("Expected notify.export to be false")
	}
	if !cfg.Notify.UploadFailure {
		t.Error("Expected notify.upload_failure to be true")
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}

	if theme.Background.R != 0x11 || theme.Background.G != 0x11 || theme.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", theme.Background)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	if _, err := Parse(strings.NewReader("[notify]\nsave = maybe\n")); err == nil {
		t.Error("expected error for non-boolean notify value")
	}
	if _, err := Parse(strings.NewReader("default_width = wide\n")); err == nil {
		t.Error("expected error for non-numeric width")
	}
	if _, err := Parse(strings.NewReader("[theme.x]\nBackground = #12\n")); err == nil {
		t.Error("expected error for bad theme color")
	}
}

func TestIdentityFallsBackToEnv(t *testing.T) {
	cfg := New()
	cfg.User.Name = "Sam Reviewer"
	if got := cfg.Identity(); got != "Sam Reviewer" {
		t.Fatalf("Identity() = %q", got)
	}

	cfg.User.Name = ""
	t.Setenv("USER", "envuser")
	if got := cfg.Identity(); got != "envuser" {
		t.Fatalf("Identity() = %q, want env fallback", got)
	}
	t.Setenv("USER", "")
	if got := cfg.Identity(); got != "unknown" {
		t.Fatalf("Identity() = %q, want unknown", got)
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/annotations
store = /home/user/annotations/docs.db
default_color = #D92626
default_width = 2

[user]
name = Sam Reviewer
id = u-1138

[notify]
save = true
export = true
upload_failure = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.StorePath != cfg2.StorePath {
		t.Errorf("StorePath mismatch: %q vs %q", cfg.StorePath, cfg2.StorePath)
	}
	if cfg.User != cfg2.User {
		t.Errorf("User mismatch: %+v vs %+v", cfg.User, cfg2.User)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if t1.Background != t2.Background {
		t.Errorf("Theme background mismatch: %v vs %v", t1.Background, t2.Background)
	}
}

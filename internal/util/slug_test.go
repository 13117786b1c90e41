package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Weddings", "weddings"},
		{"spaces", "Family Portraits", "family-portraits"},
		{"punctuation and extra whitespace", "  Casamentos & Cia!! ", "casamentos-cia"},
		{"consecutive separators", "Black -- and   White", "black-and-white"},
		{"leading trailing hyphens", "--Events--", "events"},
		{"digits", "Top 10 Shots", "top-10-shots"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
		{"tabs and newlines", "a\tb\nc", "a-b-c"},
		{"already a slug", "nature-macro", "nature-macro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyOutputIsValid(t *testing.T) {
	inputs := []string{
		"Weddings & Events",
		"  lots   of   space  ",
		"ALL CAPS!!!",
		"trailing dash -",
		"123 456",
	}

	for _, in := range inputs {
		slug := Slugify(in)
		if slug == "" {
			continue
		}
		if !IsValidSlug(slug) {
			t.Errorf("Slugify(%q) = %q is not a valid slug", in, slug)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"weddings", true},
		{"family-portraits", true},
		{"top-10", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Upper", false},
		{"with space", false},
		{"acentuação", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "photo.jpg", "photo.jpg"},
		{"spaces", "my photo.jpg", "my-photo.jpg"},
		{"path traversal", "../../etc/passwd.png", "passwd.png"},
		{"accents", "fotografía.png", "fotografia.png"},
		{"unsafe characters", `a<b>&"c#?.gif`, "abc.gif"},
		{"no extension", "snapshot", "snapshot.bin"},
		{"empty", "", "upload.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

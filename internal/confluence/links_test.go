package confluence

import "testing"

func TestResolve_Classification(t *testing.T) {
	r := NewLinkResolver("")

	tests := []struct {
		link string
		want LinkKind
	}{
		{"#section", LinkHeading},
		{"#a/b.md", LinkHeading}, // fragments win over path structure
		{"images/pic.png", LinkAttachment},
		{"sub/images/spec.pdf", LinkAttachment},
		{"other/doc.md", LinkPageReference},
		{"doc.md", LinkPageReference},
		{"other/doc.txt", LinkUnknown},
		{"plain", LinkUnknown},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.link); got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestResolve_CustomAssetsDir(t *testing.T) {
	r := NewLinkResolver("assets")
	if got := r.Resolve("assets/pic.png"); got != LinkAttachment {
		t.Errorf("Resolve(assets/pic.png) = %v, want LinkAttachment", got)
	}
	if got := r.Resolve("images/pic.png"); got != LinkUnknown {
		t.Errorf("Resolve(images/pic.png) = %v, want LinkUnknown with custom assets dir", got)
	}
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"https://example.com/page", true},
		{"http://example.com", true},
		{"//cdn.example.com/pic.png", true},
		{"images/pic.png", false},
		{"../other/doc.md", false},
		{"#section", false},
	}
	for _, tt := range tests {
		if got := isExternal(tt.target); got != tt.want {
			t.Errorf("isExternal(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

package raster

import (
	"sync"
	"testing"

	"github.com/katharostech/cast2gif/internal/term"
)

func TestGlyphCache_Lookup(t *testing.T) {
	c := NewGlyphCache(testFonts(t))

	g := c.Lookup('A', 0)
	if g == nil || g.Mask == nil {
		t.Fatal("Lookup('A') returned no mask")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after one lookup, want 1", c.Len())
	}

	// Repeated lookups hit the same entry.
	if c.Lookup('A', 0) != g {
		t.Error("second Lookup('A') returned a different glyph")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after repeat lookup, want 1", c.Len())
	}
}

func TestGlyphCache_StyleKeying(t *testing.T) {
	c := NewGlyphCache(testFonts(t))

	plain := c.Lookup('A', 0)
	bold := c.Lookup('A', term.StyleBold)
	if plain == bold {
		t.Error("bold lookup shared the plain glyph")
	}
	// Underline and reverse do not change the mask.
	if c.Lookup('A', term.StyleUnderline|term.StyleReverse) != plain {
		t.Error("underline/reverse lookup missed the plain glyph")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestGlyphCache_PlaceholderFallback(t *testing.T) {
	c := NewGlyphCache(testFonts(t))

	// Go Mono has no glyph for this plane-2 rune; the lookup must still
	// yield something drawable rather than failing the frame.
	exotic := c.Lookup('\U0002070E', 0)
	if exotic == nil {
		t.Fatal("Lookup returned nil for unmapped rune")
	}
	if c.Lookup('\U0002070E', 0) != exotic {
		t.Error("fallback glyph was not cached")
	}
	if placeholder := c.Lookup(placeholderRune, 0); placeholder.Mask == nil {
		t.Error("placeholder glyph has no mask")
	}
}

func TestGlyphCache_ConcurrentLookup(t *testing.T) {
	c := NewGlyphCache(testFonts(t))
	runes := []rune("abcdefghijklmnopqrstuvwxyz0123456789")

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r := runes[i%len(runes)]
				if g := c.Lookup(r, 0); g == nil {
					t.Errorf("Lookup(%q) returned nil", r)
					return
				}
				if g := c.Lookup(r, term.StyleBold); g == nil {
					t.Errorf("Lookup(%q, bold) returned nil", r)
					return
				}
			}
		}()
	}
	wg.Wait()

	if c.Len() != len(runes)*2 {
		t.Errorf("Len() = %d, want %d", c.Len(), len(runes)*2)
	}
}

package poem

import (
	"fmt"
	"math"
	"strings"

	"github.com/gensys/chromapoem/internal/colour"
)

const promptIntro = `You are a concrete poet, creating experimental visual poetry where the arrangement of text on the page is as important as the words themselves.`

const toneGuidelines = `Guidelines:
- If emotionally intense: use vivid, passionate language and strong imagery
- If emotionally subdued: use gentle, contemplative, quiet language
- If highly abstract: use experimental, fragmented, unexpected connections
- If clear/contemplative: use direct, accessible imagery with cohesive themes`

const poemInstructions = `Create a concrete poem (20-30 lines) that captures the emotional and aesthetic essence of this palette. The poem should:
1. Form GEOMETRIC SHAPES with the text - circles, triangles, waves, spirals, diamonds, or abstract forms
2. Use extreme horizontal spacing - words should be spread dramatically across the full width (80-120 characters wide)
3. Create visual movement through shape - the text should flow, expand, contract, or radiate
4. Let the shape reflect the emotional content - angular shapes for intensity, curves for softness, scattered for chaos
5. Reflect the colors' emotional resonance without directly naming them
6. Match the specified tone and intensity
7. Think sculptural and architectural - build the poem as a visual monument
8. INTEGRATE UNICODE GLYPHS AND SYMBOLS throughout the poem - use characters like ◆ ● ○ ◉ ◊ ▲ ▼ ◀ ▶ ★ ✦ ✧ ⬡ ⬢ ⬣ ▢ ▣ ▤ ▥ ▦ ▧ ▨ ▩ ◐ ◑ ◒ ◓ ◔ ◕ ✱ ✲ ✳ ✴ ✵ ✶ ✷ ✸ ✹ ⊕ ⊗ ⊙ ⊚ ⊛ ⊜ ⊝ ⊞ ~ · • ∘ ∙ ◌ ◍ ◎ and other decorative or geometric symbols
9. Mix words and glyphs naturally - glyphs can punctuate, frame, or replace words, creating a hybrid visual-textual experience

CRITICAL FORMATTING INSTRUCTIONS:
- Use 50-100+ spaces between words AND glyphs to create wide, expansive layouts
- Build recognizable shapes: start narrow, expand wide, contract again (like a diamond)
- Or create waves, spirals, cascades using strategic indentation and spacing
- Each line can be dramatically different in width and position
- Think of the page as a canvas - use the FULL horizontal and vertical space
- Scatter glyphs strategically to enhance the visual shape and rhythm
- Let glyphs echo or amplify the emotional tone (e.g., ◆ for sharpness, ○ for softness, ★ for brightness)

Example shape concepts:
- Expanding/contracting (diamond, hourglass)
- Circular/spiral patterns
- Wave forms (crescendo and decrescendo)
- Diagonal cascades or staircases
- Radiating outward from center
- Asymmetric, organic forms

Return ONLY the poem with its visual formatting (using spaces and line breaks). No explanations, titles, or metadata.`

// DescribeColours returns one line per palette role in the form
// "Name: #HEX (Hue: h°, Saturation: s%, Brightness: v%)".
func DescribeColours(p colour.Palette) string {
	lines := make([]string, 0, len(colour.Roles))
	for role, c := range p.All() {
		hsv := colour.RGBToHSV(c)
		lines = append(lines, fmt.Sprintf("%s: %s (Hue: %d°, Saturation: %d%%, Brightness: %d%%)",
			role, c.Hex(), hsv.H, hsv.S, hsv.V))
	}
	return strings.Join(lines, "\n")
}

// ToneInstructions renders the tone block of the prompt.
func ToneInstructions(t Tone) string {
	var b strings.Builder
	b.WriteString("The poem should be:\n")
	fmt.Fprintf(&b, "- Emotional Intensity: %s (saturation level: %d%%)\n", t.Intensity, roundInt(t.MeanSaturation))
	fmt.Fprintf(&b, "- Style: %s (color variety: %d° hue variance)\n", t.Abstraction, roundInt(t.HueVariety))
	fmt.Fprintf(&b, "- Tone: %s (brightness: %d%%)\n\n", t.Quality, roundInt(t.MeanBrightness))
	b.WriteString(toneGuidelines)
	return b.String()
}

// BuildPrompt assembles the full concrete-poetry prompt for a palette.
func BuildPrompt(p colour.Palette, t Tone) string {
	return promptIntro + "\n\nGiven this color palette:\n" +
		DescribeColours(p) + "\n\n" +
		ToneInstructions(t) + "\n\n" +
		poemInstructions
}

func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

package catalog

import "strings"

// Color is one selectable frame color with its preview swatch.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Colors is the fixed frame color catalog offered by the visualizer form.
var Colors = []Color{
	{Name: "Anthracite (RAL 7016)", Hex: "#383E42"},
	{Name: "White (RAL 9016)", Hex: "#F5F6F7"},
	{Name: "Cream (RAL 9001)", Hex: "#E7DCC8"},
	{Name: "Dark green (RAL 6009)", Hex: "#273C2C"},
	{Name: "Brown (woodgrain)", Hex: "#6B4E3D"},
	{Name: "Black (RAL 9005)", Hex: "#0A0A0A"},
}

// Finishes lists the supported frame finishes.
var Finishes = []string{"Matte", "Satin", "Textured"}

// FindColor looks up a catalog color by name, case-insensitively.
func FindColor(name string) (Color, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Colors {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Color{}, false
}

// ValidFinish reports whether name is a supported finish.
func ValidFinish(name string) bool {
	name = strings.TrimSpace(name)
	for _, f := range Finishes {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// BuildPrompt renders the generation instruction for a color/finish choice.
// The wording constrains the model to repaint frames and doors only while
// leaving the rest of the photograph untouched.
func BuildPrompt(color Color, finish string) string {
	parts := []string{
		"Replace ONLY the window frames and doors with: " + color.Name,
	}
	if color.Hex != "" {
		parts[0] += " (" + color.Hex + ")"
	}
	parts[0] += ", " + strings.ToLower(strings.TrimSpace(finish)) + ", deep uPVC style."
	parts = append(parts,
		"Match façade cladding if present.",
		"Do NOT alter walls/brickwork, roof, ground, people, vehicles, sky, or background.",
		"Keep lighting, geometry, reflections and perspective identical.",
	)
	return strings.Join(parts, " ")
}

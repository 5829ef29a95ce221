package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PicoTheme is a dark theme built around the zinc canvas fill.
type PicoTheme struct{}

var _ fyne.Theme = (*PicoTheme)(nil)

func (t *PicoTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x18, G: 0x18, B: 0x1b, A: 0xFF} // zinc-900
	case theme.ColorNameInputBackground, theme.ColorNameButton:
		return color.NRGBA{R: 0x27, G: 0x27, B: 0x2a, A: 0xFF} // zinc-800, same as the canvas
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0x60}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *PicoTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *PicoTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *PicoTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}

package components

import (
	"fmt"

	"github.com/russross/blackfriday/v2"

	"github.com/dshills/honk/internal/honk"
)

// Markdown returns a creator for components that render markdown to HTML.
//
// Props are either the markdown text itself or a map with a "text" entry.
// The HTML is only regenerated when the props change.
func Markdown(name string, mapID ...IDFunc) *Creator {
	return Define(name, func(*honk.Services, string, any) (Component, error) {
		return &markdown{}, nil
	}, mapID...)
}

type markdown struct {
	Base
	html string
}

func (m *markdown) Render(_ *honk.Honk, props any) (any, error) {
	text, err := markdownText(props)
	if err != nil {
		return nil, err
	}
	if m.Changed(props) {
		m.html = string(blackfriday.Run([]byte(text)))
	}
	return m.html, nil
}

func markdownText(props any) (string, error) {
	switch p := props.(type) {
	case string:
		return p, nil
	case map[string]any:
		if text, ok := p["text"].(string); ok {
			return text, nil
		}
	case map[string]string:
		if text, ok := p["text"]; ok {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: markdown wants text, got %T", ErrBadProps, props)
}

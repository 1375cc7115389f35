package website

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

//go:embed themes.yaml
var themesYAML []byte

const DefaultThemeID = "classic"

type Fonts struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

type Colors struct {
	Primary    string `yaml:"primary" json:"primary"`
	Accent     string `yaml:"accent" json:"accent"`
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
}

// Theme is a visual preset for a wedding website.
type Theme struct {
	ID       string                 `yaml:"id" json:"id"`
	Name     string                 `yaml:"name" json:"name"`
	Fonts    Fonts                  `yaml:"fonts" json:"fonts"`
	Colors   Colors                 `yaml:"colors" json:"colors"`
	Sections []entities.SectionType `yaml:"sections" json:"sections"`
}

// Catalog is the set of available themes in file order.
type Catalog struct {
	themes []Theme
	byID   map[string]Theme
}

// LoadCatalog returns the embedded theme catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(themesYAML)
}

// ParseCatalog parses a YAML list of themes. Every theme needs a unique id and
// only known section types.
func ParseCatalog(data []byte) (*Catalog, error) {
	var themes []Theme
	if err := yaml.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}
	if len(themes) == 0 {
		return nil, fmt.Errorf("parse themes: catalog is empty")
	}

	c := &Catalog{themes: themes, byID: make(map[string]Theme, len(themes))}
	for _, theme := range themes {
		if theme.ID == "" {
			return nil, fmt.Errorf("parse themes: theme %q has no id", theme.Name)
		}
		if _, dup := c.byID[theme.ID]; dup {
			return nil, fmt.Errorf("parse themes: duplicate theme id %q", theme.ID)
		}
		for _, st := range theme.Sections {
			if !KnownSection(st) {
				return nil, fmt.Errorf("parse themes: theme %q has unknown section %q", theme.ID, st)
			}
		}
		c.byID[theme.ID] = theme
	}
	return c, nil
}

func (c *Catalog) Get(id string) (Theme, bool) {
	theme, ok := c.byID[id]
	return theme, ok
}

func (c *Catalog) All() []Theme {
	return append([]Theme(nil), c.themes...)
}

// Default is the classic theme, or the first one when the catalog has no classic.
func (c *Catalog) Default() Theme {
	if theme, ok := c.byID[DefaultThemeID]; ok {
		return theme
	}
	return c.themes[0]
}

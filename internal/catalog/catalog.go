// Package catalog loads the stat catalog and combatant templates.
//
// A catalog file is YAML with two sections. "stats" lists every stat name in
// sensor order with its matched and exposed flags. "templates" describes
// combatant archetypes: an action list and, per stat, an initial value and a
// per-level growth.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/partybattle/internal/battle"
	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
)

//go:embed data/default.yaml
var defaultYAML []byte

// StatDef describes one stat in the catalog.
type StatDef struct {
	Name    string `yaml:"name"`
	Matched bool   `yaml:"matched"`
	Exposed bool   `yaml:"exposed"`
}

// Growth is a linear stat curve.
type Growth struct {
	Initial int `yaml:"initial"`
	Growth  int `yaml:"growth"`
}

// At returns the stat max at level (levels start at 1).
func (g Growth) At(level int) int {
	if level < 1 {
		level = 1
	}
	return g.Initial + g.Growth*(level-1)
}

// Template is a combatant archetype.
type Template struct {
	Name    string            `yaml:"name"`
	Actions []string          `yaml:"actions"`
	Stats   map[string]Growth `yaml:"stats"`
}

type document struct {
	Stats     []StatDef  `yaml:"stats"`
	Templates []Template `yaml:"templates"`
}

// Catalog is a validated catalog. It implements battle.StatCatalog.
type Catalog struct {
	stats     []StatDef
	matched   map[string]bool
	exposed   []string
	templates map[string]Template
}

var templateStats = []string{
	battle.StatHP, battle.StatMP, battle.StatStr, battle.StatDex,
	battle.StatVit, battle.StatWil, battle.StatInt, battle.StatSpd,
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeCatalogInvalid, "read catalog", map[string]string{"path": path}, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, "decode catalog", err)
	}

	c := &Catalog{
		matched:   map[string]bool{},
		templates: map[string]Template{},
	}
	seen := map[string]bool{}
	for _, s := range doc.Stats {
		name := strings.TrimSpace(s.Name)
		probe := battle.Stats{}
		if _, ok := probe.ByName(name); !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeCatalogInvalid, fmt.Sprintf("stat %q is not supported", name), map[string]string{"stat": name})
		}
		if seen[name] {
			return nil, apperrors.WithMetadata(apperrors.CodeCatalogDuplicateStat, fmt.Sprintf("stat %q listed twice", name), map[string]string{"stat": name})
		}
		seen[name] = true
		s.Name = name
		c.stats = append(c.stats, s)
		c.matched[name] = s.Matched
		if s.Exposed {
			c.exposed = append(c.exposed, name)
		}
	}
	if len(c.stats) == 0 {
		return nil, apperrors.New(apperrors.CodeCatalogInvalid, "catalog lists no stats")
	}

	for _, t := range doc.Templates {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			return nil, apperrors.New(apperrors.CodeCatalogInvalid, "template name must not be empty")
		}
		for _, stat := range templateStats {
			if _, ok := t.Stats[stat]; !ok {
				return nil, apperrors.WithMetadata(apperrors.CodeCatalogMissingStat,
					fmt.Sprintf("template %q has no %s curve", name, stat),
					map[string]string{"template": name, "stat": stat})
			}
		}
		for _, action := range t.Actions {
			if _, err := battle.AbilityByName(action); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeCatalogInvalid, fmt.Sprintf("template %q", name), err)
			}
		}
		t.Name = name
		c.templates[name] = t
	}
	return c, nil
}

// Stats returns the stat definitions in catalog order.
func (c *Catalog) Stats() []StatDef {
	out := make([]StatDef, len(c.stats))
	copy(out, c.stats)
	return out
}

// Exposed lists the stats visible to decision sources.
func (c *Catalog) Exposed() []string {
	return c.exposed
}

// IsMatched reports whether the stat always reads as its max.
func (c *Catalog) IsMatched(name string) bool {
	return c.matched[name]
}

// Templates lists template names in sorted order.
func (c *Catalog) Templates() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template looks a template up by name.
func (c *Catalog) Template(name string) (Template, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	t, ok := c.templates[key]
	if !ok {
		return Template{}, apperrors.WithMetadata(apperrors.CodeCatalogUnknownKind,
			fmt.Sprintf("template %q is not defined", name), map[string]string{"template": name})
	}
	return t, nil
}

// Attributes returns the stat maxima of the template at level.
func (t Template) Attributes(level int) battle.Attributes {
	if level < 1 {
		level = 1
	}
	return battle.Attributes{
		HP:  t.Stats[battle.StatHP].At(level),
		MP:  t.Stats[battle.StatMP].At(level),
		Str: t.Stats[battle.StatStr].At(level),
		Dex: t.Stats[battle.StatDex].At(level),
		Vit: t.Stats[battle.StatVit].At(level),
		Wil: t.Stats[battle.StatWil].At(level),
		Int: t.Stats[battle.StatInt].At(level),
		Lvl: level,
		Spd: t.Stats[battle.StatSpd].At(level),
	}
}

// ActionList returns the template's abilities in order.
func (t Template) ActionList() []battle.Ability {
	out := make([]battle.Ability, 0, len(t.Actions))
	for _, name := range t.Actions {
		a, err := battle.AbilityByName(name)
		if err != nil {
			a = battle.Idle
		}
		out = append(out, a)
	}
	return out
}

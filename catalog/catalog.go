package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/bulwark/formation"
	"github.com/nstehr/bulwark/model"
)

var ErrUnknownCard = errors.New("unknown card")

// Definition is one card as written in the catalog file.
type Definition struct {
	ID        string                `yaml:"id"`
	Name      string                `yaml:"name"`
	Attack    int                   `yaml:"attack"`
	Health    int                   `yaml:"health"`
	Tribe     string                `yaml:"tribe"`
	Cost      int                   `yaml:"cost"`
	Lane      string                `yaml:"lane"` // optional preferred lane
	Keywords  model.Keywords        `yaml:"keywords"`
	Adjacency *model.AdjacencyBonus `yaml:"adjacency"`
}

type file struct {
	Cards []Definition `yaml:"cards"`
}

// Catalog is a validated, read-only set of card definitions. Spawn is safe
// for concurrent use so one catalog can serve many battles.
type Catalog struct {
	defs    map[string]Definition
	counter atomic.Uint64
}

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{defs: make(map[string]Definition, len(f.Cards))}
	for i, d := range f.Cards {
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("card %d (%q): %w", i, d.ID, err)
		}
		if _, dup := c.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", d.ID)
		}
		c.defs[d.ID] = d
	}
	return c, nil
}

func (d Definition) validate() error {
	if d.ID == "" {
		return errors.New("missing id")
	}
	if d.Attack < 0 || d.Health < 0 || d.Cost < 0 {
		return errors.New("attack, health and cost must be non-negative")
	}
	if d.Lane != "" {
		if _, err := model.ParseLane(d.Lane); err != nil {
			return err
		}
	}
	if a := d.Adjacency; a != nil {
		if !a.Condition.Valid() {
			return fmt.Errorf("unknown adjacency condition %q", a.Condition)
		}
		if a.Condition == model.ExprCondition {
			if _, err := formation.Compile(a.Expr); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// IDs returns all card IDs, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definition returns the definition for a card ID.
func (c *Catalog) Definition(cardID string) (Definition, bool) {
	d, ok := c.defs[cardID]
	return d, ok
}

// Spawn creates a new unit instance of a card with an ID unique within
// this catalog's lifetime.
func (c *Catalog) Spawn(cardID string) (*model.Unit, error) {
	d, ok := c.defs[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	n := c.counter.Add(1)
	u := &model.Unit{
		ID:       fmt.Sprintf("%s#%d", d.ID, n),
		CardID:   d.ID,
		Name:     d.Name,
		Attack:   d.Attack,
		Health:   d.Health,
		Tribe:    d.Tribe,
		Cost:     d.Cost,
		Keywords: d.Keywords,
	}
	if u.Name == "" {
		u.Name = d.ID
	}
	if d.Lane != "" {
		l, _ := model.ParseLane(d.Lane)
		u.PreferredLane = &l
	}
	if d.Adjacency != nil {
		a := *d.Adjacency
		u.Adjacency = &a
	}
	return u, nil
}

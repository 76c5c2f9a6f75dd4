package engine

import (
	"bytes"
	_ "embed"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/events.yaml
var defaultCatalogYAML []byte

// Catalog is an immutable, validated, ordered set of events.
type Catalog struct {
	events []GameEvent
	byID   map[string]int
}

type catalogFile struct {
	Events []GameEvent `yaml:"events"`
}

// NewCatalog validates events and indexes them by id. Ids must be unique and every event id
// referenced by a prerequisite, requirement or consequence must exist.
func NewCatalog(events []GameEvent) (*Catalog, error) {
	c := &Catalog{events: make([]GameEvent, 0, len(events)), byID: make(map[string]int, len(events))}
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[ev.ID]; dup {
			return nil, errors.Wrapf(ErrDataContract, "duplicate event id %q", ev.ID)
		}
		c.byID[ev.ID] = len(c.events)
		c.events = append(c.events, ev)
	}
	for _, ev := range c.events {
		if err := c.checkRefs(ev); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) checkRefs(ev GameEvent) error {
	check := func(where string, ids []string) error {
		for _, id := range ids {
			if _, ok := c.byID[id]; !ok {
				return errors.Wrapf(ErrDataContract, "event %q %s: unknown event %q", ev.ID, where, id)
			}
		}
		return nil
	}
	if p := ev.Prerequisites; p != nil {
		if err := check("required_events", p.RequiredEvents); err != nil {
			return err
		}
		if err := check("forbidden_events", p.ForbiddenEvents); err != nil {
			return err
		}
	}
	for _, ch := range ev.Choices {
		if r := ch.Requirements; r != nil {
			if err := check("choice "+ch.ID+" required_events", r.RequiredEvents); err != nil {
				return err
			}
			if err := check("choice "+ch.ID+" forbidden_events", r.ForbiddenEvents); err != nil {
				return err
			}
		}
		if q := ch.Consequences; q != nil {
			if err := check("choice "+ch.ID+" unlock_events", q.UnlockEvents); err != nil {
				return err
			}
			if err := check("choice "+ch.ID+" lock_events", q.LockEvents); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadCatalog decodes a YAML catalog. Unknown fields are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(ErrDataContract, "decode catalog: "+err.Error())
	}
	return NewCatalog(f.Events)
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer fh.Close()
	return LoadCatalog(fh)
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalogYAML))
}

// MustDefaultCatalog panics if the embedded catalog is corrupt.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Events returns the catalog in its original order. The slice is a copy; events share
// their choice slices with the catalog and must be treated as read-only.
func (c *Catalog) Events() []GameEvent {
	if c == nil {
		return nil
	}
	return append([]GameEvent{}, c.events...)
}

// Get looks an event up by id.
func (c *Catalog) Get(id string) (GameEvent, bool) {
	if c == nil {
		return GameEvent{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return GameEvent{}, false
	}
	return c.events[i], true
}

// Len is the number of events.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.events)
}

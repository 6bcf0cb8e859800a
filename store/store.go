// Package store owns the talent record set for the lifetime of the process: it is loaded once at
// startup and never modified afterwards.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/camden-git/castingvitrine/models"
	"github.com/camden-git/castingvitrine/repository"
)

// ErrTalentNotFound is returned by Get for unknown identifiers.
var ErrTalentNotFound = errors.New("talent not found")

// Catalog is an immutable, ordered talent record set.
type Catalog struct {
	records []models.Talent
	byID    map[string]int
}

// NewCatalog builds a catalog from already-validated records. Records are copied.
func NewCatalog(records []models.Talent) *Catalog {
	c := &Catalog{
		records: slices.Clone(records),
		byID:    make(map[string]int, len(records)),
	}
	for i := range c.records {
		c.byID[c.records[i].ID] = i
	}
	return c
}

// All returns the records in source order. The slice is a copy.
func (c *Catalog) All() []models.Talent {
	return slices.Clone(c.records)
}

// Len is the record count.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Get looks a record up by identifier.
func (c *Catalog) Get(id string) (*models.Talent, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTalentNotFound, id)
	}
	t := c.records[i]
	return &t, nil
}

// Source yields a fresh record set, e.g. the CMS client.
type Source interface {
	FetchTalents(ctx context.Context) ([]models.Talent, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]models.Talent, error)

func (f SourceFunc) FetchTalents(ctx context.Context) ([]models.Talent, error) { return f(ctx) }

// Loader picks the record set at startup.
type Loader struct {
	Source Source
	// Cache keeps the last good record set. It may be nil.
	Cache repository.TalentRepositoryInterface
	// FailOpen makes a source failure fall back to the cache, and then to an empty catalog,
	// instead of returning the error. Remote sources set it; the bundled set does not.
	FailOpen bool
}

// Load fetches, sanitises and caches the record set and returns it as a Catalog.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	records, err := l.Source.FetchTalents(ctx)
	if err != nil {
		if !l.FailOpen {
			return nil, fmt.Errorf("failed to load talents: %w", err)
		}
		log.Printf("Warning: talent source unavailable, falling back to cache: %v", err)
		return l.fromCache(), nil
	}

	clean := Sanitize(records)
	if l.Cache != nil {
		if err := l.Cache.ReplaceAll(clean); err != nil {
			log.Printf("Warning: failed to refresh talent cache: %v", err)
		}
	}
	log.Printf("store: loaded %d talents (%d rejected)", len(clean), len(records)-len(clean))
	return NewCatalog(clean), nil
}

func (l *Loader) fromCache() *Catalog {
	if l.Cache == nil {
		log.Printf("Warning: no talent cache configured, serving an empty catalog")
		return NewCatalog(nil)
	}
	cached, err := l.Cache.ListAll()
	if err != nil {
		log.Printf("Warning: failed to read talent cache, serving an empty catalog: %v", err)
		return NewCatalog(nil)
	}
	log.Printf("store: serving %d cached talents", len(cached))
	return NewCatalog(Sanitize(cached))
}

// Sanitize drops records that break a record invariant or repeat an earlier identifier,
// keeping the order of the rest.
func Sanitize(records []models.Talent) []models.Talent {
	seen := make(map[string]bool, len(records))
	out := make([]models.Talent, 0, len(records))
	for i := range records {
		t := records[i]
		if err := t.Validate(); err != nil {
			log.Printf("Warning: skipping invalid talent: %v", err)
			continue
		}
		if seen[t.ID] {
			log.Printf("Warning: skipping duplicate talent id %q", t.ID)
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

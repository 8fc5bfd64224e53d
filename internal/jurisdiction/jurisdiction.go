package jurisdiction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/workbook"
)

// Extractor turns one source document into records
type Extractor interface {
	// Source identifies the document in logs, usually its URL
	Source() string
	Produce(ctx context.Context) ([]record.Record, error)
}

// FormBrowser is the browser session used by reports that are generated
// through a web form
type FormBrowser interface {
	Navigate(url string) error
	SelectOption(container string, index int, text string) error
	Click(selector string) error
	// ResetDownloads gives the next report an empty download directory
	ResetDownloads() error
	Download(name string) ([]byte, error)
	Close() error
}

// Env carries the shared clients a driver builds its extractors from
type Env struct {
	Fetch   *fetch.Client
	Store   *workbook.Store
	Browser func(ctx context.Context) (FormBrowser, error)
	Now     func() time.Time

	closers []io.Closer
}

// ErrNoBrowser is returned by drivers that need a browser when none is configured
var ErrNoBrowser = errors.New("no browser configured")

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// track registers a resource to release when the driver finishes
func (e *Env) track(c io.Closer) {
	e.closers = append(e.closers, c)
}

// Close releases every resource opened on behalf of extractors
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Driver produces one output workbook
type Driver struct {
	Key    string
	Schema *record.Schema
	// Sources builds the extractors for every document of a run, oldest first
	Sources func(ctx context.Context, env *Env) ([]Extractor, error)
}

// State returns the lower-case state part of the key, e.g. "michigan"
func (d Driver) State() string {
	state, _, _ := strings.Cut(d.Key, "-")
	return state
}

// All returns every driver in key order
func All() []Driver {
	drivers := []Driver{
		arizonaOSB,
		connecticutOSB,
		connecticutIGaming,
		illinoisOSB,
		indianaCasino,
		indianaOSB,
		iowaOSB,
		kansasOSB,
		marylandOSB,
		michiganOSB,
		michiganIGaming,
		michiganRetailOSB,
		newJerseyIGaming,
		newJerseyOSB,
		newYorkOSB,
		pennsylvaniaOSB,
		pennsylvaniaIGaming,
		westVirginiaOSB,
		westVirginiaIGaming,
	}
	sort.SliceStable(drivers, func(i, j int) bool { return drivers[i].Key < drivers[j].Key })
	return drivers
}

// Lookup resolves names to drivers. A name is either a full key such as
// "michigan-igaming" or a state such as "michigan", which selects all of that
// state's drivers.
func Lookup(names ...string) ([]Driver, error) {
	all := All()
	var out []Driver
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		name = strings.ReplaceAll(name, " ", "")
		found := false
		for _, d := range all {
			if d.Key != name && d.State() != name {
				continue
			}
			found = true
			if !seen[d.Key] {
				seen[d.Key] = true
				out = append(out, d)
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown driver: %s", name)
		}
	}
	return out, nil
}

// source adapts a function to Extractor
type source struct {
	name    string
	produce func(ctx context.Context) ([]record.Record, error)
}

func (s *source) Source() string {
	return s.name
}

func (s *source) Produce(ctx context.Context) ([]record.Record, error) {
	return s.produce(ctx)
}

func newSource(name string, produce func(ctx context.Context) ([]record.Record, error)) Extractor {
	return &source{name: name, produce: produce}
}

// subCategoryOrder is the usual Retail, Online, Total ranking
var subCategoryOrder = map[string][]string{
	record.ColSubCategory: {record.Retail, record.Online, record.Total},
}

// findLinks wraps link discovery with a log line per listing
func findLinks(ctx context.Context, env *Env, listing string, hrefKeys, textKeys []string) ([]string, error) {
	links, err := env.Fetch.FindLinks(ctx, listing, hrefKeys, textKeys)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered report links", logger.Fields{"listing": listing, "count": len(links)})
	return links, nil
}

package modal

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/lightbox/internal/core/events"
	"github.com/hay-kot/lightbox/internal/core/fx"
	"github.com/hay-kot/lightbox/internal/core/page"
)

// Set holds the modals of one page, addressable by identifier.
type Set struct {
	order []*Controller
	byID  map[string]*Controller
}

// Attach creates a controller for every element carrying SourceClass, in
// document order. Empty or duplicate identifiers are rejected before any
// element is touched.
func Attach(doc *page.Document, bus *events.Bus, engine *fx.Engine, opts Options) (*Set, error) {
	sources := doc.ByClass(SourceClass)
	if err := validateSources(sources); err != nil {
		return nil, err
	}

	s := &Set{byID: make(map[string]*Controller, len(sources))}
	for _, src := range sources {
		c := New(doc, src, bus, engine, opts)
		s.order = append(s.order, c)
		s.byID[c.ID()] = c
	}

	opts.Logger.Debug().Int("count", len(s.order)).Msg("modals attached")
	return s, nil
}

// Get returns the modal with the given identifier.
func (s *Set) Get(id string) (*Controller, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// All returns the modals in document order.
func (s *Set) All() []*Controller {
	return s.order
}

// Len returns the number of modals.
func (s *Set) Len() int {
	return len(s.order)
}

// Visible returns the modals whose dialog is currently shown, in document
// order.
func (s *Set) Visible() []*Controller {
	var out []*Controller
	for _, c := range s.order {
		if c.Dialog().Visible() {
			out = append(out, c)
		}
	}
	return out
}

// Warning is a non-fatal page issue.
type Warning struct {
	Item    string `json:"item"`
	Message string `json:"message"`
}

// Validate checks a page before modals are attached. Empty and duplicate
// modal identifiers are errors; modals without a trigger control and trigger
// controls without a modal are warnings.
func Validate(doc *page.Document) ([]Warning, error) {
	sources := doc.ByClass(SourceClass)
	err := validateSources(sources)

	var warnings []Warning
	ids := make(map[string]bool, len(sources))
	for _, src := range sources {
		if src.ID == "" {
			continue
		}
		ids[src.ID] = true
		if doc.ByID(TriggerID(src.ID)) == nil {
			warnings = append(warnings, Warning{
				Item:    src.ID,
				Message: fmt.Sprintf("no %q control, modal cannot be opened from the page", TriggerID(src.ID)),
			})
		}
	}

	doc.Walk(func(n *page.Node) bool {
		id, ok := strings.CutPrefix(n.ID, TriggerPrefix)
		if ok && !ids[id] {
			warnings = append(warnings, Warning{
				Item:    n.ID,
				Message: fmt.Sprintf("trigger references unknown modal %q", id),
			})
		}
		return true
	})

	return warnings, err
}

func validateSources(sources []*page.Node) error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(sources))

	for i, src := range sources {
		field := fmt.Sprintf("modals[%d].id", i)
		if strings.TrimSpace(src.ID) == "" {
			errs = errs.Append(field, fmt.Errorf("identifier is required"))
			continue
		}
		if seen[src.ID] {
			errs = errs.Append(field, fmt.Errorf("duplicate identifier %q", src.ID))
			continue
		}
		seen[src.ID] = true
	}

	return errs.ToError()
}

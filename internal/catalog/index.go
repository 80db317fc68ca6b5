package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrNotFound is returned by Index.Validate for a name missing from the catalog.
var ErrNotFound = errors.New("tool not in catalog")

// Index answers name lookups over a catalog and validates call arguments against each
// tool's input schema. Validators are compiled on first use. It is safe for concurrent use.
type Index struct {
	descs  []Descriptor
	byName map[string]int
	logger *slog.Logger

	mu         sync.Mutex
	validators map[string]*jsonschema.Schema
	broken     map[string]bool
}

// NewIndex builds an index over descs. When names repeat, the first wins. A nil logger
// means slog.Default().
func NewIndex(descs []Descriptor, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	x := &Index{
		descs:      descs,
		byName:     make(map[string]int, len(descs)),
		logger:     logger,
		validators: make(map[string]*jsonschema.Schema),
		broken:     make(map[string]bool),
	}
	for i, d := range descs {
		if _, dup := x.byName[d.Name]; !dup {
			x.byName[d.Name] = i
		}
	}
	return x
}

func (x *Index) Descriptors() []Descriptor { return x.descs }

func (x *Index) Lookup(name string) (Descriptor, bool) {
	i, ok := x.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return x.descs[i], true
}

// Validate checks args against the named tool's schema. Unknown names yield ErrNotFound.
// A schema that does not compile disables validation for that tool only.
func (x *Index) Validate(name string, args map[string]any) error {
	d, ok := x.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	sch := x.validator(d)
	if sch == nil {
		return nil
	}
	var v any = args
	if args == nil {
		v = map[string]any{}
	}
	if err := sch.Validate(v); err != nil {
		return err
	}
	return nil
}

func (x *Index) validator(d Descriptor) *jsonschema.Schema {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.broken[d.Name] {
		return nil
	}
	if sch, ok := x.validators[d.Name]; ok {
		return sch
	}
	sch, err := compile(d)
	if err != nil {
		x.broken[d.Name] = true
		x.logger.Warn("tool schema does not compile; argument validation disabled",
			slog.String("tool", d.Name), slog.Any("error", err))
		return nil
	}
	x.validators[d.Name] = sch
	return sch
}

func compile(d Descriptor) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(d.InputSchema)
	if err != nil {
		return nil, err
	}
	// Round-trip through the library's decoder so numbers keep full precision.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	loc := "mem://tools/" + url.PathEscape(d.Name) + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		return nil, err
	}
	return c.Compile(loc)
}

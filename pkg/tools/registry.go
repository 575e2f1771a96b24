package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrUnknownTool is returned when the model names a tool outside the registry.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments fail schema validation or decoding.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// ToolID identifies one entry of the closed dispatch table.
type ToolID string

const (
	ToolWeatherForecast ToolID = "get_weather_forecast"
	ToolHostnameAddress ToolID = "get_hostname_address"
)

// Parameter declares one named argument of a tool.
type Parameter struct {
	Name        string
	Type        string // JSON schema type: string, number, integer, boolean
	Description string
	Required    bool
}

// Descriptor is the declarative half of a tool: what the model is told.
type Descriptor struct {
	ID          ToolID
	Description string
	Parameters  []Parameter
}

// Name returns the wire name of the tool.
func (d Descriptor) Name() string {
	return string(d.ID)
}

// Schema renders the parameters as a JSON schema object.
func (d Descriptor) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Parameters))
	required := []string{}
	for _, p := range d.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Definition returns the OpenAI-compatible tool definition.
func (d Descriptor) Definition() map[string]interface{} {
	return map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        d.Name(),
			"description": d.Description,
			"parameters":  d.Schema(),
		},
	}
}

// Entry pairs a descriptor with its typed handler.
type Entry struct {
	Descriptor Descriptor
	argType    reflect.Type
	invoke     func(ctx context.Context, args map[string]interface{}) (string, error)
}

// Bind ties a descriptor to a handler taking a typed argument struct. Struct
// fields are matched to parameters by their json tag.
func Bind[A any](d Descriptor, handler func(ctx context.Context, args A) string) Entry {
	return Entry{
		Descriptor: d,
		argType:    reflect.TypeOf((*A)(nil)).Elem(),
		invoke: func(ctx context.Context, raw map[string]interface{}) (string, error) {
			var args A
			if err := decodeArgs(raw, &args); err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
			return handler(ctx, args), nil
		},
	}
}

// ArgFields lists the json names of the handler's argument struct fields.
func (e Entry) ArgFields() []string {
	var names []string
	for i := 0; i < e.argType.NumField(); i++ {
		tag := e.argType.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func decodeArgs(raw map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Registry is the ordered, read-only set of tools offered to the model.
// It is safe for concurrent use once built.
type Registry struct {
	entries []Entry
	schemas []*jsonschema.Schema
	byName  map[string]int
}

// NewRegistry builds a registry in declaration order. It panics on a
// duplicate name or a descriptor whose schema does not compile, both of
// which are programming errors in the static tool table.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{
		entries: entries,
		schemas: make([]*jsonschema.Schema, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		name := e.Descriptor.Name()
		if _, dup := r.byName[name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool %q", name))
		}
		r.byName[name] = i

		raw, err := json.Marshal(e.Descriptor.Schema())
		if err != nil {
			panic(fmt.Sprintf("tools: marshal schema for %q: %v", name, err))
		}
		r.schemas[i] = jsonschema.MustCompileString("file:///lookout/tools/"+name+".json", string(raw))
	}
	return r
}

// Lookup retrieves a tool by name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Names returns the registered tool names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Descriptor.Name()
	}
	return names
}

// Definitions returns OpenAI-compatible tool definitions in declaration order.
func (r *Registry) Definitions() []map[string]interface{} {
	defs := make([]map[string]interface{}, len(r.entries))
	for i, e := range r.entries {
		defs[i] = e.Descriptor.Definition()
	}
	return defs
}

// Invoke validates args against the tool's schema and runs its handler.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	i, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if err := ValidateArgs(r.schemas[i], args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return r.entries[i].invoke(ctx, args)
}

// ValidateArgs checks decoded JSON arguments against a compiled schema.
func ValidateArgs(schema *jsonschema.Schema, args map[string]interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := schema.Validate(args); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return errors.New(leafMessage(verr))
		}
		return err
	}
	return nil
}

// leafMessage flattens a validation error tree to its innermost messages.
func leafMessage(verr *jsonschema.ValidationError) string {
	if len(verr.Causes) == 0 {
		return verr.Message
	}
	msgs := make([]string, 0, len(verr.Causes))
	for _, c := range verr.Causes {
		msgs = append(msgs, leafMessage(c))
	}
	return strings.Join(msgs, "; ")
}

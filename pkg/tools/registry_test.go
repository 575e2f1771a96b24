package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForecast struct {
	calls  int
	city   string
	state  string
	result string
}

func (s *stubForecast) Lookup(_ context.Context, city, state string) string {
	s.calls++
	s.city, s.state = city, state
	return s.result
}

type stubHostname struct {
	calls    int
	hostname string
}

func (s *stubHostname) Lookup(_ context.Context, hostname string) string {
	s.calls++
	s.hostname = hostname
	return "The IP address of " + hostname + " is 192.0.2.1."
}

func TestDescriptor_Schema(t *testing.T) {
	schema := ForecastDescriptor().Schema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"city", "state"}, schema["required"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	city, ok := props["city"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "The city name", city["description"])
}

func TestDescriptor_SchemaOptionalParameter(t *testing.T) {
	d := Descriptor{
		ID: "opt",
		Parameters: []Parameter{
			{Name: "a", Type: "string", Required: true},
			{Name: "b", Type: "integer"},
		},
	}
	assert.Equal(t, []string{"a"}, d.Schema()["required"])
}

func TestRegistry_DefinitionsInOrder(t *testing.T) {
	r := NewDefaultRegistry(&stubForecast{}, &stubHostname{})

	assert.Equal(t, []string{"get_weather_forecast", "get_hostname_address"}, r.Names())

	defs := r.Definitions()
	require.Len(t, defs, 2)
	for i, def := range defs {
		assert.Equal(t, "function", def["type"])
		fn, ok := def["function"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, r.Names()[i], fn["name"])
		assert.NotEmpty(t, fn["description"])
		assert.NotNil(t, fn["parameters"])
	}
}

// Every declared parameter must be a field of the handler's argument struct
// and vice versa, otherwise the model is told about arguments nobody reads.
func TestRegistry_SchemaMatchesHandlers(t *testing.T) {
	r := NewDefaultRegistry(&stubForecast{}, &stubHostname{})

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			entry, ok := r.Lookup(name)
			require.True(t, ok)

			var declared []string
			for _, p := range entry.Descriptor.Parameters {
				declared = append(declared, p.Name)
			}
			assert.ElementsMatch(t, declared, entry.ArgFields())
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewDefaultRegistry(&stubForecast{}, &stubHostname{})

	entry, ok := r.Lookup("get_hostname_address")
	require.True(t, ok)
	assert.Equal(t, ToolHostnameAddress, entry.Descriptor.ID)

	_, ok = r.Lookup("get_stock_price")
	assert.False(t, ok)
}

func TestRegistry_InvokeForecast(t *testing.T) {
	fc := &stubForecast{result: "Weather forecast for Seattle, WA:\n\n"}
	r := NewDefaultRegistry(fc, &stubHostname{})

	out, err := r.Invoke(context.Background(), "get_weather_forecast", map[string]interface{}{
		"city":  "Seattle",
		"state": "WA",
	})
	require.NoError(t, err)
	assert.Equal(t, "Weather forecast for Seattle, WA:\n\n", out)
	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, "Seattle", fc.city)
	assert.Equal(t, "WA", fc.state)
}

func TestRegistry_InvokeHostname(t *testing.T) {
	hn := &stubHostname{}
	r := NewDefaultRegistry(&stubForecast{}, hn)

	out, err := r.Invoke(context.Background(), "get_hostname_address", map[string]interface{}{
		"hostname": "www.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "The IP address of www.example.com is 192.0.2.1.", out)
	assert.Equal(t, "www.example.com", hn.hostname)
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	r := NewDefaultRegistry(&stubForecast{}, &stubHostname{})

	_, err := r.Invoke(context.Background(), "get_stock_price", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Contains(t, err.Error(), "get_stock_price")
}

func TestRegistry_InvokeInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing state", map[string]interface{}{"city": "Seattle"}},
		{"empty object", map[string]interface{}{}},
		{"nil args", nil},
		{"wrong type", map[string]interface{}{"city": 42.0, "state": "WA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &stubForecast{}
			r := NewDefaultRegistry(fc, &stubHostname{})

			_, err := r.Invoke(context.Background(), "get_weather_forecast", tt.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArguments))
			assert.Zero(t, fc.calls, "handler must not run on invalid arguments")
		})
	}
}

func TestRegistry_ExtraArgumentsIgnored(t *testing.T) {
	fc := &stubForecast{result: "ok"}
	r := NewDefaultRegistry(fc, &stubHostname{})

	out, err := r.Invoke(context.Background(), "get_weather_forecast", map[string]interface{}{
		"city":    "Austin",
		"state":   "TX",
		"country": "USA",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "Austin", fc.city)
}

func TestNewRegistry_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(
			NewHostnameTool(&stubHostname{}),
			NewHostnameTool(&stubHostname{}),
		)
	})
}

func TestBind_DecodeFailure(t *testing.T) {
	type intArgs struct {
		N int `json:"n"`
	}
	entry := Bind(Descriptor{ID: "count"}, func(_ context.Context, a intArgs) string {
		return "unreachable"
	})

	_, err := entry.invoke(context.Background(), map[string]interface{}{"n": "not a number"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArguments))
}

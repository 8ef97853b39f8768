package testctx

import (
	"net/http"
	"time"

	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// MockEffContext provides a test-friendly effect context with mocking capabilities
//
// The mock context extends the standard EffContext with test-specific features:
//   - Mock HTTP clients for hermetic network tests
//   - Pre-configured capability grants
//   - Simplified network security settings for testing
//   - Value constructor/extractor helpers
//
// Example usage:
//
//	ctx := testctx.NewMockEffContext()
//	ctx.GrantAll("IO", "Net")
//	ctx.SetHTTPClient(mockClient)
//
//	// Test a builtin
//	result, err := myBuiltin(ctx, arg1, arg2)
//	assert.NoError(t, err)
//	assert.Equal(t, expected, testctx.GetString(result))
type MockEffContext struct {
	*effects.EffContext
	HTTPClient *http.Client // Mock HTTP client for testing
}

// NewMockEffContext creates a new mock effect context for testing
//
// The mock context is pre-configured for hermetic testing:
//   - No capabilities granted by default (must call Grant or GrantAll)
//   - Deterministic seed (AIVI_SEED=42)
//   - Short timeouts (5s)
//   - Localhost allowed for testing
//   - HTTP allowed for testing
//
// Returns:
//   - A new MockEffContext ready for testing
func NewMockEffContext() *MockEffContext {
	ctx := effects.NewEffContext()

	// Configure for testing
	ctx.Env.Seed = 42 // Deterministic seed
	ctx.Net.Timeout = 5 * time.Second
	ctx.Net.AllowHTTP = true
	ctx.Net.AllowLocalhost = true

	return &MockEffContext{
		EffContext: ctx,
		HTTPClient: nil, // Will use default if not set
	}
}

// GrantAll grants multiple capabilities at once
//
// This is a convenience method for tests that need multiple capabilities.
//
// Parameters:
//   - caps: Capability names to grant (e.g., "IO", "Net", "FS")
//
// Example:
//
//	ctx.GrantAll("IO", "Net", "FS")
func (m *MockEffContext) GrantAll(caps ...string) {
	for _, cap := range caps {
		m.Grant(effects.NewCapability(cap))
	}
}

// SetHTTPClient sets a mock HTTP client for network tests
//
// Once set, GetHTTPClient returns it in place of http.DefaultClient.
// The Net effect operations build their own http.Client and do not
// consult this one.
//
// Parameters:
//   - client: A mock http.Client (can use httptest.NewServer)
//
// Example:
//
//	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    w.WriteHeader(200)
//	    w.Write([]byte(`{"status": "ok"}`))
//	}))
//	defer server.Close()
//
//	ctx.SetHTTPClient(server.Client())
func (m *MockEffContext) SetHTTPClient(client *http.Client) {
	m.HTTPClient = client
}

// SetAllowedHosts restricts network access to specific hosts
//
// This is useful for testing network security features or ensuring
// tests only access specific mock servers.
//
// Parameters:
//   - hosts: List of allowed hostnames (e.g., ["example.com", "api.test.com"])
//
// Example:
//
//	ctx.SetAllowedHosts([]string{"api.example.com"})
func (m *MockEffContext) SetAllowedHosts(hosts []string) {
	m.Net.AllowedDomains = hosts
}

// SetNetTimeout sets the network request timeout
//
// Parameters:
//   - timeout: Request timeout duration
//
// Example:
//
//	ctx.SetNetTimeout(1 * time.Second)
func (m *MockEffContext) SetNetTimeout(timeout time.Duration) {
	m.Net.Timeout = timeout
}

// GetHTTPClient returns the HTTP client to use for requests
//
// Returns the mock client if set, otherwise returns http.DefaultClient.
//
// Returns:
//   - HTTP client for network operations
func (m *MockEffContext) GetHTTPClient() *http.Client {
	if m.HTTPClient != nil {
		return m.HTTPClient
	}
	return http.DefaultClient
}

// Value Constructor Helpers
//
// These helpers make it easy to construct AIVI values from Go values
// for use in builtin tests.

// MakeString creates an AIVI eval.Text from a Go string
//
// Parameters:
//   - s: Go string value
//
// Returns:
//   - AIVI eval.Text
//
// Example:
//
//	url := testctx.MakeString("https://example.com")
func MakeString(s string) eval.Value {
	return eval.Text{Value: s}
}

// MakeInt creates an AIVI eval.Int from a Go int
//
// Parameters:
//   - n: Go int value
//
// Returns:
//   - AIVI eval.Int
//
// Example:
//
//	timeout := testctx.MakeInt(5000)
func MakeInt(n int) eval.Value {
	return eval.Int{Value: int64(n)}
}

// MakeBool creates an AIVI eval.Bool from a Go bool
//
// Parameters:
//   - b: Go bool value
//
// Returns:
//   - AIVI eval.Bool
//
// Example:
//
//	verbose := testctx.MakeBool(true)
func MakeBool(b bool) eval.Value {
	return eval.Bool{Value: b}
}

// MakeFloat creates an AIVI eval.Float from a Go float64
//
// Parameters:
//   - f: Go float64 value
//
// Returns:
//   - AIVI eval.Float
//
// Example:
//
//	pi := testctx.MakeFloat(3.14159)
func MakeFloat(f float64) eval.Value {
	return eval.Float{Value: f}
}

// MakeList creates an AIVI *eval.List from a slice of values
//
// Parameters:
//   - items: Slice of AIVI values
//
// Returns:
//   - AIVI *eval.List
//
// Example:
//
//	headers := testctx.MakeList([]eval.Value{
//	    testctx.MakeRecord(map[string]eval.Value{
//	        "name":  testctx.MakeString("Content-Type"),
//	        "value": testctx.MakeString("application/json"),
//	    }),
//	})
func MakeList(items []eval.Value) eval.Value {
	return &eval.List{Items: items}
}

// MakeRecord creates an AIVI *eval.Record from a map
//
// Parameters:
//   - fields: Map of field names to AIVI values
//
// Returns:
//   - AIVI *eval.Record
//
// Example:
//
//	user := testctx.MakeRecord(map[string]eval.Value{
//	    "id":    testctx.MakeInt(123),
//	    "name":  testctx.MakeString("Alice"),
//	    "admin": testctx.MakeBool(true),
//	})
func MakeRecord(fields map[string]eval.Value) eval.Value {
	rec := eval.NewRecord()
	for k, v := range fields {
		rec = rec.With(k, v)
	}
	return rec
}

// MakeUnit creates an AIVI unit value
//
// Returns:
//   - AIVI unit value
//
// Example:
//
//	unit := testctx.MakeUnit()
func MakeUnit() eval.Value {
	return eval.Unit{}
}

// Value Extractor Helpers
//
// These helpers extract Go values from AIVI values for assertions.

// GetString extracts a Go string from an AIVI eval.Text
//
// Parameters:
//   - v: AIVI value (must be eval.Text)
//
// Returns:
//   - Go string value
//   - Panics if v is not a eval.Text
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	assert.Equal(t, "expected", testctx.GetString(result))
func GetString(v eval.Value) string {
	return v.(eval.Text).Value
}

// GetInt extracts a Go int from an AIVI eval.Int
//
// Parameters:
//   - v: AIVI value (must be eval.Int)
//
// Returns:
//   - Go int value
//   - Panics if v is not an eval.Int
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	assert.Equal(t, 42, testctx.GetInt(result))
func GetInt(v eval.Value) int {
	return int(v.(eval.Int).Value)
}

// GetBool extracts a Go bool from an AIVI eval.Bool
//
// Parameters:
//   - v: AIVI value (must be eval.Bool)
//
// Returns:
//   - Go bool value
//   - Panics if v is not a eval.Bool
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	assert.True(t, testctx.GetBool(result))
func GetBool(v eval.Value) bool {
	return v.(eval.Bool).Value
}

// GetFloat extracts a Go float64 from an AIVI eval.Float
//
// Parameters:
//   - v: AIVI value (must be eval.Float)
//
// Returns:
//   - Go float64 value
//   - Panics if v is not a eval.Float
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	assert.InDelta(t, 3.14, testctx.GetFloat(result), 0.01)
func GetFloat(v eval.Value) float64 {
	return v.(eval.Float).Value
}

// GetList extracts a slice of values from an AIVI *eval.List
//
// Parameters:
//   - v: AIVI value (must be *eval.List)
//
// Returns:
//   - Slice of AIVI values
//   - Panics if v is not a *eval.List
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	items := testctx.GetList(result)
//	assert.Len(t, items, 3)
func GetList(v eval.Value) []eval.Value {
	return v.(*eval.List).Items
}

// GetRecord extracts a map from an AIVI *eval.Record
//
// Parameters:
//   - v: AIVI value (must be *eval.Record)
//
// Returns:
//   - Map of field names to AIVI values
//   - Panics if v is not a *eval.Record
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	fields := testctx.GetRecord(result)
//	assert.Equal(t, "Alice", testctx.GetString(fields["name"]))
func GetRecord(v eval.Value) map[string]eval.Value {
	return v.(*eval.Record).Fields
}

// IsUnit checks if a value is a unit value
//
// Parameters:
//   - v: AIVI value
//
// Returns:
//   - true if v is a eval.Unit
//
// Example:
//
//	result, _ := myBuiltin(ctx, arg)
//	assert.True(t, testctx.IsUnit(result))
func IsUnit(v eval.Value) bool {
	_, ok := v.(eval.Unit)
	return ok
}

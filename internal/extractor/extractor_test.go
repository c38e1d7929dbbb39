package extractor

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/models"
)

func orderOf(t *testing.T, meta models.PluginMeta) int {
	t.Helper()
	require.NotNil(t, meta.Order, "order should always be resolved")
	return *meta.Order
}

func TestExtract_EnforceResolvesOrder(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"pre", `export default defineNuxtPlugin({ enforce: 'pre', setup () {} })`, -20},
		{"default", `export default defineNuxtPlugin({ enforce: 'default', setup () {} })`, 0},
		{"post", `export default defineNuxtPlugin({ enforce: 'post', setup () {} })`, 20},
		{"absent", `export default defineNuxtPlugin({ setup () {} })`, 0},
		{"unknown label", `export default defineNuxtPlugin({ enforce: 'later', setup () {} })`, 0},
		{"explicit order wins", `export default defineNuxtPlugin({ enforce: 'post', order: 5, setup () {} })`, 5},
		{"zero order is unset", `export default defineNuxtPlugin({ enforce: 'post', order: 0, setup () {} })`, 20},
		{"negative order", `export default defineNuxtPlugin({ order: -5, setup () {} })`, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := New().Extract(tt.code, models.DialectTS)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, orderOf(t, meta))
			assert.Nil(t, meta.Enforce, "enforce must be dropped once order is resolved")
		})
	}
}

func TestExtract_PayloadPlugin(t *testing.T) {
	e := New()

	meta, err := e.Extract(`export default definePayloadPlugin(() => {})`, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, -40, orderOf(t, meta))

	// The metadata argument replaces the seeded reviver order outright.
	meta, err = e.Extract(`export default definePayloadPlugin(() => {}, { name: 'revive' })`, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, 0, orderOf(t, meta))
	assert.Equal(t, "revive", *meta.Name)

	meta, err = e.Extract(`export default definePayloadPlugin(() => {}, { order: -35 })`, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, -35, orderOf(t, meta))
}

func TestExtract_DescriptorWinsOverMetadataArgument(t *testing.T) {
	code := `export default defineNuxtPlugin({ name: 'x', setup () {} }, { name: 'y', order: 5 })`

	meta, err := New().Extract(code, models.DialectTS)
	require.NoError(t, err)
	require.NotNil(t, meta.Name)
	assert.Equal(t, "x", *meta.Name)
	assert.Equal(t, 5, orderOf(t, meta))
}

func TestExtract_DependsOn(t *testing.T) {
	e := New()

	meta, err := e.Extract(`export default defineNuxtPlugin({ dependsOn: ['a', "b"], setup () {} })`, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, meta.DependsOn)

	invalid := []string{
		`export default defineNuxtPlugin({ dependsOn: [1, 'b'], setup () {} })`,
		`export default defineNuxtPlugin({ dependsOn: ['a', other], setup () {} })`,
		`export default defineNuxtPlugin({ dependsOn: ['a', , 'b'], setup () {} })`,
		`export default defineNuxtPlugin({ dependsOn: 'a', setup () {} })`,
	}
	for _, code := range invalid {
		t.Run(code, func(t *testing.T) {
			_, err := e.Extract(code, models.DialectTS)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidDependsOn))
		})
	}

	// non-literal dependsOn is ignored rather than rejected
	meta, err = e.Extract(`export default defineNuxtPlugin({ dependsOn: deps, setup () {} })`, models.DialectTS)
	require.NoError(t, err)
	assert.Nil(t, meta.DependsOn)
}

func TestExtract_InvalidMetadata(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"spread in descriptor", `export default defineNuxtPlugin({ ...base, setup () {} })`},
		{"computed key", `export default defineNuxtPlugin({ [key]: 1, setup () {} })`},
		{"numeric key", `export default defineNuxtPlugin({ 1: 1, setup () {} })`},
		{"metadata argument not an object", `export default definePayloadPlugin(() => {}, meta)`},
		{"spread in metadata argument", `export default definePayloadPlugin(() => {}, { ...meta })`},
		{"unsupported unary", `export default defineNuxtPlugin({ order: +5, setup () {} })`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Extract(tt.code, models.DialectTS)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidMetadata), "got %v", err)
		})
	}
}

func TestExtract_IgnoresNonLiteralValues(t *testing.T) {
	code := `const n = 'dyn'
export default defineNuxtPlugin({ name: n, order: base + 1, enforce: mode, hooks: {}, setup () {} })`

	meta, err := New().Extract(code, models.DialectTS)
	require.NoError(t, err)
	assert.Nil(t, meta.Name)
	assert.Equal(t, 0, orderOf(t, meta))
}

func TestExtract_IgnoresIncompatibleLiterals(t *testing.T) {
	code := `export default defineNuxtPlugin({ name: 42, order: 'late', enforce: true, setup () {} })`

	meta, err := New().Extract(code, models.DialectTS)
	require.NoError(t, err)
	assert.Nil(t, meta.Name)
	assert.Equal(t, 0, orderOf(t, meta))
}

func TestExtract_StringKeys(t *testing.T) {
	code := `export default defineNuxtPlugin({ 'name': 'quoted', "order": 3, setup () {} })`

	meta, err := New().Extract(code, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, "quoted", *meta.Name)
	assert.Equal(t, 3, orderOf(t, meta))
}

func TestExtract_UnrelatedModule(t *testing.T) {
	meta, err := New().Extract(`export const a = 1`, models.DialectTS)
	require.NoError(t, err)
	assert.True(t, meta.IsEmpty())
}

func TestExtract_FastRejectsFunctionalPlugins(t *testing.T) {
	e := New()

	meta, err := e.Extract(`export default defineNuxtPlugin(() => {}, { name: 'x' })`, models.DialectTS)
	require.NoError(t, err)
	assert.True(t, meta.IsEmpty())

	meta, err = e.Extract(`export default defineNuxtPlugin(setup)`, models.DialectTS)
	require.NoError(t, err)
	assert.True(t, meta.IsEmpty())

	assert.Equal(t, int64(0), e.Parses())
}

func TestExtract_CachesByExactSource(t *testing.T) {
	e := New()
	code := `export default defineNuxtPlugin({ name: 'cached', enforce: 'pre', setup () {} })`

	first, err := e.Extract(code, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Parses())

	second, err := e.Extract(code, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Parses(), "second extraction must not re-parse")
	assert.Equal(t, first, second)

	// a single extra space is a different key
	_, err = e.Extract(code+" ", models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.Parses())

	// callers cannot mutate the cached record
	*second.Name = "changed"
	third, err := e.Extract(code, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, "cached", *third.Name)
}

func TestExtract_ResetCache(t *testing.T) {
	e := New(WithCacheSize(4))
	code := `export default defineNuxtPlugin({ setup () {} })`

	_, err := e.Extract(code, models.DialectTS)
	require.NoError(t, err)
	e.ResetCache()
	_, err = e.Extract(code, models.DialectTS)
	require.NoError(t, err)

	assert.Equal(t, int64(2), e.Parses())
	assert.Equal(t, uint64(1), e.CacheStats().Generation)
}

func TestExtract_ErrorsAreNotCached(t *testing.T) {
	e := New()
	code := `export default defineNuxtPlugin({ ...base })`

	_, err := e.Extract(code, models.DialectTS)
	require.Error(t, err)
	_, err = e.Extract(code, models.DialectTS)
	require.Error(t, err)
	assert.Equal(t, int64(2), e.Parses())
}

func TestExtractModule_ReportsLocation(t *testing.T) {
	code := "export default defineNuxtPlugin({\n  ...base,\n})"

	_, err := New().ExtractModule("plugins/broken.ts", code)
	require.Error(t, err)

	var pe errors.PluginMetaError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, "plugins/broken.ts", pe.Location().File)
	assert.Equal(t, 2, pe.Location().Line)
	assert.Equal(t, 3, pe.Location().Column)
}

func TestExtract_TSXDialect(t *testing.T) {
	code := `export default defineNuxtPlugin({ name: 'jsx', setup () { return <div /> } })`

	meta, err := New().ExtractModule("plugins/view.tsx", code)
	require.NoError(t, err)
	assert.Equal(t, "jsx", *meta.Name)
}

func TestExtract_ConcurrentSameSource(t *testing.T) {
	e := New()
	code := `export default defineNuxtPlugin({ name: 'race', order: 7, setup () {} })`

	var wg sync.WaitGroup
	results := make([]models.PluginMeta, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			meta, err := e.Extract(code, models.DialectTS)
			assert.NoError(t, err)
			results[i] = meta
		}(i)
	}
	wg.Wait()

	for _, meta := range results {
		assert.Equal(t, results[0], meta)
	}
}

func TestExtractMetadata_UsesDefault(t *testing.T) {
	meta, err := ExtractMetadata(`export default defineNuxtPlugin({ name: 'default-extractor', setup () {} })`, models.DialectTS)
	require.NoError(t, err)
	assert.Equal(t, "default-extractor", *meta.Name)
}

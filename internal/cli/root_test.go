package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/pluginmeta/internal/registry"
)

const pluginSource = "export default defineNuxtPlugin({ name: 'a', enforce: 'pre', setup() {} })\n"

// run executes the command line in an isolated working directory
func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute("1.2.3", args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func setup(t *testing.T) (dir, plugins string) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	dir = t.TempDir()
	t.Chdir(dir)

	plugins = filepath.Join(dir, "plugins")
	require.NoError(t, os.MkdirAll(plugins, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(plugins, "a.ts"), []byte(pluginSource), 0o644))
	return dir, plugins
}

func TestVersion(t *testing.T) {
	setup(t)

	stdout, _, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "pluginmeta 1.2.3\n", stdout)
}

func TestExtract_JSON(t *testing.T) {
	_, plugins := setup(t)

	stdout, stderr, code := run(t, "extract", "-o", "json", plugins)
	require.Equal(t, 0, code, stderr)

	var manifest registry.Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &manifest))
	require.Len(t, manifest.Plugins, 1)

	p := manifest.Plugins[0]
	assert.Equal(t, filepath.ToSlash(filepath.Join(plugins, "a.ts")), p.Src)
	require.NotNil(t, p.Name)
	assert.Equal(t, "a", *p.Name)
	require.NotNil(t, p.Order)
	assert.Equal(t, -20, *p.Order)
	assert.Nil(t, p.Enforce)
}

func TestExtract_InvalidMetadata(t *testing.T) {
	_, plugins := setup(t)
	bad := filepath.Join(plugins, "bad.ts")
	require.NoError(t, os.WriteFile(bad, []byte("export default defineNuxtPlugin({ ...base })\n"), 0o644))

	stdout, stderr, code := run(t, "extract", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERROR: [InvalidMetadata]")
	assert.Contains(t, stdout, "plugins: []")
}

func TestExtract_UnknownFormat(t *testing.T) {
	_, plugins := setup(t)

	_, stderr, code := run(t, "extract", "-o", "xml", plugins)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown registry format")
}

func TestRegistryBuildAndList(t *testing.T) {
	dir, plugins := setup(t)
	manifest := filepath.Join(dir, "registry.toml")

	_, stderr, code := run(t, "registry", "build", plugins, "-o", manifest)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, manifest)
	assert.Contains(t, stderr, "Wrote 1 plugins")

	stdout, stderr, code := run(t, "registry", "list", "--registry", manifest)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "ORDER")
	assert.Contains(t, stdout, "-20")
	assert.Contains(t, stdout, "user-pre")
	assert.Contains(t, stdout, "a.ts")
}

func TestRegistryBuild_NoOutput(t *testing.T) {
	_, plugins := setup(t)

	_, stderr, code := run(t, "registry", "build", plugins)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no registry manifest path")
}

func TestRegistry_FromConfig(t *testing.T) {
	dir, plugins := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pluginmeta.yaml"), []byte("registry: registry.json\n"), 0o644))

	_, stderr, code := run(t, "registry", "build", plugins)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "registry.json"))
}

func TestStrip_Print(t *testing.T) {
	dir, plugins := setup(t)
	manifest := filepath.Join(dir, "registry.yaml")
	_, stderr, code := run(t, "registry", "build", plugins, "-o", manifest)
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code := run(t, "strip", "--registry", manifest, plugins)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "(edited)")
	assert.Contains(t, stdout, "export default defineNuxtPlugin({ setup() {} })")

	original, err := os.ReadFile(filepath.Join(plugins, "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, pluginSource, string(original))
}

func TestStrip_PrintWithInlineMap(t *testing.T) {
	dir, plugins := setup(t)
	manifest := filepath.Join(dir, "registry.yaml")
	_, stderr, code := run(t, "registry", "build", plugins, "-o", manifest)
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code := run(t, "--no-color", "strip", "--registry", manifest, "--map", plugins)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "export default defineNuxtPlugin({ setup() {} })")
	assert.Contains(t, stdout, "//# sourceMappingURL=data:application/json;charset=utf-8;base64,")
	assert.Contains(t, stderr, "edited: 1")
	assert.NotContains(t, stderr, "\x1b[")
	assert.NoFileExists(t, filepath.Join(plugins, "a.ts.map"))
}

func TestStrip_WriteWithMap(t *testing.T) {
	dir, plugins := setup(t)
	manifest := filepath.Join(dir, "registry.yaml")
	_, stderr, code := run(t, "registry", "build", plugins, "-o", manifest)
	require.Equal(t, 0, code, stderr)

	_, stderr, code = run(t, "strip", "--registry", manifest, "--write", "--map", plugins)
	require.Equal(t, 0, code, stderr)

	file := filepath.Join(plugins, "a.ts")
	edited, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "export default defineNuxtPlugin({ setup() {} })\n", string(edited))

	raw, err := os.ReadFile(file + ".map")
	require.NoError(t, err)
	var sm struct {
		Version  int      `json:"version"`
		Sources  []string `json:"sources"`
		Mappings string   `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal(raw, &sm))
	assert.Equal(t, 3, sm.Version)
	assert.NotEmpty(t, sm.Mappings)
}

func TestStrip_UnregisteredFileUntouched(t *testing.T) {
	dir, plugins := setup(t)
	manifest := filepath.Join(dir, "registry.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"plugins": []}`), 0o644))

	stdout, stderr, code := run(t, "strip", "--registry", manifest, plugins)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Processed 1 plugins")
	assert.Contains(t, stderr, "unchanged: 1")
	assert.Contains(t, stderr, "edited: 0")
}

func TestStrip_NoRegistry(t *testing.T) {
	_, plugins := setup(t)

	_, stderr, code := run(t, "strip", plugins)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no registry manifest configured")
}

func TestGlobalFlags(t *testing.T) {
	setup(t)

	_, stderr, code := run(t, "--verbose", "--quiet", "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "none of the others can be")

	_, stderr, code = run(t, "--config", "missing.yaml", "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ERROR")
}

func TestQuietSuppressesInfo(t *testing.T) {
	dir, plugins := setup(t)
	manifest := filepath.Join(dir, "registry.yaml")

	_, stderr, code := run(t, "--quiet", "registry", "build", plugins, "-o", manifest)
	require.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

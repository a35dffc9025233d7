package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStore(t *testing.T) {
	store := NewValueStore()

	data := map[string]any{"key": "value"}
	store.Store(data)

	loaded := store.Load()
	if loaded["key"] != "value" {
		t.Error("Load failed")
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Load()
		}()
	}
	wg.Wait()
}

func TestPathCache(t *testing.T) {
	cache := &PathCache{}

	parts := cache.GetPathSegments("Host:DotnetRoot.x64")
	assert.Equal(t, []string{"host", "dotnetroot", "x64"}, parts)

	// 第二次读取走缓存
	assert.Equal(t, parts, cache.GetPathSegments("Host:DotnetRoot.x64"))
	assert.Empty(t, cache.GetPathSegments(""))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildMergesSourcesInOrder(t *testing.T) {
	yamlPath := writeFile(t, "nethost.yaml", `
host:
  manifest: custom.json
  dotnetRoot: /opt/dotnet
logging:
  level: debug
`)
	jsonPath := writeFile(t, "override.json", `{"logging": {"format": "json"}}`)

	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{"host": map[string]any{"manifest": "net-host.json", "mode": "run"}}).
		AddYamlFile(yamlPath).
		AddJsonFile(jsonPath).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "custom.json", cfg.Get("host:manifest"))
	assert.Equal(t, "run", cfg.Get("host.mode"))
	assert.Equal(t, "/opt/dotnet", cfg.Get("host:dotnetRoot"))
	assert.Equal(t, "debug", cfg.Get("logging:level"))
	assert.Equal(t, "json", cfg.Get("logging:format"))
	assert.Equal(t, "fallback", cfg.GetWithDefault("logging:file", "fallback"))
}

func TestKeysAreCaseInsensitive(t *testing.T) {
	yamlPath := writeFile(t, "nethost.yaml", "host:\n  dotnetRoot: /yaml/dotnet\n  workDir: /srv/app\n")
	t.Setenv("NETHOST_HOST_DOTNETROOT", "/env/dotnet")

	cfg, err := NewConfigurationBuilder().
		AddYamlFile(yamlPath).
		AddEnvironmentVariables("NETHOST_").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "/env/dotnet", cfg.Get("host:dotnetRoot"))
	assert.Equal(t, "/env/dotnet", cfg.Get("HOST.DOTNETROOT"))
	assert.Equal(t, "/srv/app", cfg.Get("host:workdir"))

	type hostSettings struct {
		DotnetRoot string `json:"dotnetRoot"`
		WorkDir    string `json:"workDir"`
	}
	s, err := Load[hostSettings](cfg, "Host")
	require.NoError(t, err)
	assert.Equal(t, hostSettings{DotnetRoot: "/env/dotnet", WorkDir: "/srv/app"}, s)
}

func TestOptionalFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewConfigurationBuilder().AddYamlFile(missing, true).AddJsonFile(missing+".json", true).Build()
	assert.NoError(t, err)

	_, err = NewConfigurationBuilder().AddJsonFile(missing + ".json").Build()
	assert.Error(t, err)
}

func TestInvalidJson(t *testing.T) {
	path := writeFile(t, "bad.json", `{"assemblyPath": `)
	_, err := NewConfigurationBuilder().AddJsonFile(path).Build()
	assert.ErrorContains(t, err, "failed to parse JSON")

	path = writeFile(t, "null.json", `null`)
	_, err = NewConfigurationBuilder().AddJsonFile(path).Build()
	assert.Error(t, err)
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("NETHOST_HOST_DOTNETROOT", "/env/dotnet")
	t.Setenv("NETHOST_LOGGING_LEVEL", "warn")
	t.Setenv("NETHOST_RETRIES", "3")

	cfg, err := NewConfigurationBuilder().AddEnvironmentVariables("NETHOST_").Build()
	require.NoError(t, err)

	assert.Equal(t, "/env/dotnet", cfg.Get("host:dotnetroot"))
	assert.Equal(t, "warn", cfg.Get("logging:level"))

	n, err := cfg.GetInt("retries")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBindAndLoad(t *testing.T) {
	type hostSettings struct {
		Manifest   string `json:"manifest"`
		DotnetRoot string `json:"dotnetRoot"`
	}

	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{"host": map[string]any{"manifest": "a.json"}}).
		Build()
	require.NoError(t, err)

	s, err := Load[hostSettings](cfg, "host")
	require.NoError(t, err)
	assert.Equal(t, "a.json", s.Manifest)

	_, err = Load[hostSettings](cfg, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	s, err = LoadOrDefault(cfg, "missing", hostSettings{Manifest: "net-host.json"})
	require.NoError(t, err)
	assert.Equal(t, "net-host.json", s.Manifest)

	s, err = LoadOrDefault(cfg, "host", hostSettings{DotnetRoot: "/usr/share/dotnet"})
	require.NoError(t, err)
	assert.Equal(t, "a.json", s.Manifest)
	assert.Equal(t, "/usr/share/dotnet", s.DotnetRoot)
}

func TestGetSectionAndGetAll(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{"logging": map[string]any{"level": "info", "color": true}}).
		Build()
	require.NoError(t, err)

	section := cfg.GetSection("logging")
	assert.Equal(t, "info", section.Get("level"))
	color, err := section.GetBool("color")
	require.NoError(t, err)
	assert.True(t, color)

	all := cfg.GetAll()
	all["logging"].(map[string]any)["level"] = "mutated"
	assert.Equal(t, "info", cfg.Get("logging:level"))

	assert.Empty(t, cfg.GetSection("nope").GetAll())
}

func BenchmarkConfigGet(b *testing.B) {
	config, _ := NewConfigurationBuilder().AddInMemory(map[string]any{
		"host": map[string]any{
			"manifest": "net-host.json",
		},
	}).Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		config.Get("host:manifest")
	}
}

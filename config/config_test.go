package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sjzsdu/explorer/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withHome 把配置目录指向临时目录并清空已有配置
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	config.ClearAllConfig()
	t.Cleanup(config.ClearAllConfig)
	return home
}

func writeConfigFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".explorer")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte(content), 0644))
}

func TestGetConfigKeyForms(t *testing.T) {
	withHome(t)
	t.Setenv("EXPLORER_WORKERS", "8")
	t.Setenv("PLAIN_SETTING", "poll")

	tests := []struct {
		key      string
		expected string
	}{
		{"workers", "8"},
		{"EXPLORER_WORKERS", "8"},
		{"PLAIN_SETTING", "poll"},
		{"EXPLORER_MISSING", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, config.GetConfig(tt.key))
		})
	}

	assert.Equal(t, "8", config.GetConfigWithDefault("workers", "2"))
	assert.Equal(t, "2", config.GetConfigWithDefault("missing", "2"))
}

func TestLoadConfigSkipsCommentsAndTrims(t *testing.T) {
	home := withHome(t)
	writeConfigFile(t, home, `# explorer config

  watch = poll
EXPLORER_LANG=zh
	# exclude=vendor
debounce =  80ms
exclude = node_modules, *.tmp
`)

	require.NoError(t, config.LoadConfig())
	assert.Equal(t, "poll", config.GetConfig("watch"))
	assert.Equal(t, "zh", config.GetConfig("lang"))
	assert.Equal(t, "80ms", config.GetConfig("debounce"))
	assert.Equal(t, "node_modules, *.tmp", config.GetConfig("exclude"))
	assert.Equal(t, map[string]string{
		"EXPLORER_WATCH":    "poll",
		"EXPLORER_LANG":     "zh",
		"EXPLORER_DEBOUNCE": "80ms",
		"EXPLORER_EXCLUDE":  "node_modules, *.tmp",
	}, config.GetConfigMap())
}

func TestLoadConfigMalformedLine(t *testing.T) {
	home := withHome(t)
	writeConfigFile(t, home, "watch=poll\nnot a setting\n= value\nlang=zh\n")

	err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "line 3")
	// 其余的行仍然生效
	assert.Equal(t, "poll", config.GetConfig("watch"))
	assert.Equal(t, "zh", config.GetConfig("lang"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	withHome(t)
	require.NoError(t, config.LoadConfig())
	assert.Empty(t, config.GetConfigMap())
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	home := withHome(t)
	t.Setenv("EXPLORER_WATCH", "none")
	writeConfigFile(t, home, "watch=poll\nlang=zh\n")

	require.NoError(t, config.LoadConfig())
	assert.Equal(t, "none", config.GetConfig("watch"))
	assert.Equal(t, "zh", config.GetConfig("lang"))
	assert.Equal(t, "poll", config.GetConfigMap()["EXPLORER_WATCH"])

	// 清除配置不会影响外部设置的环境变量
	config.ClearAllConfig()
	assert.Equal(t, "none", config.GetConfig("watch"))
	assert.Equal(t, "", config.GetConfig("lang"))
}

func TestSetConfigValidates(t *testing.T) {
	withHome(t)

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"简短键", "watch", "poll", false},
		{"环境变量键", "EXPLORER_LANG", "zh", false},
		{"两侧空白", " workers ", " 4 ", false},
		{"空值", "debounce", "", false},
		{"不在可选值中", "watch", "inotify", true},
		{"无效时长", "poll_interval", "soon", true},
		{"无效整数", "workers", "many", true},
		{"无效排序", "sort", "size", true},
		{"未知的键", "colour", "blue", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := config.GetConfig(tt.key)
			err := config.SetConfig(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, before, config.GetConfig(tt.key))
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Equal(t, "poll", os.Getenv("EXPLORER_WATCH"))
	assert.Equal(t, "zh", config.GetConfig("lang"))
	assert.Equal(t, "4", config.GetConfig("workers"))
	assert.ErrorIs(t, config.SetConfig("colour", "blue"), config.ErrUnknownKey)
	assert.NotContains(t, config.GetConfigMap(), "EXPLORER_COLOUR")
}

func TestSaveConfigSorted(t *testing.T) {
	home := withHome(t)

	require.NoError(t, config.SetConfig("watch", "poll"))
	require.NoError(t, config.SetConfig("debounce", "80ms"))
	require.NoError(t, config.SetConfig("lang", "zh"))
	require.NoError(t, config.SaveConfig())

	data, err := os.ReadFile(filepath.Join(home, ".explorer", "config"))
	require.NoError(t, err)
	assert.Equal(t, "# explorer config\n"+
		"EXPLORER_DEBOUNCE=80ms\n"+
		"EXPLORER_LANG=zh\n"+
		"EXPLORER_WATCH=poll\n", string(data))

	config.ClearAllConfig()
	assert.Equal(t, "", config.GetConfig("watch"))

	require.NoError(t, config.LoadConfig())
	assert.Equal(t, "poll", config.GetConfig("watch"))
	assert.Equal(t, "80ms", config.GetConfig("debounce"))
	assert.Equal(t, "zh", config.GetConfig("lang"))
}

func TestClearConfig(t *testing.T) {
	withHome(t)
	require.NoError(t, config.SetConfig("watch", "poll"))
	require.NoError(t, config.SetConfig("EXPLORER_LANG", "zh"))

	for _, key := range []string{"watch", "EXPLORER_LANG"} {
		t.Run(key, func(t *testing.T) {
			require.NotEmpty(t, config.GetConfig(key))
			config.ClearConfig(key)
			assert.Empty(t, config.GetConfig(key))
			assert.Empty(t, os.Getenv(config.GetEnvKey(config.ShortKey(key))))
		})
	}
	assert.Empty(t, config.GetConfigMap())
}

func TestShortKey(t *testing.T) {
	assert.Equal(t, "log_level", config.ShortKey("EXPLORER_LOG_LEVEL"))
	assert.Equal(t, "watch", config.ShortKey("watch"))
	assert.Equal(t, "EXPLORER_POLL_INTERVAL", config.GetEnvKey("poll_interval"))
}

package config

import (
	"bufio"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sjzsdu/explorer/helper"
	"github.com/sjzsdu/explorer/share"
)

var (
	// configMap 保存配置文件中的值，键统一为环境变量名
	configMap map[string]string
	// exported 记录由本包写入的环境变量，其余同名环境变量来自外部，优先于配置文件
	exported map[string]bool
)

func init() {
	configMap = make(map[string]string)
	exported = make(map[string]bool)
	_ = LoadConfig()
}

func GetConfig(key string) string {
	// 1. 尝试按原样获取，可能是完整的环境变量名
	value := os.Getenv(key)
	if value != "" {
		return value
	}

	// 2. 如果key不是以PREFIX开头，尝试转换后获取
	if !strings.HasPrefix(key, share.PREFIX) {
		return os.Getenv(GetEnvKey(key))
	}
	return ""
}

func GetConfigWithDefault(key string, defaultValue string) string {
	value := GetConfig(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadConfig 读取配置文件并导出为环境变量。
// 空行和 # 开头的行被忽略，等号两侧的空白被去掉，键可以写成简短形式。
// 外部已设置的同名环境变量不会被覆盖。格式错误的行被跳过并在返回的错误中列出。
func LoadConfig() error {
	file, err := os.Open(helper.GetPath("config"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	// 清空现有配置
	unexport()
	configMap = make(map[string]string)

	var errs []error
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			errs = append(errs, fmt.Errorf("config line %d: %q", line, text))
			continue
		}
		configMap[envKey(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for key, value := range configMap {
		export(key, value)
	}
	return errors.Join(errs...)
}

// SaveConfig 按键排序写入配置文件
func SaveConfig() error {
	configDir := helper.GetPath("")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(configDir, "config"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# %s config\n", share.BUILDNAME)
	for _, key := range slices.Sorted(maps.Keys(configMap)) {
		fmt.Fprintf(w, "%s=%s\n", key, configMap[key])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Sync() // 确保数据写入磁盘
}

func GetEnvKey(flagKey string) string {
	return share.PREFIX + strings.ToUpper(flagKey)
}

// ShortKey 把环境变量名转换为配置项名，例如 EXPLORER_LOG_LEVEL 转为 log_level
func ShortKey(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, share.PREFIX))
}

// envKey 把两种写法的键统一为环境变量名
func envKey(key string) string {
	if strings.HasPrefix(key, share.PREFIX) {
		return key
	}
	return GetEnvKey(key)
}

func export(key, value string) {
	if _, set := os.LookupEnv(key); set && !exported[key] {
		return
	}
	os.Setenv(key, value)
	exported[key] = true
}

func unexport() {
	for key := range exported {
		os.Unsetenv(key)
	}
	clear(exported)
}

// SetConfig 检查并设置配置值，同时更新环境变量。
// 键可以是简短形式或环境变量名，未知的键和无效的值返回错误。
func SetConfig(key, value string) error {
	key = envKey(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if err := ValidateConfigValue(ShortKey(key), value); err != nil {
		return err
	}
	configMap[key] = value
	os.Setenv(key, value)
	exported[key] = true
	return nil
}

// ClearConfig 清除指定配置
func ClearConfig(key string) {
	key = envKey(key)
	delete(configMap, key)
	delete(exported, key)
	os.Unsetenv(key)
}

// ClearAllConfig 清除所有配置
func ClearAllConfig() {
	unexport()
	configMap = make(map[string]string)
}

// GetConfigMap 返回配置文件中的值的副本
func GetConfigMap() map[string]string {
	return maps.Clone(configMap)
}

package lang

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/sjzsdu/explorer/config"
	"github.com/sjzsdu/explorer/share"
)

//go:embed locales/*.json
var locales embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	mu        sync.RWMutex
)

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err == nil {
		for _, entry := range entries {
			data, err := locales.ReadFile("locales/" + entry.Name())
			if err != nil {
				continue
			}
			// 语言包损坏时退回英文原文
			_, _ = bundle.ParseMessageFileBytes(data, entry.Name())
		}
	}

	SetLanguage(config.GetConfigWithDefault(config.KeyLang, share.DEFAULT_LANG))
}

// SetLanguage 切换当前语言，无法识别的标签回退为英文
func SetLanguage(tag string) {
	mu.Lock()
	defer mu.Unlock()
	localizer = i18n.NewLocalizer(bundle, tag, language.English.String())
}

// T 翻译一条消息，消息本身（英文）即为 ID；没有译文时原样返回
func T(msg string) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		return msg
	}
	out, err := l.Localize(&i18n.LocalizeConfig{MessageID: msg})
	if err != nil || out == "" {
		return msg
	}
	return out
}

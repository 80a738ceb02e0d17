package share

import "time"

// VERSION 版本号
const VERSION = "0.3.0"

// BUILDNAME 制品名称
const BUILDNAME = "explorer"

const PREFIX = "EXPLORER_"

const PATH = ".explorer"

// DEBOUNCE 投影刷新的默认防抖时间
const DEBOUNCE = 50 * time.Millisecond

// POLL_INTERVAL 轮询监听的默认间隔
const POLL_INTERVAL = 2 * time.Second

const DEFAULT_WATCH = "notify"

const DEFAULT_LANG = "en"

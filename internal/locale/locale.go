// Package locale holds the user-facing message catalog. Every failure or
// progress notice shown to a human goes through a Catalog so the English
// and Chinese texts stay in one place.
package locale

import "strings"

// Supported languages.
const (
	LanguageEnglish = "en"
	LanguageChinese = "zh-cn"
)

// Normalize maps a raw language tag to a supported language, defaulting
// to Chinese (the historical default of this tool).
func Normalize(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return LanguageChinese
}

// Catalog resolves message keys for one language.
type Catalog struct {
	lang string
}

// New returns a Catalog for the given language tag.
func New(lang string) *Catalog {
	return &Catalog{lang: Normalize(lang)}
}

// Language returns the normalized language of the catalog.
func (c *Catalog) Language() string {
	return c.lang
}

// T returns the message for key. Unknown keys fall back to the English
// text, then to the key itself so a miss is visible rather than silent.
func (c *Catalog) T(key string) string {
	if m, ok := messages[c.lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[LanguageEnglish][key]; ok {
		return s
	}
	return key
}

var messages = map[string]map[string]string{
	LanguageEnglish: {
		"upload.start":        "Uploading image...",
		"upload.success":      "Image uploaded: %s",
		"upload.failed":       "Image upload failed: %s",
		"upload.skipped":      "Skipped %s: reference no longer present",
		"batch.done":          "Batch upload finished: %d uploaded, %d failed, %d skipped",
		"batch.none":          "No local image references found",
		"rename.prompt":       "File name [%s] (enter to accept, ? for a suggestion, ctrl-d to cancel): ",
		"rename.cancelled":    "Upload cancelled",
		"rename.fallback":     "Naming service unavailable, using template name",
		"vision.unconfigured": "AI naming is not configured: set the API key and endpoint",
		"vision.unauthorized": "Invalid API key. Check your AI API key.",
		"vision.ratelimited":  "AI API rate limit exceeded. Try again later.",
		"vision.unreachable":  "Cannot connect to the AI API. Check the endpoint URL and network.",
		"vision.badbody":      "AI API returned an invalid response. Check the endpoint URL.",
		"webdav.unreachable":  "Cannot reach the WebDAV server. Check the URL and network.",
		"check.webdav.ok":     "WebDAV connection successful",
		"check.webdav.bad":    "WebDAV connection failed. Check your settings.",
		"check.vision.ok":     "AI connection successful",
		"check.vision.bad":    "AI connection failed. Check your settings.",
		"local.deleted":       "Deleted local file: %s",
	},
	LanguageChinese: {
		"upload.start":        "正在上传图片...",
		"upload.success":      "图片上传成功: %s",
		"upload.failed":       "图片上传失败: %s",
		"upload.skipped":      "跳过 %s: 引用已不存在",
		"batch.done":          "批量上传完成: 成功 %d, 失败 %d, 跳过 %d",
		"batch.none":          "未找到本地图片引用",
		"rename.prompt":       "文件名 [%s] (回车确认, ? 获取建议, ctrl-d 取消): ",
		"rename.cancelled":    "已取消上传",
		"rename.fallback":     "AI 命名服务不可用, 使用模板命名",
		"vision.unconfigured": "AI 命名未配置: 请设置 API Key 和 Endpoint",
		"vision.unauthorized": "API Key 无效, 请检查 AI API Key",
		"vision.ratelimited":  "AI API 请求频率超限, 请稍后重试",
		"vision.unreachable":  "无法连接 AI API, 请检查 Endpoint 和网络",
		"vision.badbody":      "AI API 返回了无效响应, 请检查 Endpoint",
		"webdav.unreachable":  "无法连接 WebDAV 服务器, 请检查地址和网络",
		"check.webdav.ok":     "WebDAV 连接成功",
		"check.webdav.bad":    "WebDAV 连接失败, 请检查配置",
		"check.vision.ok":     "AI 连接成功",
		"check.vision.bad":    "AI 连接失败, 请检查配置",
		"local.deleted":       "已删除本地文件: %s",
	},
}

package locale

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "en", want: LanguageEnglish},
		{input: "en-US", want: LanguageEnglish},
		{input: "EN", want: LanguageEnglish},
		{input: "zh-cn", want: LanguageChinese},
		{input: "zh", want: LanguageChinese},
		{input: "", want: LanguageChinese},
		{input: "fr", want: LanguageChinese},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	en := New("en")
	if got := en.T("check.webdav.ok"); got != "WebDAV connection successful" {
		t.Errorf("en lookup = %q", got)
	}
	zh := New("zh-cn")
	if got := zh.T("check.webdav.ok"); got != "WebDAV 连接成功" {
		t.Errorf("zh lookup = %q", got)
	}
}

func TestCatalogUnknownKeyFallsBack(t *testing.T) {
	c := New("zh-cn")
	if got := c.T("no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q, want the key itself", got)
	}
}

func TestEveryEnglishKeyHasChinese(t *testing.T) {
	for key := range messages[LanguageEnglish] {
		if _, ok := messages[LanguageChinese][key]; !ok {
			t.Errorf("key %q missing from zh-cn catalog", key)
		}
	}
}

// Package naming turns raw image bytes and an original file name into the
// final upload name, via one of three interchangeable strategies: template
// substitution, interactive prompt, or a remote vision naming service.
package naming

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const datetimeLayout = "20060102150405"

// Context carries the per-call substitution inputs for a template render.
type Context struct {
	OriginalName   string
	ExistingImages []string
}

// Engine renders filename templates. The zero value uses the system clock
// and math/rand; tests inject Now and Random for determinism.
type Engine struct {
	Now    func() time.Time
	Random func() string
}

// Render substitutes every recognised placeholder in tpl. Unrecognised
// {tags} pass through verbatim and there is no re-substitution pass.
//
// Placeholders: {timestamp} (ms since epoch), {random} (6 lowercase
// base-36 chars), {date} and {datetime} (local time, YYYYMMDDHHMMSS),
// {baseName} and {ext} (split at the last dot of the original name, ext
// keeps the leading dot), {existing_images} (comma-joined list or "None").
func (e Engine) Render(tpl string, ctx Context) string {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	random := randomBase36(6)
	if e.Random != nil {
		random = e.Random()
	}

	base, ext := SplitExt(ctx.OriginalName)
	existing := "None"
	if len(ctx.ExistingImages) > 0 {
		existing = strings.Join(ctx.ExistingImages, ", ")
	}
	datetime := now.Format(datetimeLayout)

	r := strings.NewReplacer(
		"{timestamp}", strconv.FormatInt(now.UnixMilli(), 10),
		"{random}", random,
		"{date}", datetime,
		"{datetime}", datetime,
		"{baseName}", base,
		"{ext}", ext,
		"{existing_images}", existing,
	)
	return r.Replace(tpl)
}

// SplitExt splits name at the last dot. The extension keeps its leading
// dot; a name without a dot (or starting with its only dot) has an empty
// extension.
func SplitExt(name string) (base, ext string) {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}

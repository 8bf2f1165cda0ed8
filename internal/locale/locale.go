// Package locale provides the translated status strings and detects the
// user's language and region from the environment.
package locale

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/conn-castle/prelaunch/internal/messages"
)

// Fallback is used when detection finds no supported language.
const Fallback = "en"

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// FileSource reads resource-relative files.
type FileSource interface {
	ReadFile(rel string) ([]byte, error)
}

// Catalog resolves keys to strings in one language.
type Catalog struct {
	lang    string
	strings map[Key]string
}

// Load builds the catalog for lang: the built-in table (English when lang
// has none) overlaid with lang/<lang>.toml from src when present.
func Load(src FileSource, lang string) (*Catalog, error) {
	lang = Normalize(lang)
	base, ok := builtin[lang]
	if !ok {
		base = builtin[Fallback]
	}
	c := &Catalog{lang: lang, strings: make(map[Key]string, len(base))}
	for k, v := range base {
		c.strings[k] = v
	}
	if src == nil {
		return c, nil
	}

	rel := "lang/" + lang + ".toml"
	data, err := src.ReadFile(rel)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	overrides := map[string]string{}
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return c, fmt.Errorf(messages.LocaleDecodeFmt, rel, err)
	}
	for k, v := range overrides {
		c.strings[Key(k)] = v
	}
	return c, nil
}

// Builtin returns the catalog without overrides.
func Builtin(lang string) *Catalog {
	c, _ := Load(nil, lang)
	return c
}

// Language returns the catalog's language code.
func (c *Catalog) Language() string { return c.lang }

// T formats the string for key with args. Unknown keys render a marker
// rather than failing.
func (c *Catalog) T(key Key, args ...any) string {
	format, ok := c.strings[key]
	if !ok {
		return fmt.Sprintf(messages.LocaleMissingFmt, key)
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Normalize reduces a locale name such as "ru_RU.UTF-8" to a supported base
// language code, falling back to English.
func Normalize(name string) string {
	tag, ok := parse(name)
	if !ok {
		return Fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Detect picks the language from LC_ALL, LC_MESSAGES, then LANG.
func Detect(getenv func(string) string) string {
	if tag, ok := envTag(getenv); ok {
		return Normalize(tag.String())
	}
	return Fallback
}

// DetectRegion returns the upper-case ISO 3166 region named explicitly in
// the locale environment, or "" when none is set.
func DetectRegion(getenv func(string) string) string {
	tag, ok := envTag(getenv)
	if !ok {
		return ""
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}

func envTag(getenv func(string) string) (language.Tag, bool) {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag, ok := parse(getenv(key)); ok {
			return tag, true
		}
	}
	return language.Und, false
}

// parse accepts POSIX locale names ("ru_RU.UTF-8@euro") and BCP 47 tags.
func parse(name string) (language.Tag, bool) {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "C" || name == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

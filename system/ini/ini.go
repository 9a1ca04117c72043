// Package ini reads localized strings from assets/ini/<locale>.ini.
package ini

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

type Locale string

const (
	EnUS Locale = "en-us"
	DE   Locale = "de"
)

var (
	file  *ini.File
	mutex sync.RWMutex
	regex = regexp.MustCompile("<ini:[a-zA-Z0-9].*?>")
)

// Default opens the English locale from dir.
func Default(dir string) error {
	return errors.Wrap(Open(dir, EnUS), "ini default")
}

// Find returns the value of key k in section s, or "s-k" when it is missing.
func Find(s, k string) string { return find(s, k) }

// Format replaces every <ini:section:key> tag in format.
func Format(format string) string {
	return regex.ReplaceAllStringFunc(format, replace)
}

// Load parses source, a file name or raw bytes, as the current locale.
func Load(source interface{}) error {
	i, err := ini.Load(source)
	if err != nil {
		return errors.Wrap(err, "locale")
	}

	mutex.Lock()
	file = i
	mutex.Unlock()

	return nil
}

func (l Locale) String() string {
	return string(l)
}

// PickText is the placeholder shown in a hero name box before anything is selected.
func PickText() string {
	return Find("draft", "pick")
}

func Open(dir string, locale Locale) error {
	f := filepath.Join(dir, locale.String())

	switch ext := filepath.Ext(f); ext {
	case ".ini":
	case "":
		f = fmt.Sprintf("%s.ini", f)
	default:
		return errors.Errorf("locale: invalid exension: %s", ext)
	}

	return errors.Wrapf(Load(f), "locale: %s", locale)
}

func find(s, k string) string {
	mutex.RLock()
	defer mutex.RUnlock()

	if file == nil {
		return fmt.Sprintf("%s-%s", s, k)
	}

	v := file.Section(s).Key(k).Value()
	if v == "" {
		return fmt.Sprintf("%s-%s", s, k)
	}

	return v
}

func replace(s string) string {
	px, ok := strings.CutPrefix(s, "<")
	if !ok {
		return s
	}

	sx, ok := strings.CutSuffix(px, ">")
	if !ok {
		return s
	}

	args := strings.Split(sx, ":")
	if args[0] != "ini" {
		return s
	}

	if len(args) != 3 {
		return s
	}

	return find(args[1], args[2])
}

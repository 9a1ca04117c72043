package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/pidgy/drafthud/core/global"
	"github.com/pidgy/drafthud/core/notify"
)

const (
	File = "drafthud.json"

	LanguageEnglish = "en-us"
	LanguageGerman  = "de"

	EnvLanguage   = "DRAFTHUD_LANGUAGE"
	EnvDebug      = "DRAFTHUD_DEBUG"
	EnvOCRWorkers = "DRAFTHUD_OCR_WORKERS"
	EnvAddress    = "DRAFTHUD_ADDRESS"
)

type Config struct {
	Language string
	Debug    bool

	Tesseract struct {
		Languages       string
		PlayerLanguages string
		Params          map[string]string
	}

	OCR struct {
		Workers int
		Timeout time.Duration
		Process bool // Spawn out-of-process workers.
	}

	Detection struct {
		Interval     time.Duration
		MapLock      time.Duration
		BanThreshold int
		BanGap       int
		Training     bool

		Disabled struct {
			Map,
			Bans,
			Players,
			PlayerNames,
			Prepick bool
		}
	}

	Assets struct {
		Layout,
		Bans,
		UserBans,
		GameData,
		History,
		Locales string
	}

	Capture struct {
		Display int
		File    string
	}

	Server struct {
		Address string
	}

	file string
}

var (
	Current Config
	cached  Config
)

var tesseractLanguages = map[string]string{
	LanguageEnglish: "eng",
	LanguageGerman:  "deu",
}

func Cached() Config {
	return cached
}

// Default returns the configuration used when no file exists.
func Default() Config {
	c := Config{Language: LanguageEnglish}

	c.Tesseract.Languages = tesseractLanguages[LanguageEnglish]
	c.Tesseract.PlayerLanguages = "+lat+rus+kor"
	c.Tesseract.Params = map[string]string{}

	c.OCR.Workers = 4
	c.OCR.Timeout = 10 * time.Second

	c.Detection.Interval = time.Second
	c.Detection.MapLock = 20 * time.Second
	c.Detection.BanThreshold = 10
	c.Detection.BanGap = 2

	c.SetDefaultAssets()

	c.Server.Address = "127.0.0.1:17180"

	return c
}

func (c Config) Eq(c2 Config) bool {
	return cmp.Equal(c, c2, cmpopts.IgnoreUnexported(Config{}), cmpopts.EquateEmpty())
}

func (c *Config) File() string {
	return c.file
}

// OCRLanguages returns the tesseract languages for hero and map names, or for
// player names which may use any script.
func (c *Config) OCRLanguages(player bool) string {
	if player {
		return c.Tesseract.Languages + c.Tesseract.PlayerLanguages
	}
	return c.Tesseract.Languages
}

func (c *Config) Save() error {
	if c.file == "" {
		return errors.New("config: no file")
	}

	notify.System("[Config] Saving %s", c.file)

	b, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "config")
	}

	// Remarshal for an alphabetically sorted object.
	var i interface{}
	err = json.Unmarshal(b, &i)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	b, err = json.MarshalIndent(i, "", "    ")
	if err != nil {
		return errors.Wrap(err, "config")
	}

	err = os.WriteFile(c.file, b, 0644)
	if err != nil {
		return errors.Wrapf(err, "config: %s", c.file)
	}

	if c == &Current {
		cached = Current
	}

	return nil
}

func (c *Config) SetDefaultAssets() {
	c.Assets.Layout = filepath.Join(global.Assets(), "layout.json")
	c.Assets.Bans = filepath.Join(global.Assets(), "bans")
	c.Assets.UserBans = filepath.Join(global.WorkingDirectory(), "saved", "bans")
	c.Assets.GameData = filepath.Join(global.Assets(), "gamedata.json")
	c.Assets.History = filepath.Join(global.WorkingDirectory(), "saved", "history.json")
	c.Assets.Locales = filepath.Join(global.Assets(), "ini")
}

// SetLanguage switches the draft language and its tesseract language.
func (c *Config) SetLanguage(lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))

	t, ok := tesseractLanguages[lang]
	if !ok {
		return errors.Errorf("config: unsupported language %q", lang)
	}

	c.Language = lang
	c.Tesseract.Languages = t

	return nil
}

// Load opens file into Current, applies .env and environment overrides, and
// writes the result back so new options appear in the file.
func Load(file string) error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		notify.Warn("[Config] Failed to read .env (%v)", err)
	}

	c, err := Open(file)
	if err != nil {
		return err
	}

	Current = c

	return Current.Save()
}

// Open reads file on top of Default and applies environment overrides. A
// missing file is not an error.
func Open(file string) (Config, error) {
	c := Default()
	c.file = file

	b, err := os.ReadFile(file)
	switch {
	case os.IsNotExist(err):
		notify.System("[Config] Creating %s", file)
	case err != nil:
		return Config{}, errors.Wrapf(err, "config: %s", file)
	default:
		err = json.Unmarshal(b, &c)
		if err != nil {
			return Config{}, errors.Wrapf(err, "config: corrupted %s", file)
		}
	}

	err = c.env()
	if err != nil {
		return Config{}, err
	}

	return c, c.validate()
}

func (c *Config) env() error {
	if v, ok := os.LookupEnv(EnvLanguage); ok {
		err := c.SetLanguage(v)
		if err != nil {
			return errors.Wrap(err, EnvLanguage)
		}
	}

	if v, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, EnvDebug)
		}
		c.Debug = b
	}

	if v, ok := os.LookupEnv(EnvOCRWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, EnvOCRWorkers)
		}
		c.OCR.Workers = n
	}

	if v, ok := os.LookupEnv(EnvAddress); ok {
		c.Server.Address = v
	}

	return nil
}

func (c *Config) validate() error {
	if _, ok := tesseractLanguages[c.Language]; !ok {
		return errors.Errorf("config: unsupported language %q", c.Language)
	}
	if c.OCR.Workers < 1 {
		return errors.Errorf("config: invalid OCR worker count %d", c.OCR.Workers)
	}
	if c.Detection.BanThreshold < 0 || c.Detection.BanGap < 0 {
		return errors.New("config: negative ban match threshold")
	}
	if c.Detection.MapLock < 0 {
		return errors.New("config: negative map lock")
	}
	if c.Tesseract.Params == nil {
		c.Tesseract.Params = map[string]string{}
	}
	return nil
}

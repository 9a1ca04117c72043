package gamedata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultHeroes(t *testing.T) {
	d := Default()

	require.Len(t, d.HeroIDs(), 90)
	require.Equal(t, "Valeera", d.HeroName("valeera"))
	require.Equal(t, "", d.HeroName("missing"))

	type test struct {
		name string
		id   string
		ok   bool
	}

	for _, tc := range []test{
		{"valeera", "valeera", true},
		{"VALEERA", "valeera", true},
		{"ETC", "etc", true},
		{"VALERA", "", false},
		{"", "", false},
	} {
		id, ok := d.HeroID(tc.name)
		require.Equal(t, tc.ok, ok, tc.name)
		require.Equal(t, tc.id, id, tc.name)
	}

	for _, name := range []string{" Kel'Thuzad ", "lucio"} {
		id, ok := d.HeroID(name)
		require.True(t, ok, name)
		require.NotEmpty(t, d.HeroName(id), name)
	}
}

func TestFixHeroName(t *testing.T) {
	d := Default()

	type test struct {
		in, out string
	}

	for _, tc := range []test{
		{" valeera\n", "VALEERA"},
		{"etc", "E.T.C."},
		{"Lucio", "LÚCIO"},
		{"D.Va", "D.VA"},
	} {
		require.Equal(t, tc.out, d.FixHeroName(tc.in), tc.in)
	}
}

func TestFixMapName(t *testing.T) {
	d := Default()

	require.Equal(t, "CURSED HOLLOW", d.FixMapName(" Cursed Hollow \nView best heroes"))
	require.Equal(t, "SKY TEMPLE", d.FixMapName("SKY TEMPLE VIEW BEST HEROES"))
	require.True(t, d.MapExists("SKY TEMPLE", English))
	require.False(t, d.MapExists("SKY TEMPEL", English))
}

func TestTranslateMapName(t *testing.T) {
	d := Default()

	type test struct {
		name, from, to string
		want           string
		ok             bool
	}

	for _, tc := range []test{
		{"DAS DRACHENHEIM", German, English, "DRAGON SHIRE", true},
		{"GRABKAMMER DER SPINNENKONIGIN", German, English, "TOMB OF THE SPIDER QUEEN", true},
		{"GRABKAMMER DER SPINNENKÖNIGIN", German, English, "TOMB OF THE SPIDER QUEEN", true},
		{"DRAGON SHIRE", English, German, "DAS DRACHENHEIM", true},
		{"DRAGON SHIRE", English, English, "DRAGON SHIRE", true},
		{"UNBEKANNT", German, English, "", false},
	} {
		got, ok := d.TranslateMapName(tc.name, tc.from, tc.to)
		require.Equal(t, tc.ok, ok, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestHeroCorrection(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gamedata.json")

	d, err := Load(file, English)
	require.NoError(t, err)

	require.Equal(t, "VALERA", d.CorrectHeroName("VALERA"))
	require.NoError(t, d.AddHeroCorrection("valera", "valeera"))
	require.Equal(t, "Valeera", d.CorrectHeroName("VALERA"))
	id, ok := d.HeroID(d.CorrectHeroName("VALERA"))
	require.True(t, ok)
	require.Equal(t, "valeera", id)

	require.Error(t, d.AddHeroCorrection("x", "missing"))
	require.Error(t, d.AddHeroCorrection(" ", "valeera"))

	reloaded, err := Load(file, English)
	require.NoError(t, err)
	require.Equal(t, "Valeera", reloaded.CorrectHeroName("VALERA"))
	require.Len(t, reloaded.HeroIDs(), 90)
}

func TestLoadInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gamedata.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), 0644))

	_, err := Load(file, English)
	require.Error(t, err)
}

func TestLoadLanguageFallback(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gamedata.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"heroes":{"de":{"thebutcher":"Der Schlächter"}}}`), 0644))

	d, err := Load(file, German)
	require.NoError(t, err)

	require.Equal(t, "Der Schlächter", d.HeroName("thebutcher"))
	require.Equal(t, "Valeera", d.HeroName("valeera"))
	for _, name := range []string{"DER SCHLÄCHTER", "The Butcher"} {
		id, ok := d.HeroID(name)
		require.True(t, ok, name)
		require.Equal(t, "thebutcher", id, name)
		require.Equal(t, "Der Schlächter", d.HeroName(id), name)
	}
}

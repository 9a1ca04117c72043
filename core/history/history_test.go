package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pidgy/drafthud/core/team"
)

func draft(heroes ...string) []team.Data {
	blue := team.Data{Color: team.Blue}
	for i, h := range heroes {
		blue.Players = append(blue.Players, team.PlayerData{Index: i, Team: team.Blue, Name: "Tassadar#1", Hero: h, Locked: true})
	}
	blue.Players = append(blue.Players, team.PlayerData{Index: 4, Team: team.Blue, Name: "Tassadar#1", Hero: "Murky"})
	return []team.Data{blue}
}

func TestRecentPicks(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history.json")

	h, err := Load(file)
	require.NoError(t, err)

	require.NoError(t, h.Add("CURSED HOLLOW", draft("Valeera")))
	require.NoError(t, h.Add("SKY TEMPLE", draft("Valeera", "Zeratul")))

	picks := h.RecentPicks("Tassadar#1")
	require.Equal(t, map[string]int{"Valeera": 2, "Zeratul": 1}, picks)
	require.Equal(t, []string{"Valeera"}, Top(picks, 1))

	reloaded, err := Load(file)
	require.NoError(t, err)
	require.Len(t, reloaded.Drafts(), 2)

	p := team.New(team.Blue, 3).Player(0)
	reloaded.UpdatePlayerRecentPicks(p)
	require.Nil(t, p.RecentPicks())

	p.SetName("Tassadar#1", true, nil)
	reloaded.UpdatePlayerRecentPicks(p)
	require.Equal(t, 2, p.RecentPicks()["Valeera"])
}

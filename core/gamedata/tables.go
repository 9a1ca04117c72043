package gamedata

var heroes = map[string]string{
	"abathur": "Abathur", "alarak": "Alarak", "alexstrasza": "Alexstrasza", "ana": "Ana", "anduin": "Anduin",
	"anubarak": "Anub'arak", "artanis": "Artanis", "arthas": "Arthas", "auriel": "Auriel", "azmodan": "Azmodan",
	"blaze": "Blaze", "brightwing": "Brightwing", "cassia": "Cassia", "chen": "Chen", "cho": "Cho",
	"chromie": "Chromie", "dva": "D.Va", "deathwing": "Deathwing", "deckard": "Deckard", "dehaka": "Dehaka",
	"diablo": "Diablo", "etc": "E.T.C.", "falstad": "Falstad", "fenix": "Fenix", "gall": "Gall",
	"garrosh": "Garrosh", "gazlowe": "Gazlowe", "genji": "Genji", "greymane": "Greymane", "guldan": "Gul'dan",
	"hanzo": "Hanzo", "hogger": "Hogger", "illidan": "Illidan", "imperius": "Imperius", "jaina": "Jaina",
	"johanna": "Johanna", "junkrat": "Junkrat", "kaelthas": "Kael'thas", "kelthuzad": "Kel'Thuzad", "kerrigan": "Kerrigan",
	"kharazim": "Kharazim", "leoric": "Leoric", "lili": "Li Li", "liming": "Li-Ming", "ltmorales": "Lt. Morales",
	"lucio": "Lúcio", "lunara": "Lunara", "maiev": "Maiev", "malganis": "Mal'Ganis", "malfurion": "Malfurion",
	"malthael": "Malthael", "medivh": "Medivh", "mei": "Mei", "mephisto": "Mephisto", "muradin": "Muradin",
	"murky": "Murky", "nazeebo": "Nazeebo", "nova": "Nova", "orphea": "Orphea", "probius": "Probius",
	"qhira": "Qhira", "ragnaros": "Ragnaros", "raynor": "Raynor", "rehgar": "Rehgar", "rexxar": "Rexxar",
	"samuro": "Samuro", "sgthammer": "Sgt. Hammer", "sonya": "Sonya", "stitches": "Stitches", "stukov": "Stukov",
	"sylvanas": "Sylvanas", "tassadar": "Tassadar", "thebutcher": "The Butcher", "thelostvikings": "The Lost Vikings", "thrall": "Thrall",
	"tracer": "Tracer", "tychus": "Tychus", "tyrael": "Tyrael", "tyrande": "Tyrande", "uther": "Uther",
	"valeera": "Valeera", "valla": "Valla", "varian": "Varian", "whitemane": "Whitemane", "xul": "Xul",
	"yrel": "Yrel", "zagara": "Zagara", "zarya": "Zarya", "zeratul": "Zeratul", "zuljin": "Zul'jin",
}

var maps = map[string]string{
	"alteracpass":           "ALTERAC PASS",
	"battlefieldofeternity": "BATTLEFIELD OF ETERNITY",
	"blackheartsbay":        "BLACKHEART'S BAY",
	"braxisholdout":         "BRAXIS HOLDOUT",
	"cursedhollow":          "CURSED HOLLOW",
	"dragonshire":           "DRAGON SHIRE",
	"gardenofterror":        "GARDEN OF TERROR",
	"hanamuratemple":        "HANAMURA TEMPLE",
	"hauntedmines":          "HAUNTED MINES",
	"infernalshrines":       "INFERNAL SHRINES",
	"lostcavern":            "LOST CAVERNS",
	"skytemple":             "SKY TEMPLE",
	"tombofthespiderqueen":  "TOMB OF THE SPIDER QUEEN",
	"towersofdoom":          "TOWERS OF DOOM",
	"volskayafoundry":       "VOLSKAYA FOUNDRY",
	"warheadjunction":       "WARHEAD JUNCTION",
}

var translations = map[string]map[string]string{
	German: {
		"TEMPEL VON HANAMURA":             "HANAMURA TEMPLE",
		"ALTERACPASS":                     "ALTERAC PASS",
		"SCHLACHTFELD DER EWIGKEIT":       "BATTLEFIELD OF ETERNITY",
		"SCHWARZHERZS BUCHT":              "BLACKHEART'S BAY",
		"BRAXIS WAFFENPLATZ":              "BRAXIS HOLDOUT",
		"DER VERFLUCHTE HOHLE":            "CURSED HOLLOW",
		"DAS DRACHENHEIM":                 "DRAGON SHIRE",
		"GARTEN DES SCHRECKENS":           "GARDEN OF TERROR",
		"VERFLUCHTE GRUBENBAU":            "HAUNTED MINES",
		"HÖLLENFEUER-SCHREINE":            "INFERNAL SHRINES",
		"HÖHLEN DES VERLORENEN FELDZUGES": "LOST CAVERNS",
		"HIMMELSTEMPEL":                   "SKY TEMPLE",
		"GRABKAMMER DER SPINNENKONIGIN":   "TOMB OF THE SPIDER QUEEN",
		"GRABKAMMER DER SPINNENKÖNIGIN":   "TOMB OF THE SPIDER QUEEN",
		"TÜRME DES VERDERBENS":            "TOWERS OF DOOM",
		"VOLSKAYA-FABRIK":                 "VOLSKAYA FOUNDRY",
		"SPRENGSTOFFFRACHTER":             "WARHEAD JUNCTION",
	},
}

var substitutions = map[string]string{
	"ETC":   "E.T.C.",
	"LUCIO": "LÚCIO",
}

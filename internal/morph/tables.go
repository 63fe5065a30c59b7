package morph

// Substitution maps a matched fragment to the misspellings it is commonly confused with.
type Substitution struct {
	From string
	To   []string
}

// Tables holds the confusion data used to derive misspellings.
// Slices are ordered: earlier entries win when several apply.
type Tables struct {
	Suffixes          []Substitution
	Homophones        map[string][]string
	CommonMisspelling map[string][]string
	Phonetic          []Substitution
	Accents           map[rune]rune
	DoubleConsonants  []string
}

// DefaultTables returns the built-in French confusion tables.
// Each call returns a fresh copy so callers may not alter shared state.
func DefaultTables() Tables {
	return Tables{
		// Longest suffixes first; only the first match is applied.
		Suffixes: []Substitution{
			{"aient", []string{"ais", "ait"}},
			{"tion", []string{"ssion", "sion", "cions"}},
			{"ier", []string{"ié", "iez", "iers"}},
			{"ées", []string{"és", "é", "er"}},
			{"ais", []string{"ai", "ait", "aient"}},
			{"ait", []string{"ai", "ais", "aient"}},
			{"ons", []string{"ont"}},
			{"ont", []string{"ons"}},
			{"ée", []string{"é", "er"}},
			{"és", []string{"é", "ées", "er"}},
			{"er", []string{"é", "ez", "ée", "és", "ées"}},
			{"ez", []string{"er", "é"}},
			{"é", []string{"er", "ez", "ée"}},
		},
		Homophones: map[string][]string{
			"a":        {"à"},
			"à":        {"a"},
			"ou":       {"où"},
			"où":       {"ou"},
			"et":       {"est", "ai", "ait"},
			"est":      {"et", "ai"},
			"son":      {"sont"},
			"sont":     {"son"},
			"on":       {"ont"},
			"ont":      {"on"},
			"ce":       {"se"},
			"se":       {"ce"},
			"ces":      {"ses", "c'est", "sait"},
			"ses":      {"ces", "c'est"},
			"c'est":    {"ces", "ses", "s'est"},
			"s'est":    {"c'est"},
			"leur":     {"leurs"},
			"leurs":    {"leur"},
			"ma":       {"m'a"},
			"m'a":      {"ma"},
			"ta":       {"t'a"},
			"t'a":      {"ta"},
			"la":       {"l'a", "là"},
			"l'a":      {"la"},
			"là":       {"la"},
			"ni":       {"n'y"},
			"si":       {"s'y"},
			"quand":    {"quant", "qu'en"},
			"quant":    {"quand"},
			"dans":     {"d'en"},
			"sans":     {"s'en", "sang"},
			"peu":      {"peux", "peut"},
			"peux":     {"peu", "peut"},
			"peut":     {"peu", "peux"},
			"près":     {"prêt", "prêts"},
			"prêt":     {"près"},
			"plus tôt": {"plutôt"},
			"plutôt":   {"plus tôt"},
		},
		CommonMisspelling: map[string][]string{
			"toujours":     {"toujour", "toujous"},
			"beaucoup":     {"baucoup", "beaucou", "bocoup"},
			"maintenant":   {"maintenan", "mentenant"},
			"aujourd'hui":  {"aujourdhui", "aujourd hui"},
			"longtemps":    {"lontemps", "longtemp"},
			"quelquefois":  {"quelque fois", "kelquefois"},
			"peut-être":    {"peut être", "peutêtre"},
			"parce que":    {"parceque", "par ce que"},
			"afin":         {"a fin"},
			"enfin":        {"en fin"},
			"cependant":    {"cepandant", "cependan"},
			"également":    {"egallement", "égallement"},
			"certainement": {"certainnement", "certainemen"},
			"apparemment":  {"apparament", "aparemment"},
			"évidemment":   {"evidemment", "évidament"},
			"vraiment":     {"vraiement", "vraiman"},
			"gentiment":    {"gentiement", "jentiment"},
			"couramment":   {"courament", "courrament"},
			"notamment":    {"notament", "notamant"},
		},
		Phonetic: []Substitution{
			{"eau", []string{"o", "au", "eaux"}},
			{"ain", []string{"in", "ein"}},
			{"an", []string{"en", "ant", "ent"}},
			{"en", []string{"an", "ant", "ent"}},
			{"on", []string{"ont", "om"}},
			{"in", []string{"ain", "ein", "im"}},
			{"ou", []string{"ous", "oue", "oux"}},
			{"oi", []string{"oie", "ois"}},
			{"ai", []string{"é", "ais", "ait", "è"}},
			{"é", []string{"ai", "er", "ez", "ée"}},
			{"è", []string{"ai", "ê", "e"}},
			{"au", []string{"o", "eau"}},
			{"ph", []string{"f", "ff"}},
			{"qu", []string{"c", "k"}},
			{"ch", []string{"sh"}},
			{"ss", []string{"s", "c"}},
			{"ff", []string{"f", "ph"}},
			{"f", []string{"ff", "ph"}},
			{"g", []string{"j", "gu"}},
			{"j", []string{"g"}},
		},
		Accents: map[rune]rune{
			'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
			'à': 'a', 'â': 'a',
			'ù': 'u', 'û': 'u',
			'î': 'i', 'ï': 'i',
			'ô': 'o',
			'ç': 'c',
		},
		DoubleConsonants: []string{"ll", "mm", "nn", "pp", "rr", "ss", "tt", "ff"},
	}
}

package wordlist

// Stoplist holds lowercase tokens that are never vocabulary: titles,
// instructions and grade-level codes found on worksheets.
type Stoplist map[string]struct{}

// NewStoplist builds a Stoplist from the given words.
func NewStoplist(words ...string) Stoplist {
	s := make(Stoplist, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Contains reports whether the lowercase form of word is listed.
func (s Stoplist) Contains(lower string) bool {
	_, ok := s[lower]
	return ok
}

// DefaultStoplist returns the built-in French worksheet stoplist.
func DefaultStoplist() Stoplist {
	return NewStoplist(
		"dictée", "dictées", "dictee", "dictees",
		"flash", "mots", "mot", "savoir", "orthographier",
		"orthographe", "apprendre", "liste", "listes",
		"semaine", "période", "leçon", "lecon", "série",
		"évaluation", "evaluation", "contrôle", "controle",
		"exercice", "exercices", "révision", "revision",
		"le", "la", "les", "de", "du", "des", "au", "aux",
		"ce1", "ce2", "cm1", "cm2", "cp",
	)
}

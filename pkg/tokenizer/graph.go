package tokenizer

// TypeGraph returns the legal token-type successions for the configuration.
// Enabling TimeSignature replaces Bar's successors: every Bar run then ends
// with a TimeSig token, so Bar can only be followed by another Bar or a
// TimeSig.
func (t *Tokenizer) TypeGraph() map[TokenType][]TokenType {
	g := map[TokenType][]TokenType{
		TypeBar:      {TypePosition, TypeBar},
		TypePosition: {TypeProgram},
		TypeProgram:  {TypePitch},
		TypePitch:    {TypeVelocity},
		TypeVelocity: {TypeDuration},
		TypeDuration: {TypeProgram, TypePosition, TypeBar},
	}

	if t.cfg.UseTimeSignature {
		g[TypeBar] = []TokenType{TypeTimeSig, TypeBar}
		g[TypeTimeSig] = []TokenType{TypePosition}
	}

	if t.cfg.UseChord {
		g[TypeChord] = []TokenType{TypePosition}
		g[TypePosition] = append(g[TypePosition], TypeChord)
	}

	if t.cfg.UseTempo {
		g[TypeTempo] = []TokenType{TypePosition}
		g[TypePosition] = append(g[TypePosition], TypeTempo)
	}

	return g
}

// CountTypeErrors walks a token sequence and counts adjacent pairs whose
// successor type is not allowed by the type graph, returning the count and
// its ratio over the number of transitions. Token types without an entry in
// the graph constrain nothing. Purely advisory: generation is never aborted
// on violations.
func (t *Tokenizer) CountTypeErrors(tokens []Token) (int, float64) {
	if len(tokens) < 2 {
		return 0, 0
	}
	graph := t.TypeGraph()
	errors := 0
	for i := 0; i < len(tokens)-1; i++ {
		allowed, ok := graph[tokens[i].Type]
		if !ok {
			continue
		}
		legal := false
		for _, typ := range allowed {
			if tokens[i+1].Type == typ {
				legal = true
				break
			}
		}
		if !legal {
			errors++
		}
	}
	return errors, float64(errors) / float64(len(tokens)-1)
}

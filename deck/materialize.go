package deck

// MaterializedCard is one card instance produced by walking a decklist,
// not yet assigned to any zone object — table.Player turns these into
// concrete cards with allocated ids.
type MaterializedCard struct {
	Name string
}

// Materialize walks l and returns the ordered card list for "deck" (from
// the "main" zone) and "sb" (from the "side" zone). Any other top-level
// zone in the decklist is ignored, per the deck-to-zones rule.
func Materialize(l *List) (deckCards, sbCards []MaterializedCard) {
	for _, zone := range l.Zones {
		var target *[]MaterializedCard
		switch zone.Name {
		case "main":
			target = &deckCards
		case "side":
			target = &sbCards
		default:
			continue
		}
		for _, card := range zone.Cards {
			for i := 0; i < card.Number; i++ {
				*target = append(*target, MaterializedCard{Name: card.Name})
			}
		}
	}
	return deckCards, sbCards
}

package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddCardAccumulates(t *testing.T) {
	l := New()
	l.AddCard("main", "Plains", 4)
	l.AddCard("main", "Plains", 2)
	l.AddCard("main", "Island", 1)

	assert.Equal(t, 7, l.TotalCards("main"))
}

func TestMaterializeRoutesMainAndSide(t *testing.T) {
	l := New()
	l.AddCard("main", "Plains", 4)
	l.AddCard("side", "Naturalize", 2)
	l.AddCard("maybeboard", "Island", 3)

	deckCards, sbCards := Materialize(l)
	assert.Len(t, deckCards, 4)
	assert.Len(t, sbCards, 2)
	for _, c := range deckCards {
		assert.Equal(t, "Plains", c.Name)
	}
}

func TestToItemFromItemRoundTrip(t *testing.T) {
	l := New()
	l.AddCard("main", "Plains", 4)
	l.AddCard("side", "Naturalize", 2)

	item := ToItem(l)
	restored := FromItem(item)

	assert.Equal(t, 4, restored.TotalCards("main"))
	assert.Equal(t, 2, restored.TotalCards("side"))
}

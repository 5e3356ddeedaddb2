package deck

import "github.com/lguibr/cockatriced/protocol"

func init() {
	protocol.RegisterGeneric("decklist", "", nil)
	protocol.RegisterGeneric("decklist_zone", "", nil)
	protocol.RegisterGeneric("decklist_card", "", map[string]protocol.AttrKind{"number": protocol.KindInt})
}

// ToItem builds the protocol.Item tree for l, suitable for enqueueing as
// a command/response child or encoding directly.
func ToItem(l *List) protocol.Item {
	root := protocol.NewGenericItem("decklist", "")
	for _, zone := range l.Zones {
		zoneItem := protocol.NewGenericItem("decklist_zone", "")
		zoneItem.Attrs().Set("name", protocol.StringAttr(zone.Name))
		for _, card := range zone.Cards {
			cardItem := protocol.NewGenericItem("decklist_card", "")
			cardItem.Attrs().Set("name", protocol.StringAttr(card.Name))
			cardItem.Attrs().Set("number", protocol.IntAttr(card.Number))
			zoneItem.AddChild(cardItem)
		}
		root.AddChild(zoneItem)
	}
	return root
}

// FromItem walks a decoded protocol.Item tree (as produced by ToItem or
// decoded off the wire) back into a List. An item that isn't a decklist
// tree yields an empty list rather than failing — callers are expected
// to check item type before calling FromItem.
func FromItem(item protocol.Item) *List {
	l := New()
	if item == nil || item.ItemType() != "decklist" {
		return l
	}
	for _, zoneChild := range item.Children() {
		if zoneChild.ItemType() != "decklist_zone" {
			continue
		}
		zoneName := zoneChild.Attrs().String("name")
		zone := l.Zone(zoneName)
		for _, cardChild := range zoneChild.Children() {
			if cardChild.ItemType() != "decklist_card" {
				continue
			}
			zone.Cards = append(zone.Cards, CardNode{
				Name:   cardChild.Attrs().String("name"),
				Number: cardChild.Attrs().Int("number"),
			})
		}
	}
	return l
}

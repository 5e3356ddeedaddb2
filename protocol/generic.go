package protocol

// GenericItem is a plain SerializableItem with no behavior beyond
// attribute/child storage. It's for ad hoc trees that don't carry a
// fixed in-process ItemID of their own (DeckList nodes, ServerInfo_*
// display records) — the generic (type, subType) registry dispatch
// still applies, it just always resolves back to GenericItem.
type GenericItem struct {
	base
	kinds map[string]AttrKind
}

// NewGenericItem constructs an empty GenericItem tagged (itemType,
// itemSubType).
func NewGenericItem(itemType, itemSubType string) *GenericItem {
	return &GenericItem{base: newBase(ItemIDInvalid, itemType, itemSubType)}
}

func (g *GenericItem) attrKinds() map[string]AttrKind { return g.kinds }

// RegisterGeneric registers (itemType, itemSubType) to always decode as
// a GenericItem, for trees whose shape is defined entirely by their
// attributes and children rather than by a dedicated Go type. kinds
// declares the non-string attribute kinds this tag's attributes parse
// as (e.g. {"number": KindInt}); omit an attribute to leave it KindString.
func RegisterGeneric(itemType, itemSubType string, kinds map[string]AttrKind) {
	Register(itemType, itemSubType, func() Item {
		g := NewGenericItem(itemType, itemSubType)
		g.kinds = kinds
		return g
	})
}

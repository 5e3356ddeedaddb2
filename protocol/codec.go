package protocol

import (
	"fmt"
)

const (
	attrItemSubType = "item_sub_type"
)

// Decode consumes exactly one element from f and returns the tagged
// record it describes, dispatching construction through the (itemType,
// itemSubType) registry. Unknown tags never abort the stream: they come
// back as an Invalid sentinel attached wherever the caller expected a
// child.
func Decode(f Framer) (Item, error) {
	tok, err := f.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokenStartElement {
		return nil, fmt.Errorf("protocol: expected start element, got %v", tok.Kind)
	}
	return decodeElement(f, tok)
}

func decodeElement(f Framer, start Token) (Item, error) {
	itemType := start.Name
	itemSubType := start.Attrs[attrItemSubType]

	var item Item
	if itemType == "game_event_context" {
		item = NewGameEventContext(itemSubType)
	} else {
		item = lookup(itemType, itemSubType)()
	}
	attrs := item.Attrs()
	for key, raw := range start.Attrs {
		if key == attrItemSubType {
			continue
		}
		attrs.Set(key, parseAttrValue(attrKindHint(item, key), raw))
	}

	for {
		tok, err := f.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokenEndElement:
			return item, nil
		case TokenEOF:
			return item, nil
		case TokenStartElement:
			child, err := decodeElement(f, tok)
			if err != nil {
				return nil, err
			}
			item.AddChild(child)
		}
	}
}

// attrKindHint lets a concrete item declare the primitive kind its known
// attributes should parse as (int/bool/color vs. the string default).
// Types that care implement attrKinds(); everything else falls back to
// KindString, which is always a safe, lossless decode.
func attrKindHint(item Item, key string) AttrKind {
	if hinter, ok := item.(interface{ attrKinds() map[string]AttrKind }); ok {
		if kind, ok := hinter.attrKinds()[key]; ok {
			return kind
		}
	}
	return KindString
}

// Encode emits exactly one element for item, including its children, in
// attribute-insertion order.
func Encode(f Framer, item Item) error {
	attrs := item.Attrs()
	keys := attrs.Keys()
	wireAttrs := make(map[string]string, len(keys)+1)
	wireKeys := make([]string, 0, len(keys)+1)

	if item.ItemSubType() != "" {
		wireAttrs[attrItemSubType] = item.ItemSubType()
		wireKeys = append(wireKeys, attrItemSubType)
	}
	for _, k := range keys {
		v, _ := attrs.Get(k)
		wireAttrs[k] = v.String()
		wireKeys = append(wireKeys, k)
	}

	name := item.ItemType()
	if name == "" {
		name = "invalid"
	}

	if err := f.WriteStart(name, wireKeys, wireAttrs); err != nil {
		return err
	}
	for _, child := range item.Children() {
		if err := Encode(f, child); err != nil {
			return err
		}
	}
	return f.WriteEnd(name)
}

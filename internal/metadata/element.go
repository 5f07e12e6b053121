package metadata

import "strconv"

// Attr is a single tag attribute. Attributes keep the order they were added.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Element describes one head tag
type Element struct {
	Tag   string `json:"tag"`
	Attrs []Attr `json:"attrs,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Attr returns the value of the named attribute and whether it was set
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// KeyedElement is an element with a stable positional identity
type KeyedElement struct {
	Key     string   `json:"key"`
	Element *Element `json:"element"`
}

// KeyElements wraps elements with their index as key
func KeyElements(elements []*Element) []KeyedElement {
	keyed := make([]KeyedElement, 0, len(elements))
	for i, el := range elements {
		keyed = append(keyed, KeyedElement{Key: strconv.Itoa(i), Element: el})
	}
	return keyed
}

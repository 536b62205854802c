package portal

import "github.com/gagliardetto/solana-go"

// Item is one stored link.
type Item struct {
	Link string
	// Submitter is set when the program records who added the item.
	Submitter *solana.PublicKey
}

// ItemList is the client's copy of the remote list. It is either
// Uninitialized, meaning the account could not be read (not created yet, or
// the read failed), or Loaded with the items in remote order. A loaded list
// may be empty.
type ItemList struct {
	loaded bool
	items  []Item
}

func Uninitialized() ItemList {
	return ItemList{}
}

func Loaded(items []Item) ItemList {
	return ItemList{loaded: true, items: items}
}

func (l ItemList) IsLoaded() bool {
	return l.loaded
}

// Items returns the loaded items; nil when Uninitialized.
func (l ItemList) Items() []Item {
	return l.items
}

func (l ItemList) Len() int {
	return len(l.items)
}

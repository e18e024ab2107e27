package domain

import "golang.org/x/exp/slices"

// Outfit is an ordered collection of clothing items, sorted by item id
// ascending. Adding an item that is already present is a no-op.
type Outfit struct {
	items []*Clothing
}

func NewOutfit(items ...*Clothing) *Outfit {
	o := Outfit{}
	for _, item := range items {
		o.Add(item)
	}

	return &o
}

func (o *Outfit) Length() int {
	return len(o.items)
}

func (o *Outfit) Items() []*Clothing {
	items := make([]*Clothing, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Outfit) GetById(id int) (*Clothing, bool) {
	for _, item := range o.items {
		if item.Id == id {
			return item, true
		}
	}

	return nil, false
}

func (o *Outfit) Contains(item *Clothing) bool {
	_, ok := o.GetById(item.Id)
	return ok
}

// Add inserts the item reference keeping id order. Items are deduplicated
// by id.
func (o *Outfit) Add(item *Clothing) {
	if item == nil {
		return
	}

	if _, ok := o.GetById(item.Id); ok {
		return
	}

	index, _ := slices.BinarySearchFunc(o.items, item, func(a, b *Clothing) int {
		return a.Id - b.Id
	})
	o.items = slices.Insert(o.items, index, item)
}

func (o *Outfit) Remove(id int) (*Clothing, error) {
	for index, item := range o.items {
		if item.Id == id {
			o.items = append(o.items[:index], o.items[index+1:]...)
			return item, nil
		}
	}

	return nil, ErrClothingNotFound
}

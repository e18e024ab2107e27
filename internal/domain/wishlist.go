package domain

// Wishlist is the user's personal collection of clothing items picked from
// video outfits. Items are held by reference into the same identities the
// outfits hold; adding an item twice is a no-op.
type Wishlist struct {
	items     *Outfit
	onChanged []func()
}

func NewWishlist() *Wishlist {
	return &Wishlist{items: NewOutfit()}
}

// OnChanged registers a hook fired after every successful add or remove.
func (w *Wishlist) OnChanged(fn func()) {
	w.onChanged = append(w.onChanged, fn)
}

func (w *Wishlist) Length() int {
	return w.items.Length()
}

func (w *Wishlist) Items() []*Clothing {
	return w.items.Items()
}

func (w *Wishlist) Contains(item *Clothing) bool {
	return w.items.Contains(item)
}

func (w *Wishlist) Add(item *Clothing) {
	if item == nil || w.items.Contains(item) {
		return
	}

	w.items.Add(item)
	w.fireChanged()
}

func (w *Wishlist) Remove(id int) error {
	if _, err := w.items.Remove(id); err != nil {
		return err
	}

	w.fireChanged()
	return nil
}

func (w *Wishlist) fireChanged() {
	for _, fn := range w.onChanged {
		fn()
	}
}

package tui

// ViewType represents which tab is active.
type ViewType int

const (
	ViewProducts ViewType = iota
	ViewCart
	ViewAccount
)

var viewOrder = []ViewType{ViewProducts, ViewCart, ViewAccount}

func (v ViewType) String() string {
	switch v {
	case ViewProducts:
		return "Products"
	case ViewCart:
		return "Cart"
	case ViewAccount:
		return "Account"
	default:
		return "Unknown"
	}
}

// next returns the tab after v, wrapping around.
func (v ViewType) next() ViewType {
	return viewOrder[(int(v)+1)%len(viewOrder)]
}

// prev returns the tab before v, wrapping around.
func (v ViewType) prev() ViewType {
	return viewOrder[(int(v)+len(viewOrder)-1)%len(viewOrder)]
}

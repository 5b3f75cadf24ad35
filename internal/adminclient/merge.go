package adminclient

import "github.com/tahcohcat/healplay/internal/models"

// The merge rules for push events. Each returns a new slice and leaves its
// input untouched, so applying the same event twice is harmless.

// MergeOrder prepends o unless an order with its id is already present.
func MergeOrder(orders []models.GoodieOrder, o models.GoodieOrder) []models.GoodieOrder {
	for _, existing := range orders {
		if existing.ID == o.ID {
			return orders
		}
	}
	return append([]models.GoodieOrder{o}, orders...)
}

// UpdateOrder replaces the order with o's id. Unknown ids are ignored.
func UpdateOrder(orders []models.GoodieOrder, o models.GoodieOrder) []models.GoodieOrder {
	for i, existing := range orders {
		if existing.ID == o.ID {
			out := append([]models.GoodieOrder(nil), orders...)
			out[i] = o
			return out
		}
	}
	return orders
}

// MergeGoodie prepends g unless a goodie with its id is already present.
func MergeGoodie(goodies []models.Goodie, g models.Goodie) []models.Goodie {
	for _, existing := range goodies {
		if existing.ID == g.ID {
			return goodies
		}
	}
	return append([]models.Goodie{g}, goodies...)
}

// RemoveGoodie drops the goodie with id. Unknown ids are ignored.
func RemoveGoodie(goodies []models.Goodie, id string) []models.Goodie {
	for i, existing := range goodies {
		if existing.ID == id {
			out := make([]models.Goodie, 0, len(goodies)-1)
			out = append(out, goodies[:i]...)
			return append(out, goodies[i+1:]...)
		}
	}
	return goodies
}

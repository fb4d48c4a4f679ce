// Package inventory identifies product rows by their full field tuple. Rows
// carry a surrogate id, but rows registered before ids existed (and CSV tables
// edited by hand) can only be told apart by the composite key.
package inventory

import (
	"strings"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

type Key struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date"`
	Lot        string `json:"lot"`
	Quantity   int    `json:"quantity"`
	Section    string `json:"section"`
}

func KeyOf(p models.Product) Key {
	return Key{
		Code:       p.Code,
		Name:       p.Name,
		ExpiryDate: p.ExpiryDate,
		Lot:        p.Lot,
		Quantity:   p.Quantity,
		Section:    p.Section,
	}.Normalize()
}

// Normalize trims every text field. A lot that is missing, blank or spelled as
// the pandas-style "nan" placeholder becomes "".
func (k Key) Normalize() Key {
	k.Code = strings.TrimSpace(k.Code)
	k.Name = strings.TrimSpace(k.Name)
	k.ExpiryDate = strings.TrimSpace(k.ExpiryDate)
	k.Lot = normalizeLot(k.Lot)
	k.Section = strings.TrimSpace(k.Section)
	return k
}

func normalizeLot(lot string) string {
	lot = strings.TrimSpace(lot)
	if strings.EqualFold(lot, "nan") || strings.EqualFold(lot, "none") {
		return ""
	}
	return lot
}

// Matches reports whether p equals k on every field of the tuple.
func Matches(p models.Product, k Key) bool {
	return KeyOf(p) == k.Normalize()
}

// RemoveMatching returns table without the rows equal to k and how many were
// dropped. Kept rows stay in their original order. Identical duplicates are all
// removed.
func RemoveMatching(table []models.Product, k Key) ([]models.Product, int) {
	k = k.Normalize()
	kept := make([]models.Product, 0, len(table))
	removed := 0
	for _, p := range table {
		if KeyOf(p) == k {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	return kept, removed
}

// Filter returns the rows matching k without modifying table.
func Filter(table []models.Product, k Key) []models.Product {
	k = k.Normalize()
	var out []models.Product
	for _, p := range table {
		if KeyOf(p) == k {
			out = append(out, p)
		}
	}
	return out
}

package subscription

import "slices"

// PriceConfig holds the provider price identifiers that grant the pro tier.
type PriceConfig struct {
	ProMonthly     string `env:"STRIPE_PRICE_ID_PRO_MONTHLY,required"`
	ProPlusMonthly string `env:"STRIPE_PRICE_ID_PRO_PLUS_MONTHLY"`
}

// PriceSet is the set of recognized paid price IDs.
type PriceSet struct {
	ids []string
}

// NewPriceSet builds a PriceSet from the given IDs, skipping empty ones.
func NewPriceSet(ids ...string) PriceSet {
	set := PriceSet{ids: make([]string, 0, len(ids))}
	for _, id := range ids {
		if id != "" && !slices.Contains(set.ids, id) {
			set.ids = append(set.ids, id)
		}
	}
	return set
}

// PriceSetFromConfig builds a PriceSet from environment configuration.
func PriceSetFromConfig(cfg PriceConfig) (PriceSet, error) {
	set := NewPriceSet(cfg.ProMonthly, cfg.ProPlusMonthly)
	if set.Len() == 0 {
		return PriceSet{}, ErrMissingPrices
	}
	return set, nil
}

// Recognizes reports whether priceID grants the pro tier.
func (p PriceSet) Recognizes(priceID string) bool {
	return priceID != "" && slices.Contains(p.ids, priceID)
}

// Len returns the number of recognized prices.
func (p PriceSet) Len() int {
	return len(p.ids)
}

// IDs returns a copy of the recognized price IDs.
func (p PriceSet) IDs() []string {
	return slices.Clone(p.ids)
}

package catalog

// Item is one image returned by the catalog.
// Two items are the same entity when their IDs match.
type Item struct {
	ID       string  `json:"id"`
	ImageURL string  `json:"url"`
	Breeds   []Breed `json:"breeds"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
}

// Valid reports whether the item carries the fields needed to render or persist it.
func (i Item) Valid() bool {
	return i.ID != "" && i.ImageURL != ""
}

// HasBreeds reports whether the item already carries breed details.
func (i Item) HasBreeds() bool {
	return len(i.Breeds) > 0
}

// Breed describes a cat breed. Read-only, always sourced from the catalog.
type Breed struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Origin      string  `json:"origin,omitempty"`
	Temperament string  `json:"temperament,omitempty"`
	Description string  `json:"description,omitempty"`
	LifeSpan    string  `json:"life_span,omitempty"`
	Weight      *Weight `json:"weight,omitempty"`
}

// Weight is a breed's weight range as reported by the catalog.
type Weight struct {
	Imperial string `json:"imperial,omitempty"`
	Metric   string `json:"metric,omitempty"`
}

// WeightMetric returns the metric weight range, or "" when unknown.
func (b Breed) WeightMetric() string {
	if b.Weight == nil {
		return ""
	}
	return b.Weight.Metric
}

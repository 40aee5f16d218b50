package types

// Extreme is a best or worst rating together with every title that has it.
type Extreme struct {
	Rating float64
	Titles []string
}

// Stats summarizes the qualifying ratings of one user's collection.
type Stats struct {
	Count   int
	Average float64
	Median  float64
	Best    Extreme
	Worst   Extreme
}

package quiz

// DefaultTitle is shown above the questions of the Venice catalog.
const DefaultTitle = "Venice History Challenge"

// VeniceCatalog returns the built-in question set.
func VeniceCatalog() Catalog {
	return Catalog{
		Title: DefaultTitle,
		Questions: []Question{
			{
				Order:        0,
				Prompt:       "What year was Venice founded?",
				Options:      []string{"421 AD", "568 AD", "697 AD", "810 AD"},
				CorrectIndex: 0,
			},
			{
				Order:        1,
				Prompt:       "What Venetian explorer opened trade with Asia?",
				Options:      []string{"Columbus", "Da Gama", "Polo", "Cabot"},
				CorrectIndex: 2,
			},
		},
	}
}

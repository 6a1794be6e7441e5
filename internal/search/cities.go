package search

import "strings"

// Cities are the autocomplete choices of the search form.
var Cities = []string{
	"Addis Ababa", "Adama", "Hawassa", "Bahir Dar", "Gondar",
	"Mekele", "Dire Dawa", "Jimma", "Dessie", "Shashemene",
	"Arba Minch", "Sodo", "Jijiga", "Harar", "Dilla",
	"Wolaita Sodo", "Hosaena", "Asella", "Ambo", "Butajira",
}

// Suggest returns the cities containing input, case-insensitively, in
// list order.
func Suggest(input string) []string {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return nil
	}
	var out []string
	for _, c := range Cities {
		if strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
		}
	}
	return out
}

// Package words holds the per-category secret word lists and picks one
// uniformly at random. Unknown categories fall back to a small default list.
package words

import "math/rand"

var lists = map[string][]string{
	"Video Games": {
		"Mario", "Zelda", "Minecraft", "Fortnite", "Overwatch",
		"Pokemon", "Tetris", "Halo", "Sonic", "Pac-Man",
	},
	"Movies": {
		"Titanic", "Inception", "Avatar", "Gladiator", "Jaws",
		"Alien", "Rocky", "Amadeus", "Frozen", "Godfather",
	},
	"Shows": {
		"Friends", "Breaking Bad", "Sherlock", "Stranger Things", "Game of Thrones",
		"The Office", "Simpsons", "Lost", "House", "Dexter",
	},
	"Animals": {
		"Elephant", "Giraffe", "Kangaroo", "Dolphin", "Panda",
		"Penguin", "Lion", "Tiger", "Zebra", "Koala",
	},
	"Foods": {
		"Pizza", "Sushi", "Burger", "Pasta", "Taco",
		"Salad", "Chocolate", "Ice Cream", "Steak", "Pancake",
	},
}

var defaultList = []string{"Apple", "Mountain", "Pirate", "Robot", "Guitar"}

// Categories returns the known category names.
func Categories() []string {
	out := make([]string, 0, len(lists))
	for name := range lists {
		out = append(out, name)
	}
	return out
}

// Random returns one word from the category's list, or from the default
// list if the category is unknown.
func Random(category string) string {
	words, ok := lists[category]
	if !ok {
		words = defaultList
	}
	return words[rand.Intn(len(words))]
}

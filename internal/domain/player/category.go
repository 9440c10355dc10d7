package player

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the player role that selects the metric set used for scoring.
type Category string

// Built-in categories.
const (
	Attacker   Category = "Attacker"
	Midfielder Category = "Midfielder"
	Defender   Category = "Defender"
	Goalkeeper Category = "Goalkeeper"
)

var titleCaser = cases.Title(language.English)

// aliases maps alternate position labels found in upstream feeds.
var aliases = map[string]Category{
	"Forward": Attacker,
	"Striker": Attacker,
	"Winger":  Attacker,
	"Keeper":  Goalkeeper,
}

// Categories returns the built-in categories in a stable order.
func Categories() []Category {
	return []Category{Attacker, Midfielder, Defender, Goalkeeper}
}

// ParseCategory normalizes a position label ("attacker", " GOALKEEPER ",
// "Forward") into a Category.
func ParseCategory(label string) (Category, error) {
	norm := titleCaser.String(strings.TrimSpace(label))
	switch c := Category(norm); c {
	case Attacker, Midfielder, Defender, Goalkeeper:
		return c, nil
	}
	if c, ok := aliases[norm]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
}

// Valid reports whether c is one of the built-in categories.
func (c Category) Valid() bool {
	switch c {
	case Attacker, Midfielder, Defender, Goalkeeper:
		return true
	}
	return false
}

// GroupLabel is the plural heading used when listing players by category.
func (c Category) GroupLabel() string {
	switch c {
	case Attacker:
		return "Forwards"
	case Midfielder:
		return "Midfielders"
	case Defender:
		return "Defenders"
	case Goalkeeper:
		return "Goalkeepers"
	}
	return "Others"
}

func (c Category) String() string { return string(c) }

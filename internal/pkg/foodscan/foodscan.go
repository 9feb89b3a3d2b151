// Keyword-based food availability detection for event listings.
package foodscan

import "strings"

// affirmative is the curated keyword list, ordered. The first match decides
// the note when the classifier is configured to report the matched phrase.
var affirmative = []string{
	"free food", "food truck", "food giveaway", "food provided", "meals available",
	"meal served", "serving food", "providing food", "catered", "catering",
	"light snacks", "light refreshments", "refreshments served", "refreshments",
	"pizza party", "snack break", "join us for lunch", "join us for dinner",
	"enjoy lunch", "enjoy dinner", "meal ticket", "taste test", "tasting",
	"food", "meal", "lunch", "dinner", "breakfast", "brunch", "snack",
	"pizza", "cookies", "drinks", "coffee", "tea", "boba", "dessert",
	"beverage", "soda", "sandwich", "barbecue", "bbq", "grill", "popcorn",
	"ice cream", "cake", "pasta", "chips", "taco", "burger", "salad",
	"cookout", "potluck", "appetizer", "feast", "picnic", "banquet", "subs",
	"wraps", "rice", "noodle", "dumpling", "sushi", "candy", "smoothie",
	"fruit", "pretzel", "taste", "cook", "chef", "eat", "eating", "buffet",
	"treats", "culinary", "kitchen", "feed", "pantry",
}

// negation phrases override any affirmative match.
var negation = []string{
	"no food", "no free food", "food not provided", "food will not be provided",
	"food is not provided", "not providing food", "no food provided",
	"bring your own food", "byo food", "no snacks", "no refreshments",
	"no drinks", "no meal", "outside food is not allowed",
}

// Classifier decides food availability from event title and description
// text. It is deterministic: identical input always yields the identical
// result. Accuracy is best-effort; the organizer's wording is trusted.
type Classifier struct {
	affirmative []string
	negation    []string
	fixedNote   string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFixedNote makes every positive classification carry note instead of
// the matched phrase.
func WithFixedNote(note string) Option {
	return func(c *Classifier) { c.fixedNote = note }
}

// WithExtraKeywords appends affirmative keywords after the built-in list.
func WithExtraKeywords(words ...string) Option {
	return func(c *Classifier) {
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				c.affirmative = append(c.affirmative, w)
			}
		}
	}
}

// WithExtraNegations appends negation phrases after the built-in list.
func WithExtraNegations(phrases ...string) Option {
	return func(c *Classifier) {
		for _, p := range phrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				c.negation = append(c.negation, p)
			}
		}
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		affirmative: affirmative,
		negation:    negation,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify reports whether the combined title and description suggest food
// will be offered, plus a human-readable note. Negation phrases take
// precedence over affirmative keywords: "free pizza, no food after 8" is
// classified as no food. A negative result always carries an empty note.
func (c *Classifier) Classify(title, description string) (bool, string) {
	text := strings.ToLower(title + " " + description)

	for _, phrase := range c.negation {
		if strings.Contains(text, phrase) {
			return false, ""
		}
	}
	for _, word := range c.affirmative {
		if strings.Contains(text, word) {
			if c.fixedNote != "" {
				return true, c.fixedNote
			}
			return true, word
		}
	}
	return false, ""
}

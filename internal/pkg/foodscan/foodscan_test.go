package foodscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := New()

	tests := []struct {
		name        string
		title       string
		description string
		wantFood    bool
		wantNote    string
	}{
		{
			name:        "plain keyword in description",
			title:       "Robotics Club Weekly Meeting",
			description: "We will have pizza and talk about the new arm.",
			wantFood:    true,
			wantNote:    "pizza",
		},
		{
			name:     "keyword in title only",
			title:    "Boba Social",
			wantFood: true,
			wantNote: "boba",
		},
		{
			name:        "case insensitive",
			title:       "GBM",
			description: "FREE FOOD while supplies last!",
			wantFood:    true,
			wantNote:    "free food",
		},
		{
			name:        "phrase match preferred over bare word",
			title:       "Welcome Back Night",
			description: "Light refreshments served in the atrium.",
			wantFood:    true,
			wantNote:    "light refreshments",
		},
		{
			name:        "negation beats affirmative",
			title:       "Movie Night",
			description: "Free pizza was last week, this time no food will be available.",
			wantFood:    false,
			wantNote:    "",
		},
		{
			name:        "bring your own food",
			title:       "Park Hangout",
			description: "Bring your own food and a blanket.",
			wantFood:    false,
			wantNote:    "",
		},
		{
			name:        "food not provided",
			title:       "Hack Night",
			description: "Food not provided, vending machines nearby.",
			wantFood:    false,
			wantNote:    "",
		},
		{
			name:        "no keyword at all",
			title:       "Linear Algebra Review",
			description: "Covering chapters 3 through 5.",
			wantFood:    false,
			wantNote:    "",
		},
		{
			name:     "empty input",
			wantFood: false,
			wantNote: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasFood, note := c.Classify(tt.title, tt.description)
			assert.Equal(t, tt.wantFood, hasFood)
			assert.Equal(t, tt.wantNote, note)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New()
	title := "Career Fair Prep"
	desc := "Snacks and coffee provided, no drinks on the lab floor."

	firstFood, firstNote := c.Classify(title, desc)
	for i := 0; i < 50; i++ {
		hasFood, note := c.Classify(title, desc)
		assert.Equal(t, firstFood, hasFood)
		assert.Equal(t, firstNote, note)
	}
}

func TestClassifyFixedNote(t *testing.T) {
	c := New(WithFixedNote("Detected by keyword match"))

	hasFood, note := c.Classify("Tea Time", "")
	assert.True(t, hasFood)
	assert.Equal(t, "Detected by keyword match", note)

	hasFood, note = c.Classify("Study Hall", "bring notebooks")
	assert.False(t, hasFood)
	assert.Empty(t, note, "negative results never carry a note")
}

func TestClassifyExtraRules(t *testing.T) {
	c := New(
		WithExtraKeywords("empanadas"),
		WithExtraNegations("food sold separately"),
	)

	hasFood, note := c.Classify("Fiesta", "fresh empanadas at the door")
	assert.True(t, hasFood)
	assert.Equal(t, "empanadas", note)

	hasFood, _ = c.Classify("Fiesta", "empanadas, food sold separately")
	assert.False(t, hasFood)
}

package models

import "strings"

// Category A classification label together with its gallery route and template
type Category struct {
	Label    string
	Slug     string
	Template string
}

// Categories The fixed label set. The order is the order in which the labels
// are offered to the classifier.
var Categories = []Category{
	{Label: "human", Slug: "human", Template: "human.html"},
	{Label: "landscape", Slug: "landscape", Template: "landscape.html"},
	{Label: "animal", Slug: "animal", Template: "animal.html"},
	{Label: "food", Slug: "food", Template: "food.html"},
	{Label: "document", Slug: "document", Template: "document.html"},
	{Label: "something else", Slug: "something", Template: "something.html"},
}

// FallbackLabel Label used for anything that fits none of the other categories
const FallbackLabel = "something else"

// Labels Returns the labels of all categories, in classifier order
func Labels() []string {
	labels := make([]string, len(Categories))
	for i, category := range Categories {
		labels[i] = category.Label
	}
	return labels
}

// LookupCategory Find a category by label or slug, ignoring case and surrounding space
func LookupCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, category := range Categories {
		if name == category.Label || name == category.Slug {
			return category, true
		}
	}
	return Category{}, false
}

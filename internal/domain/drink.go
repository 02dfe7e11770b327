package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Ingredient struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

type Recipe []Ingredient

type Drink struct {
	Id     int64
	Title  string
	Recipe Recipe
}

// DrinkView is the JSON representation handed to API clients
type DrinkView struct {
	Id     int64  `json:"id"`
	Title  string `json:"title"`
	Recipe Recipe `json:"recipe"`
}

// Short is the public view: ingredient names are withheld, only the colors
// and proportions needed to draw the drink remain.
func (d Drink) Short() DrinkView {
	recipe := make(Recipe, len(d.Recipe))
	for i, ingredient := range d.Recipe {
		recipe[i] = Ingredient{Color: ingredient.Color, Parts: ingredient.Parts}
	}
	return DrinkView{Id: d.Id, Title: d.Title, Recipe: recipe}
}

// Long is the full view for baristas and managers.
func (d Drink) Long() DrinkView {
	recipe := make(Recipe, len(d.Recipe))
	copy(recipe, d.Recipe)
	return DrinkView{Id: d.Id, Title: d.Title, Recipe: recipe}
}

// ParseRecipe accepts either a list of ingredients or a single ingredient
// object, which is wrapped in a list.
func ParseRecipe(raw json.RawMessage) (Recipe, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("recipe is empty")
	}
	var recipe Recipe
	if trimmed[0] == '{' {
		var ingredient Ingredient
		if err := json.Unmarshal(trimmed, &ingredient); err != nil {
			return nil, fmt.Errorf("invalid recipe: %w", err)
		}
		recipe = Recipe{ingredient}
	} else if err := json.Unmarshal(trimmed, &recipe); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r Recipe) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("recipe needs at least one ingredient")
	}
	for i, ingredient := range r {
		if ingredient.Color == "" {
			return fmt.Errorf("ingredient %d has no color", i)
		}
		if ingredient.Parts <= 0 {
			return fmt.Errorf("ingredient %d needs a positive number of parts", i)
		}
	}
	return nil
}

//go:build prod

package environment

// BuildMode identifies the record compiled into this binary.
const BuildMode = "production"

var current = Environment{
	Production:   true,
	APIServerURL: "https://api.coffeeshop.olimboy.us",
	Auth: Auth{
		DomainPrefix: "olimboy.us",
		Audience:     "coffee_shop",
		ClientID:     "PgQemCm78Kb93Jo6flJjYaIynILVdP0i",
		CallbackURL:  "https://coffeeshop.olimboy.us",
	},
}

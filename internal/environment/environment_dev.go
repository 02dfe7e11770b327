//go:build !prod

package environment

// BuildMode identifies the record compiled into this binary.
const BuildMode = "development"

var current = Environment{
	Production:   false,
	APIServerURL: "http://127.0.0.1:5000",
	Auth: Auth{
		DomainPrefix: "olimboy.us",
		Audience:     "coffee_shop",
		ClientID:     "PgQemCm78Kb93Jo6flJjYaIynILVdP0i",
		CallbackURL:  "http://localhost:8100",
	},
}

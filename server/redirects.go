package server

import (
	"github.com/gofiber/fiber/v2"
)

// Old page locations that moved permanently
var legacyRedirects = map[string]string{
	"/what-i-use": "/uses",
	"/tools":      "/uses",
}

// Regex constraints match anywhere in the segment unless anchored
const datedPostRoute = `/:year<regex(^\d{4}$)>/:month<regex(^\d{2}$)>/:day<regex(^\d{2}$)>/:post`

func registerRedirects(app *fiber.App) {
	for source, destination := range legacyRedirects {
		app.Get(source, func(c *fiber.Ctx) error {
			return c.Redirect(destination, fiber.StatusMovedPermanently)
		})
	}

	// Date based post URLs, /2023/06/15/hello-world => /blog/hello-world
	app.Get(datedPostRoute, func(c *fiber.Ctx) error {
		return c.Redirect("/blog/"+c.Params("post"), fiber.StatusMovedPermanently)
	})
}

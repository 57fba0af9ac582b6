package controllers

import "github.com/bjaus/mvc"

// Home serves the landing page.
type Home struct{}

// Index renders the landing page with links to each entity list.
func (h *Home) Index(c *mvc.Context) error {
	return c.Render("Home/index.html", nil)
}

package docket

import (
	"github.com/a-h/templ"

	"github.com/eringen/docket/views"
)

// ViewFuncs holds the components the App renders pages with. Any field
// left nil falls back to the built-in view of DefaultViews, so a site can
// override single pages.
type ViewFuncs struct {
	Home        func(views.HomePage) templ.Component
	Blog        func(views.ListPage) templ.Component
	Category    func(views.ListPage) templ.Component
	Tag         func(views.ListPage) templ.Component
	Tags        func(views.TagsPage) templ.Component
	Post        func(views.PostPage) templ.Component
	Contact     func(views.ContactPage) templ.Component
	NotFound    func(views.ErrorPage) templ.Component
	ServerError func(views.ErrorPage) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Blog:        views.List,
		Category:    views.List,
		Tag:         views.List,
		Tags:        views.Tags,
		Post:        views.Post,
		Contact:     views.Contact,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Blog == nil {
		v.Blog = d.Blog
	}
	if v.Category == nil {
		v.Category = d.Category
	}
	if v.Tag == nil {
		v.Tag = d.Tag
	}
	if v.Tags == nil {
		v.Tags = d.Tags
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Contact == nil {
		v.Contact = d.Contact
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}

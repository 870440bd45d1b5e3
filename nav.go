package main

const rootPath = "/"

type navigator interface {
	Go(path string)
}

// router is the in-process location. The accounts list is the only view
// and lives at the root path.
type router struct {
	path string
}

func newRouter() *router {
	return &router{path: rootPath}
}

func (r *router) Go(path string) {
	if path == "" {
		path = rootPath
	}
	r.path = path
}

func (r *router) Path() string { return r.path }

package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path of the route group.
	RootPath = "/"

	// ErrNilACDFatalLogMsg is used if the app, cfg, db or engine pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg, db or engine is nil"
)

// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/htmlsanitize"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// Defaults used until Init is called.
const (
	DefaultSiteName   = "StrataPage"
	DefaultFooterHTML = "Built with StrataPage"
)

// BaseVM contains common fields for all view models.
// Embed it in feature view models:
//
//	type dashboardData struct {
//	    viewdata.BaseVM
//	    Pages []pageRow
//	}
type BaseVM struct {
	SiteName   string
	FooterHTML template.HTML

	IsLoggedIn bool
	UserID     string
	UserName   string
	UserEmail  string

	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
	Flashes   []string
}

var (
	mu         sync.RWMutex
	siteName   = DefaultSiteName
	footerHTML = htmlsanitize.PrepareForDisplay(DefaultFooterHTML)
)

// Init sets the site chrome from configuration. footer may be plain text or
// HTML; it is sanitized once here.
func Init(name, footer string) {
	mu.Lock()
	defer mu.Unlock()
	if name != "" {
		siteName = name
	}
	if footer != "" {
		footerHTML = htmlsanitize.PrepareForDisplay(footer)
	}
}

// New creates a BaseVM with site chrome and the current user.
func New(r *http.Request) BaseVM {
	mu.RLock()
	vm := BaseVM{
		SiteName:    siteName,
		FooterHTML:  footerHTML,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	mu.RUnlock()

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserID = u.ID
		vm.UserName = u.Name
		vm.UserEmail = u.Email
	}
	return vm
}

// NewBaseVM is New plus a title and a back link, resolved from ?return= or
// backDefault.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}

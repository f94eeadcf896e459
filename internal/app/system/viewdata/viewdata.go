// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SiteName is shown in the page title and sidebar header.
const SiteName = "Stajyer Takip"

// MenuItem is one sidebar link.
type MenuItem struct {
	Label  string
	Href   string
	Icon   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	IsManager  bool
	UserName   string
	UserEmail  string
	Initials   string
	Menu       []MenuItem

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Toasts carried over a redirect
	Flashes []auth.Flash
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Flashes:     auth.Flashes(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Role = strings.ToLower(u.Role)
		vm.IsManager = vm.Role == models.RoleManager
		vm.UserName = u.Name
		vm.UserEmail = u.Email
		vm.Initials = Initials(u.Name)
		vm.Menu = MenuFor(vm.Role, r.URL.Path)
	}
	return vm
}

// Initials returns the upper-cased first letters of up to two words of name,
// using Turkish casing rules (i → İ).
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(r)
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return cases.Upper(language.Turkish).String(b.String())
}

// MenuFor returns the sidebar for a role, marking the entry that owns path.
func MenuFor(role, path string) []MenuItem {
	var items []MenuItem
	if role == models.RoleManager {
		items = []MenuItem{
			{Label: "Dashboard", Href: "/dashboard", Icon: "chart"},
			{Label: "Tüm Stajyerler", Href: "/students", Icon: "users"},
			{Label: "Bildirimler", Href: "/notifications", Icon: "bell"},
			{Label: "Ayarlar", Href: "/settings", Icon: "cog"},
		}
	} else {
		items = []MenuItem{
			{Label: "Aktivitelerim", Href: "/activities", Icon: "list"},
			{Label: "Bildirimler", Href: "/notifications", Icon: "bell"},
			{Label: "Ayarlar", Href: "/settings", Icon: "cog"},
		}
	}
	for i := range items {
		href := items[i].Href
		items[i].Active = path == href || strings.HasPrefix(path, href+"/")
	}
	return items
}

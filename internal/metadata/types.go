// Package metadata holds the data model for page head metadata: the authored
// values each route segment contributes, the resolved values a resolution pass
// produces, the per-request Context and the error model shared by the
// resolver, the element builders and the head components.
package metadata

import "net/url"

// Title is an authored title. Template applies to descendant segments,
// Default is used when no descendant sets a title, Absolute ignores any
// ancestor template.
type Title struct {
	Default  string
	Template string
	Absolute string
}

// TitleString returns a Title with only Default set
func TitleString(s string) *Title {
	return &Title{Default: s}
}

// Author is a page author
type Author struct {
	Name string
	URL  string
}

// Robots controls the robots meta tag
type Robots struct {
	Index     *bool
	Follow    *bool
	NoCache   bool
	GoogleBot string
}

// Alternates describes canonical and alternate URLs
type Alternates struct {
	Canonical string
	Languages map[string]string
	Media     map[string]string
	Types     map[string]string
}

// ITunes describes the apple-itunes-app tag
type ITunes struct {
	AppID       string
	AppArgument string
}

// Facebook describes fb:* tags
type Facebook struct {
	AppID  string
	Admins []string
}

// FormatDetection toggles automatic format detection on mobile browsers.
// A nil field is left out.
type FormatDetection struct {
	Telephone *bool
	Date      *bool
	Address   *bool
	Email     *bool
	URL       *bool
}

// Verification holds site verification tokens
type Verification struct {
	Google []string
	Yahoo  []string
	Yandex []string
	Me     []string
	Other  map[string][]string
}

// StartupImage is an apple-touch-startup-image link
type StartupImage struct {
	URL   string
	Media string
}

// AppleWebApp describes the apple-mobile-web-app-* tags
type AppleWebApp struct {
	Capable        bool
	Title          string
	StatusBarStyle string
	StartupImages  []StartupImage
}

// OGImage is an OpenGraph image
type OGImage struct {
	URL    string
	Width  int
	Height int
	Alt    string
	Type   string
}

// OpenGraph describes og:* tags
type OpenGraph struct {
	Type        string
	Title       string
	Description string
	URL         string
	SiteName    string
	Locale      string
	Images      []OGImage
}

// Twitter describes twitter:* tags
type Twitter struct {
	Card        string
	Site        string
	Creator     string
	Title       string
	Description string
	Images      []string
}

// AppLink is a single al:* entry. Platform-specific fields are optional.
type AppLink struct {
	URL            string
	AppStoreID     string
	Package        string
	AppName        string
	ShouldFallback *bool
}

// AppLinks groups al:* entries per platform
type AppLinks struct {
	IOS     []AppLink
	Android []AppLink
	Web     []AppLink
}

// Icon is a link-based icon descriptor
type Icon struct {
	URL   string
	Rel   string
	Type  string
	Sizes string
	Media string
}

// Icons groups icons by rel
type Icons struct {
	Icon     []Icon
	Apple    []Icon
	Shortcut []Icon
	Other    []Icon
}

// Metadata is what a single segment contributes. Nil or zero fields do not
// override values inherited from ancestor segments.
type Metadata struct {
	MetadataBase    *url.URL
	Title           *Title
	Description     string
	ApplicationName string
	Generator       string
	Keywords        []string
	Referrer        string
	Creator         string
	Publisher       string
	Category        string
	Manifest        string
	Authors         []Author
	Robots          *Robots
	Alternates      *Alternates
	ITunes          *ITunes
	Facebook        *Facebook
	FormatDetection *FormatDetection
	Verification    *Verification
	AppleWebApp     *AppleWebApp
	OpenGraph       *OpenGraph
	Twitter         *Twitter
	AppLinks        *AppLinks
	Icons           *Icons
	Other           map[string][]string
}

// ThemeColor is a theme-color meta entry
type ThemeColor struct {
	Color string
	Media string
}

// Viewport is what a single segment contributes to the viewport
type Viewport struct {
	Width        string
	InitialScale float64
	MaximumScale float64
	UserScalable *bool
	ThemeColor   []ThemeColor
	ColorScheme  string
}

// ResolvedMetadata is the merged metadata of one resolution pass.
// TitleTemplate is the template in force for descendants and is not emitted.
type ResolvedMetadata struct {
	Metadata
	ResolvedTitle string
	TitleTemplate string
}

// ResolvedViewport is the merged viewport of one resolution pass
type ResolvedViewport struct {
	Viewport
}

// DefaultMetadata returns the metadata a pass starts from
func DefaultMetadata() *ResolvedMetadata {
	return &ResolvedMetadata{}
}

// DefaultViewport returns the viewport a pass starts from
func DefaultViewport() *ResolvedViewport {
	return &ResolvedViewport{Viewport: Viewport{
		Width:        "device-width",
		InitialScale: 1,
	}}
}

// Item is one accumulated metadata/viewport pair. Source names the segment it
// came from and is only used in diagnostics.
type Item struct {
	Metadata *Metadata
	Viewport *Viewport
	Source   string
}

// ErrorMetadataItem seeds the resolver's accumulation. It is the empty
// triple and carries no data.
var ErrorMetadataItem = Item{}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

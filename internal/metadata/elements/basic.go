package elements

import (
	"sort"
	"strconv"
	"strings"

	"github.com/conduit-lang/pagemeta/internal/metadata"
)

// ViewportMeta emits the viewport, theme-color and color-scheme tags
func ViewportMeta(vp *metadata.ResolvedViewport) []*metadata.Element {
	var parts []string
	if vp.Width != "" {
		parts = append(parts, "width="+vp.Width)
	}
	if vp.InitialScale != 0 {
		parts = append(parts, "initial-scale="+formatScale(vp.InitialScale))
	}
	if vp.MaximumScale != 0 {
		parts = append(parts, "maximum-scale="+formatScale(vp.MaximumScale))
	}
	if vp.UserScalable != nil {
		parts = append(parts, "user-scalable="+yesNo(*vp.UserScalable))
	}

	out := []*metadata.Element{Meta("viewport", strings.Join(parts, ", "))}
	for _, tc := range vp.ThemeColor {
		el := Meta("theme-color", tc.Color)
		if el != nil && tc.Media != "" {
			el.Attrs = append(el.Attrs, metadata.Attr{Name: "media", Value: tc.Media})
		}
		out = append(out, el)
	}
	return append(out, Meta("color-scheme", vp.ColorScheme))
}

func formatScale(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// BasicMeta emits charset, title and the plain name/content tags
func BasicMeta(md *metadata.ResolvedMetadata) []*metadata.Element {
	out := []*metadata.Element{
		{Tag: "meta", Attrs: []metadata.Attr{{Name: "charSet", Value: "utf-8"}}},
	}
	if md.ResolvedTitle != "" {
		out = append(out, &metadata.Element{Tag: "title", Text: md.ResolvedTitle})
	}
	out = append(out,
		Meta("description", md.Description),
		Meta("application-name", md.ApplicationName),
	)
	for _, a := range md.Authors {
		out = append(out, Link("author", a.URL), Meta("author", a.Name))
	}
	out = append(out,
		Link("manifest", md.Manifest),
		Meta("generator", md.Generator),
		Meta("keywords", strings.Join(md.Keywords, ",")),
		Meta("referrer", md.Referrer),
		Meta("creator", md.Creator),
		Meta("publisher", md.Publisher),
	)
	if md.Robots != nil {
		out = append(out,
			Meta("robots", robotsContent(md.Robots)),
			Meta("googlebot", md.Robots.GoogleBot),
		)
	}
	out = append(out, Meta("category", md.Category))

	names := make([]string, 0, len(md.Other))
	for name := range md.Other {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range md.Other[name] {
			out = append(out, Meta(name, v))
		}
	}
	return out
}

func robotsContent(r *metadata.Robots) string {
	var parts []string
	if r.Index != nil {
		if *r.Index {
			parts = append(parts, "index")
		} else {
			parts = append(parts, "noindex")
		}
	}
	if r.Follow != nil {
		if *r.Follow {
			parts = append(parts, "follow")
		} else {
			parts = append(parts, "nofollow")
		}
	}
	if r.NoCache {
		parts = append(parts, "nocache")
	}
	return strings.Join(parts, ", ")
}

// ITunesMeta emits the apple-itunes-app tag
func ITunesMeta(it *metadata.ITunes) []*metadata.Element {
	if it == nil || it.AppID == "" {
		return nil
	}
	content := "app-id=" + it.AppID
	if it.AppArgument != "" {
		content += ", app-argument=" + it.AppArgument
	}
	return []*metadata.Element{Meta("apple-itunes-app", content)}
}

// FacebookMeta emits fb:app_id and fb:admins
func FacebookMeta(fb *metadata.Facebook) []*metadata.Element {
	if fb == nil {
		return nil
	}
	out := []*metadata.Element{MetaProperty("fb:app_id", fb.AppID)}
	for _, admin := range fb.Admins {
		out = append(out, MetaProperty("fb:admins", admin))
	}
	return out
}

// FormatDetectionMeta emits one format-detection tag listing the disabled
// formats
func FormatDetectionMeta(fd *metadata.FormatDetection) []*metadata.Element {
	if fd == nil {
		return nil
	}
	fields := []struct {
		key string
		val *bool
	}{
		{"telephone", fd.Telephone},
		{"date", fd.Date},
		{"address", fd.Address},
		{"email", fd.Email},
		{"url", fd.URL},
	}
	var parts []string
	for _, f := range fields {
		if f.val != nil && !*f.val {
			parts = append(parts, f.key+"=no")
		}
	}
	return []*metadata.Element{Meta("format-detection", strings.Join(parts, ", "))}
}

// VerificationMeta emits site verification tags
func VerificationMeta(v *metadata.Verification) []*metadata.Element {
	if v == nil {
		return nil
	}
	var out []*metadata.Element
	for _, g := range v.Google {
		out = append(out, Meta("google-site-verification", g))
	}
	for _, y := range v.Yahoo {
		out = append(out, Meta("y_key", y))
	}
	for _, y := range v.Yandex {
		out = append(out, Meta("yandex-verification", y))
	}
	for _, m := range v.Me {
		out = append(out, Meta("me", m))
	}

	names := make([]string, 0, len(v.Other))
	for name := range v.Other {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, val := range v.Other[name] {
			out = append(out, Meta(name, val))
		}
	}
	return out
}

// AppleWebAppMeta emits the apple web app tags
func AppleWebAppMeta(a *metadata.AppleWebApp) []*metadata.Element {
	if a == nil {
		return nil
	}
	var out []*metadata.Element
	if a.Capable {
		out = append(out, Meta("mobile-web-app-capable", "yes"))
	}
	out = append(out, Meta("apple-mobile-web-app-title", a.Title))
	for _, img := range a.StartupImages {
		out = append(out, Link("apple-touch-startup-image", img.URL, metadata.Attr{Name: "media", Value: img.Media}))
	}
	return append(out, Meta("apple-mobile-web-app-status-bar-style", a.StatusBarStyle))
}

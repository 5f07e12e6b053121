package resolve

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/conduit-lang/pagemeta/internal/metadata"
)

// Merge folds items in order into resolved metadata and viewport. Later items
// override earlier ones field by field. Relative URLs are resolved against
// the request pathname and the metadata base once all items are merged.
func Merge(items []metadata.Item, mctx metadata.Context) (*metadata.ResolvedMetadata, *metadata.ResolvedViewport, error) {
	md := metadata.DefaultMetadata()
	vp := metadata.DefaultViewport()

	for _, item := range items {
		if item.Metadata != nil {
			mergeMetadata(md, item.Metadata)
		}
		if item.Viewport != nil {
			mergeViewport(vp, item.Viewport)
		}
	}

	inheritTwitter(md)

	if err := resolveURLs(md, mctx); err != nil {
		return nil, nil, err
	}
	return md, vp, nil
}

func mergeMetadata(dst *metadata.ResolvedMetadata, src *metadata.Metadata) {
	if src.MetadataBase != nil {
		dst.MetadataBase = src.MetadataBase
	}
	if src.Title != nil {
		switch {
		case src.Title.Absolute != "":
			dst.ResolvedTitle = src.Title.Absolute
		case src.Title.Default != "":
			dst.ResolvedTitle = applyTemplate(dst.TitleTemplate, src.Title.Default)
		}
		if src.Title.Template != "" {
			dst.TitleTemplate = src.Title.Template
		}
		dst.Title = src.Title
	}

	setString(&dst.Description, src.Description)
	setString(&dst.ApplicationName, src.ApplicationName)
	setString(&dst.Generator, src.Generator)
	setString(&dst.Referrer, src.Referrer)
	setString(&dst.Creator, src.Creator)
	setString(&dst.Publisher, src.Publisher)
	setString(&dst.Category, src.Category)
	setString(&dst.Manifest, src.Manifest)

	if src.Keywords != nil {
		dst.Keywords = src.Keywords
	}
	if src.Authors != nil {
		dst.Authors = src.Authors
	}
	if src.Robots != nil {
		dst.Robots = src.Robots
	}
	if src.Alternates != nil {
		alt := *src.Alternates
		dst.Alternates = &alt
	}
	if src.ITunes != nil {
		dst.ITunes = src.ITunes
	}
	if src.Facebook != nil {
		dst.Facebook = src.Facebook
	}
	if src.FormatDetection != nil {
		dst.FormatDetection = src.FormatDetection
	}
	if src.Verification != nil {
		dst.Verification = src.Verification
	}
	if src.AppleWebApp != nil {
		dst.AppleWebApp = src.AppleWebApp
	}
	if src.OpenGraph != nil {
		og := *src.OpenGraph
		dst.OpenGraph = &og
	}
	if src.Twitter != nil {
		tw := *src.Twitter
		dst.Twitter = &tw
	}
	if src.AppLinks != nil {
		dst.AppLinks = src.AppLinks
	}
	if src.Icons != nil {
		dst.Icons = src.Icons
	}
	if src.Other != nil {
		dst.Other = src.Other
	}
}

func mergeViewport(dst *metadata.ResolvedViewport, src *metadata.Viewport) {
	setString(&dst.Width, src.Width)
	setString(&dst.ColorScheme, src.ColorScheme)
	if src.InitialScale != 0 {
		dst.InitialScale = src.InitialScale
	}
	if src.MaximumScale != 0 {
		dst.MaximumScale = src.MaximumScale
	}
	if src.UserScalable != nil {
		dst.UserScalable = src.UserScalable
	}
	if src.ThemeColor != nil {
		dst.ThemeColor = src.ThemeColor
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func applyTemplate(template, title string) string {
	if template == "" {
		return title
	}
	return strings.ReplaceAll(template, "%s", title)
}

// inheritTwitter fills twitter tags from OpenGraph when no segment set any
func inheritTwitter(md *metadata.ResolvedMetadata) {
	if md.Twitter != nil || md.OpenGraph == nil {
		return
	}
	tw := &metadata.Twitter{
		Card:        "summary",
		Title:       md.OpenGraph.Title,
		Description: md.OpenGraph.Description,
	}
	for _, img := range md.OpenGraph.Images {
		tw.Images = append(tw.Images, img.URL)
	}
	if len(tw.Images) > 0 {
		tw.Card = "summary_large_image"
	}
	md.Twitter = tw
}

func resolveURLs(md *metadata.ResolvedMetadata, mctx metadata.Context) error {
	r := &urlResolver{base: md.MetadataBase, mctx: mctx}

	if md.Alternates != nil {
		canonical, err := r.resolve(md.Alternates.Canonical)
		if err != nil {
			return fmt.Errorf("resolve canonical url: %w", err)
		}
		md.Alternates.Canonical = canonical

		languages := make(map[string]string, len(md.Alternates.Languages))
		for lang, u := range md.Alternates.Languages {
			resolved, err := r.resolve(u)
			if err != nil {
				return fmt.Errorf("resolve alternate url for %s: %w", lang, err)
			}
			languages[lang] = resolved
		}
		if md.Alternates.Languages != nil {
			md.Alternates.Languages = languages
		}
	}

	if md.OpenGraph != nil {
		ogURL, err := r.resolve(md.OpenGraph.URL)
		if err != nil {
			return fmt.Errorf("resolve openGraph url: %w", err)
		}
		md.OpenGraph.URL = ogURL

		images := make([]metadata.OGImage, len(md.OpenGraph.Images))
		for i, img := range md.OpenGraph.Images {
			u, err := r.resolve(img.URL)
			if err != nil {
				return fmt.Errorf("resolve openGraph image: %w", err)
			}
			img.URL = u
			images[i] = img
		}
		md.OpenGraph.Images = images
	}

	return nil
}

type urlResolver struct {
	base *url.URL
	mctx metadata.Context
}

// resolve turns "./x" into a path relative to the request pathname and
// prefixes root-relative URLs with the metadata base. The pathname is only
// read for "./" references.
func (r *urlResolver) resolve(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return raw, nil
	}

	p := u.Path
	if p == "." || strings.HasPrefix(p, "./") {
		pathname, err := r.mctx.Pathname()
		if err != nil {
			return "", err
		}
		p = path.Join(pathname, p)
	}
	p = r.applyTrailingSlash(p)
	u.Path = p

	if r.base == nil {
		return u.String(), nil
	}
	return r.base.ResolveReference(u).String(), nil
}

func (r *urlResolver) applyTrailingSlash(p string) string {
	if p == "" || p == "/" {
		return p
	}
	if r.mctx.TrailingSlash() {
		last := p[strings.LastIndex(p, "/")+1:]
		if !strings.HasSuffix(p, "/") && !strings.Contains(last, ".") {
			return p + "/"
		}
		return p
	}
	return strings.TrimSuffix(p, "/")
}

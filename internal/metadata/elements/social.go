package elements

import (
	"sort"
	"strconv"

	"github.com/conduit-lang/pagemeta/internal/metadata"
)

// AlternatesMetadata emits canonical and alternate links
func AlternatesMetadata(alt *metadata.Alternates) []*metadata.Element {
	if alt == nil {
		return nil
	}
	out := []*metadata.Element{Link("canonical", alt.Canonical)}
	for _, lang := range sortedKeys(alt.Languages) {
		out = append(out, Link("alternate", alt.Languages[lang], metadata.Attr{Name: "hrefLang", Value: lang}))
	}
	for _, media := range sortedKeys(alt.Media) {
		out = append(out, Link("alternate", alt.Media[media], metadata.Attr{Name: "media", Value: media}))
	}
	for _, typ := range sortedKeys(alt.Types) {
		out = append(out, Link("alternate", alt.Types[typ], metadata.Attr{Name: "type", Value: typ}))
	}
	return out
}

// OpenGraphMetadata emits og:* tags
func OpenGraphMetadata(og *metadata.OpenGraph) []*metadata.Element {
	if og == nil {
		return nil
	}
	out := []*metadata.Element{
		MetaProperty("og:title", og.Title),
		MetaProperty("og:description", og.Description),
		MetaProperty("og:url", og.URL),
		MetaProperty("og:site_name", og.SiteName),
		MetaProperty("og:locale", og.Locale),
	}
	for _, img := range og.Images {
		out = append(out,
			MetaProperty("og:image", img.URL),
			MetaProperty("og:image:type", img.Type),
			MetaProperty("og:image:width", positive(img.Width)),
			MetaProperty("og:image:height", positive(img.Height)),
			MetaProperty("og:image:alt", img.Alt),
		)
	}
	return append(out, MetaProperty("og:type", og.Type))
}

// TwitterMetadata emits twitter:* tags
func TwitterMetadata(tw *metadata.Twitter) []*metadata.Element {
	if tw == nil {
		return nil
	}
	out := []*metadata.Element{
		Meta("twitter:card", tw.Card),
		Meta("twitter:site", tw.Site),
		Meta("twitter:creator", tw.Creator),
		Meta("twitter:title", tw.Title),
		Meta("twitter:description", tw.Description),
	}
	for _, img := range tw.Images {
		out = append(out, Meta("twitter:image", img))
	}
	return out
}

// AppLinksMeta emits al:* tags per platform
func AppLinksMeta(al *metadata.AppLinks) []*metadata.Element {
	if al == nil {
		return nil
	}
	var out []*metadata.Element
	for _, l := range al.IOS {
		out = append(out,
			MetaProperty("al:ios:url", l.URL),
			MetaProperty("al:ios:app_store_id", l.AppStoreID),
			MetaProperty("al:ios:app_name", l.AppName),
		)
	}
	for _, l := range al.Android {
		out = append(out,
			MetaProperty("al:android:package", l.Package),
			MetaProperty("al:android:url", l.URL),
			MetaProperty("al:android:app_name", l.AppName),
		)
	}
	for _, l := range al.Web {
		out = append(out, MetaProperty("al:web:url", l.URL))
		if l.ShouldFallback != nil {
			out = append(out, MetaProperty("al:web:should_fallback", strconv.FormatBool(*l.ShouldFallback)))
		}
	}
	return out
}

// IconsMetadata emits icon links
func IconsMetadata(icons *metadata.Icons) []*metadata.Element {
	if icons == nil {
		return nil
	}
	var out []*metadata.Element
	for _, ic := range icons.Shortcut {
		out = append(out, iconLink("shortcut icon", ic))
	}
	for _, ic := range icons.Icon {
		out = append(out, iconLink("icon", ic))
	}
	for _, ic := range icons.Apple {
		out = append(out, iconLink("apple-touch-icon", ic))
	}
	for _, ic := range icons.Other {
		out = append(out, iconLink("", ic))
	}
	return out
}

func iconLink(rel string, ic metadata.Icon) *metadata.Element {
	if ic.Rel != "" {
		rel = ic.Rel
	}
	if rel == "" {
		return nil
	}
	return Link(rel, ic.URL,
		metadata.Attr{Name: "type", Value: ic.Type},
		metadata.Attr{Name: "sizes", Value: ic.Sizes},
		metadata.Attr{Name: "media", Value: ic.Media},
	)
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package elements turns resolved metadata into head-tag descriptors. Each
// builder is a pure function over one slice of the resolved value; Assemble
// runs them in their fixed emission order.
package elements

import "github.com/conduit-lang/pagemeta/internal/metadata"

// Meta returns a name/content meta tag, or nil when content is empty
func Meta(name, content string) *metadata.Element {
	if content == "" {
		return nil
	}
	return &metadata.Element{Tag: "meta", Attrs: []metadata.Attr{
		{Name: "name", Value: name},
		{Name: "content", Value: content},
	}}
}

// MetaProperty returns a property/content meta tag, or nil when content is
// empty
func MetaProperty(property, content string) *metadata.Element {
	if content == "" {
		return nil
	}
	return &metadata.Element{Tag: "meta", Attrs: []metadata.Attr{
		{Name: "property", Value: property},
		{Name: "content", Value: content},
	}}
}

// Link returns a link tag, or nil when href is empty. Extra attributes with
// empty values are dropped.
func Link(rel, href string, extra ...metadata.Attr) *metadata.Element {
	if href == "" {
		return nil
	}
	attrs := []metadata.Attr{{Name: "rel", Value: rel}, {Name: "href", Value: href}}
	for _, a := range extra {
		if a.Value != "" {
			attrs = append(attrs, a)
		}
	}
	return &metadata.Element{Tag: "link", Attrs: attrs}
}

// MetaFilter flattens groups into one ordered list and drops nil entries
func MetaFilter(groups ...[]*metadata.Element) []*metadata.Element {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]*metadata.Element, 0, n)
	for _, g := range groups {
		for _, el := range g {
			if el != nil {
				out = append(out, el)
			}
		}
	}
	return out
}

// Assemble builds the head elements for a resolution pass
func Assemble(md *metadata.ResolvedMetadata, vp *metadata.ResolvedViewport) []*metadata.Element {
	if md == nil {
		md = metadata.DefaultMetadata()
	}
	if vp == nil {
		vp = metadata.DefaultViewport()
	}
	return MetaFilter(
		ViewportMeta(vp),
		BasicMeta(md),
		AlternatesMetadata(md.Alternates),
		ITunesMeta(md.ITunes),
		FacebookMeta(md.Facebook),
		FormatDetectionMeta(md.FormatDetection),
		VerificationMeta(md.Verification),
		AppleWebAppMeta(md.AppleWebApp),
		OpenGraphMetadata(md.OpenGraph),
		TwitterMetadata(md.Twitter),
		AppLinksMeta(md.AppLinks),
		IconsMetadata(md.Icons),
	)
}

// SizeAdjustMeta is the auxiliary tag emitted when font size adjustment is
// applied
func SizeAdjustMeta() *metadata.Element {
	return &metadata.Element{Tag: "meta", Attrs: []metadata.Attr{
		{Name: "name", Value: "size-adjust"},
		{Name: "content", Value: ""},
	}}
}

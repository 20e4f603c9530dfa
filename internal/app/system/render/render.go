// internal/app/system/render/render.go
//
// Package render turns a page's ordered sections into HTML. The editor
// preview and the public page both go through Page, so a section renders
// the same way in both places; the preview flag only adds an outer frame.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/stratapage/internal/domain/models"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var sectionTemplates = template.Must(template.ParseFS(templateFS, "templates/*.gohtml"))

// Defaults shown when a section leaves a field empty.
const (
	DefaultHeroTitle         = "Your Hero Title"
	DefaultHeroSubtitle      = "Subheadline goes here. Explain your value proposition clearly."
	DefaultFeaturesTitle     = "Features"
	DefaultFeatureIcon       = "✨"
	DefaultTestimonialsTitle = "What People Say"
	DefaultTestimonialName   = "User Name"
	DefaultTestimonialRole   = "Customer"
	DefaultAvatarInitial     = "U"
	DefaultCTATitle          = "Ready to get started?"
	DefaultCTAText           = "Join us today and transform your workflow."
	DefaultButtonLink        = "#"
	EmptyPageText            = "Empty Page"
)

// Options controls page-level framing. It never changes section output.
type Options struct {
	Preview bool
	Theme   string // light, dark, blue; anything else renders as light
	Year    int    // footer copyright year; 0 means the current year
}

// Block is the rendered HTML of one section.
type Block struct {
	SectionID string
	Type      models.SectionType
	HTML      template.HTML
}

// Blocks renders one block per section whose type is known, in list order.
// Sections with an unknown type are skipped.
func Blocks(sections []models.Section, year int) ([]Block, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	blocks := make([]Block, 0, len(sections))
	for _, s := range sections {
		name, data := sectionView(s.Variant(), year)
		if name == "" {
			continue
		}
		var buf bytes.Buffer
		if err := sectionTemplates.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, fmt.Errorf("render %s section %s: %w", s.Type, s.ID, err)
		}
		blocks = append(blocks, Block{
			SectionID: s.ID,
			Type:      s.Type,
			HTML:      template.HTML(buf.String()),
		})
	}
	return blocks, nil
}

type pageView struct {
	Preview bool
	Theme   string
	Empty   bool
	Blocks  []Block
}

// Page renders the whole section list. An empty list renders the
// "Empty Page" placeholder instead of a blank canvas.
func Page(sections []models.Section, opts Options) (template.HTML, error) {
	blocks, err := Blocks(sections, opts.Year)
	if err != nil {
		return "", err
	}

	theme := opts.Theme
	if theme == "" || !models.IsValidTheme(theme) {
		theme = models.ThemeLight
	}

	var buf bytes.Buffer
	err = sectionTemplates.ExecuteTemplate(&buf, "page", pageView{
		Preview: opts.Preview,
		Theme:   theme,
		Empty:   len(sections) == 0,
		Blocks:  blocks,
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return template.HTML(buf.String()), nil
}

type heroView struct {
	Title, Subtitle, ButtonText, ButtonLink, Image string
}

type featureView struct {
	Title, Description, Icon string
}

type featuresView struct {
	Title, Subtitle string
	Items           []featureView
}

type testimonialView struct {
	Name, Role, Description, Avatar, Initial string
}

type testimonialsView struct {
	Title string
	Items []testimonialView
}

type ctaView struct {
	Title, Text, ButtonText, ButtonLink, Image string
}

type footerView struct {
	Text string
}

// sectionView maps a section variant to its template name and view data
// with defaults filled in. Unknown variants return "".
func sectionView(variant any, year int) (string, any) {
	switch v := variant.(type) {
	case models.HeroContent:
		return "hero", heroView{
			Title:      or(v.Title, DefaultHeroTitle),
			Subtitle:   or(v.Subtitle, DefaultHeroSubtitle),
			ButtonText: v.ButtonText,
			ButtonLink: or(v.ButtonLink, DefaultButtonLink),
			Image:      v.Image,
		}
	case models.FeaturesContent:
		out := featuresView{Title: or(v.Title, DefaultFeaturesTitle), Subtitle: v.Subtitle}
		for _, it := range v.Items {
			out.Items = append(out.Items, featureView{
				Title:       it.Title,
				Description: it.Description,
				Icon:        or(it.Icon, DefaultFeatureIcon),
			})
		}
		return "features", out
	case models.TestimonialsContent:
		out := testimonialsView{Title: or(v.Title, DefaultTestimonialsTitle)}
		for _, it := range v.Items {
			out.Items = append(out.Items, testimonialView{
				Name:        or(it.Name, DefaultTestimonialName),
				Role:        or(it.Role, DefaultTestimonialRole),
				Description: it.Description,
				Avatar:      it.Avatar,
				Initial:     initial(it.Name),
			})
		}
		return "testimonials", out
	case models.CTAContent:
		return "cta", ctaView{
			Title:      or(v.Title, DefaultCTATitle),
			Text:       or(v.Text, DefaultCTAText),
			ButtonText: v.ButtonText,
			ButtonLink: or(v.ButtonLink, DefaultButtonLink),
			Image:      v.Image,
		}
	case models.FooterContent:
		return "footer", footerView{
			Text: or(v.Text, fmt.Sprintf("© %d All rights reserved.", year)),
		}
	default:
		return "", nil
	}
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// initial is the avatar letter for a testimonial.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return DefaultAvatarInitial
	}
	return string(unicode.ToUpper(r))
}

// internal/domain/models/section.go
package models

import (
	"encoding/json"
	"fmt"
	"maps"
)

// SectionType identifies which kind of block a Section renders as.
// The set is closed; a section's type never changes after creation.
type SectionType string

// Section types
const (
	SectionHero         SectionType = "hero"
	SectionFeatures     SectionType = "features"
	SectionTestimonials SectionType = "testimonials"
	SectionCTA          SectionType = "cta"
	SectionFooter       SectionType = "footer"
)

// AllSectionTypes returns all section types in canonical page order.
func AllSectionTypes() []SectionType {
	return []SectionType{
		SectionHero,
		SectionFeatures,
		SectionTestimonials,
		SectionCTA,
		SectionFooter,
	}
}

// IsValidSectionType checks if t is one of the known section types.
func IsValidSectionType(t string) bool {
	for _, st := range AllSectionTypes() {
		if string(st) == t {
			return true
		}
	}
	return false
}

// Section is one visual block on a landing page.
//
// ID is generated when the section is created (UUIDv4) and is only required
// to be unique within a single page.
type Section struct {
	ID      string         `bson:"id" json:"id"`
	Type    SectionType    `bson:"type" json:"type"`
	Content SectionContent `bson:"content" json:"content"`
}

// Variant returns the strongly-typed content record for the section's type:
// HeroContent, FeaturesContent, TestimonialsContent, CTAContent or
// FooterContent. Unknown types return nil.
func (s Section) Variant() any {
	c := s.Content
	switch s.Type {
	case SectionHero:
		return HeroContent{
			Title:      c.Title,
			Subtitle:   c.Subtitle,
			ButtonText: c.ButtonText,
			ButtonLink: c.ButtonLink,
			Image:      c.Image,
		}
	case SectionFeatures:
		out := FeaturesContent{Title: c.Title, Subtitle: c.Subtitle}
		for _, it := range c.Items {
			out.Items = append(out.Items, FeatureItem{Title: it.Title, Description: it.Description, Icon: it.Icon})
		}
		return out
	case SectionTestimonials:
		out := TestimonialsContent{Title: c.Title}
		for _, it := range c.Items {
			out.Items = append(out.Items, Testimonial{Name: it.Name, Role: it.Role, Description: it.Description, Avatar: it.Avatar})
		}
		return out
	case SectionCTA:
		return CTAContent{
			Title:      c.Title,
			Text:       c.Text,
			ButtonText: c.ButtonText,
			ButtonLink: c.ButtonLink,
			Image:      c.Image,
		}
	case SectionFooter:
		return FooterContent{Text: c.Text}
	default:
		return nil
	}
}

// HeroContent is the content a hero section recognizes.
type HeroContent struct {
	Title      string
	Subtitle   string
	ButtonText string
	ButtonLink string
	Image      string
}

// FeaturesContent is the content a features section recognizes.
type FeaturesContent struct {
	Title    string
	Subtitle string
	Items    []FeatureItem
}

// FeatureItem is one entry in a features grid.
type FeatureItem struct {
	Title       string
	Description string
	Icon        string
}

// TestimonialsContent is the content a testimonials section recognizes.
type TestimonialsContent struct {
	Title string
	Items []Testimonial
}

// Testimonial is one quote in a testimonials section.
type Testimonial struct {
	Name        string
	Role        string
	Description string
	Avatar      string
}

// CTAContent is the content a call-to-action section recognizes.
type CTAContent struct {
	Title      string
	Text       string
	ButtonText string
	ButtonLink string
	Image      string
}

// FooterContent is the content a footer section recognizes.
type FooterContent struct {
	Text string
}

// SectionContent is the stored, loosely-typed content of a section.
//
// The named fields cover everything any section type recognizes. Keys that
// match none of them are kept in Extras so a decode/encode round trip never
// drops data. Extras is inlined in BSON and merged by hand in JSON.
type SectionContent struct {
	Title      string         `bson:"title,omitempty" json:"title,omitempty"`
	Subtitle   string         `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Text       string         `bson:"text,omitempty" json:"text,omitempty"`
	Image      string         `bson:"image,omitempty" json:"image,omitempty"`
	ButtonText string         `bson:"buttonText,omitempty" json:"buttonText,omitempty"`
	ButtonLink string         `bson:"buttonLink,omitempty" json:"buttonLink,omitempty"`
	Items      []SectionItem  `bson:"items,omitempty" json:"items,omitempty"`
	Extras     map[string]any `bson:",inline" json:"-"`
}

// Content field names.
const (
	FieldTitle      = "title"
	FieldSubtitle   = "subtitle"
	FieldText       = "text"
	FieldImage      = "image"
	FieldButtonText = "buttonText"
	FieldButtonLink = "buttonLink"
	FieldItems      = "items"
)

var contentKeys = map[string]bool{
	FieldTitle: true, FieldSubtitle: true, FieldText: true, FieldImage: true,
	FieldButtonText: true, FieldButtonLink: true, FieldItems: true,
}

// Get returns the string value of a named field, looking in Extras for
// unknown names. Items is not a string field and always returns "".
func (c SectionContent) Get(field string) string {
	switch field {
	case FieldTitle:
		return c.Title
	case FieldSubtitle:
		return c.Subtitle
	case FieldText:
		return c.Text
	case FieldImage:
		return c.Image
	case FieldButtonText:
		return c.ButtonText
	case FieldButtonLink:
		return c.ButtonLink
	case FieldItems:
		return ""
	}
	if v, ok := c.Extras[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

// With returns a copy of c with one field set. Named string fields take the
// value's string form; "items" accepts []SectionItem and ignores anything
// else; every other name is stored in Extras.
func (c SectionContent) With(field string, value any) SectionContent {
	out := c.Clone()
	str := func() string {
		if s, ok := value.(string); ok {
			return s
		}
		if value == nil {
			return ""
		}
		return fmt.Sprint(value)
	}
	switch field {
	case FieldTitle:
		out.Title = str()
	case FieldSubtitle:
		out.Subtitle = str()
	case FieldText:
		out.Text = str()
	case FieldImage:
		out.Image = str()
	case FieldButtonText:
		out.ButtonText = str()
	case FieldButtonLink:
		out.ButtonLink = str()
	case FieldItems:
		if items, ok := value.([]SectionItem); ok {
			out.Items = cloneItems(items)
		}
	default:
		if out.Extras == nil {
			out.Extras = make(map[string]any, 1)
		}
		out.Extras[field] = value
	}
	return out
}

// Clone returns a deep copy of the items slice and a shallow copy of Extras.
func (c SectionContent) Clone() SectionContent {
	out := c
	out.Items = cloneItems(c.Items)
	if c.Extras != nil {
		out.Extras = maps.Clone(c.Extras)
	}
	return out
}

func cloneItems(items []SectionItem) []SectionItem {
	if items == nil {
		return nil
	}
	out := make([]SectionItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Extras != nil {
			out[i].Extras = maps.Clone(it.Extras)
		}
	}
	return out
}

// MarshalJSON writes the named fields and Extras as one flat object.
func (c SectionContent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extras)+len(contentKeys))
	for k, v := range c.Extras {
		if !contentKeys[k] {
			out[k] = v
		}
	}
	putString(out, FieldTitle, c.Title)
	putString(out, FieldSubtitle, c.Subtitle)
	putString(out, FieldText, c.Text)
	putString(out, FieldImage, c.Image)
	putString(out, FieldButtonText, c.ButtonText)
	putString(out, FieldButtonLink, c.ButtonLink)
	if len(c.Items) > 0 {
		out[FieldItems] = c.Items
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the named fields and keeps every other key in Extras.
func (c *SectionContent) UnmarshalJSON(data []byte) error {
	type plain SectionContent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extras, err := extraKeys(data, contentKeys)
	if err != nil {
		return err
	}
	p.Extras = extras
	*c = SectionContent(p)
	return nil
}

// SectionItem is one child entry of a features or testimonials section.
type SectionItem struct {
	Title       string         `bson:"title,omitempty" json:"title,omitempty"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string         `bson:"icon,omitempty" json:"icon,omitempty"`
	Name        string         `bson:"name,omitempty" json:"name,omitempty"`
	Role        string         `bson:"role,omitempty" json:"role,omitempty"`
	Avatar      string         `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Extras      map[string]any `bson:",inline" json:"-"`
}

// Item field names.
const (
	ItemFieldTitle       = "title"
	ItemFieldDescription = "description"
	ItemFieldIcon        = "icon"
	ItemFieldName        = "name"
	ItemFieldRole        = "role"
	ItemFieldAvatar      = "avatar"
)

var itemKeys = map[string]bool{
	ItemFieldTitle: true, ItemFieldDescription: true, ItemFieldIcon: true,
	ItemFieldName: true, ItemFieldRole: true, ItemFieldAvatar: true,
}

// With returns a copy of the item with one field set. Unknown names go to Extras.
func (it SectionItem) With(field, value string) SectionItem {
	out := it
	if it.Extras != nil {
		out.Extras = maps.Clone(it.Extras)
	}
	switch field {
	case ItemFieldTitle:
		out.Title = value
	case ItemFieldDescription:
		out.Description = value
	case ItemFieldIcon:
		out.Icon = value
	case ItemFieldName:
		out.Name = value
	case ItemFieldRole:
		out.Role = value
	case ItemFieldAvatar:
		out.Avatar = value
	default:
		if out.Extras == nil {
			out.Extras = make(map[string]any, 1)
		}
		out.Extras[field] = value
	}
	return out
}

// MarshalJSON writes the named fields and Extras as one flat object.
func (it SectionItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Extras)+len(itemKeys))
	for k, v := range it.Extras {
		if !itemKeys[k] {
			out[k] = v
		}
	}
	putString(out, ItemFieldTitle, it.Title)
	putString(out, ItemFieldDescription, it.Description)
	putString(out, ItemFieldIcon, it.Icon)
	putString(out, ItemFieldName, it.Name)
	putString(out, ItemFieldRole, it.Role)
	putString(out, ItemFieldAvatar, it.Avatar)
	return json.Marshal(out)
}

// UnmarshalJSON decodes the named fields and keeps every other key in Extras.
func (it *SectionItem) UnmarshalJSON(data []byte) error {
	type plain SectionItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extras, err := extraKeys(data, itemKeys)
	if err != nil {
		return err
	}
	p.Extras = extras
	*it = SectionItem(p)
	return nil
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

// extraKeys decodes the keys of a JSON object that are not in known.
func extraKeys(data []byte, known map[string]bool) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var extras map[string]any
	for k, v := range raw {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		if extras == nil {
			extras = make(map[string]any)
		}
		extras[k] = val
	}
	return extras, nil
}

package domain

import (
	"encoding/json"
	"fmt"
)

// CardContentType is the attachment content type the cloud expects for an
// adaptive card payload.
const CardContentType = "application/vnd.microsoft.card.adaptive"

// CardSchema is the published schema URL stamped onto outbound cards.
const CardSchema = "http://adaptivecards.io/schemas/adaptive-card.json"

// AdaptiveCard is the declarative rich-content model attached to messages.
// The element set is a closed union: decoding a card with an unrecognized
// element or action kind fails rather than silently dropping content.
type AdaptiveCard struct {
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Schema  string        `json:"$schema,omitempty"`
	Body    []CardElement `json:"body,omitempty"`
	Actions []CardAction  `json:"actions,omitempty"`
}

// NewAdaptiveCard builds a v1.2 card around the given body elements.
func NewAdaptiveCard(body ...CardElement) AdaptiveCard {
	return AdaptiveCard{
		Type:    "AdaptiveCard",
		Version: "1.2",
		Schema:  CardSchema,
		Body:    body,
	}
}

// CardAttachment wraps a card in the attachment envelope SendMessage expects.
func CardAttachment(card AdaptiveCard) Attachment {
	return Attachment{ContentType: CardContentType, Content: card}
}

// ElementCommon holds the optional layout fields shared by every body
// element, factored by composition instead of duplicated per kind.
type ElementCommon struct {
	ID        string `json:"id,omitempty"`
	Spacing   string `json:"spacing,omitempty"` // "none", "small", ..., "padding"
	Separator bool   `json:"separator,omitempty"`
}

// CardElement is the union over body element kinds. Concrete types carry a
// Type discriminator set by their constructors.
type CardElement interface {
	elementKind() string
}

// TextBlock renders a run of styled text.
type TextBlock struct {
	ElementCommon
	Type     string `json:"type"`
	Text     string `json:"text"`
	Color    string `json:"color,omitempty"`
	FontType string `json:"fontType,omitempty"`
	Size     string `json:"size,omitempty"`
	Weight   string `json:"weight,omitempty"`
	Wrap     bool   `json:"wrap,omitempty"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
}

// NewTextBlock builds a TextBlock with its discriminator set.
func NewTextBlock(text string) *TextBlock { return &TextBlock{Type: "TextBlock", Text: text} }

func (*TextBlock) elementKind() string { return "TextBlock" }

// Image embeds an image by URL.
type Image struct {
	ElementCommon
	Type    string `json:"type"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Size    string `json:"size,omitempty"`
	Style   string `json:"style,omitempty"`
}

// NewImage builds an Image with its discriminator set.
func NewImage(url string) *Image { return &Image{Type: "Image", URL: url} }

func (*Image) elementKind() string { return "Image" }

// Container groups child elements with a shared style.
type Container struct {
	ElementCommon
	Type  string        `json:"type"`
	Items []CardElement `json:"items"`
	Style string        `json:"style,omitempty"`
}

// NewContainer builds a Container with its discriminator set.
func NewContainer(items ...CardElement) *Container {
	return &Container{Type: "Container", Items: items}
}

func (*Container) elementKind() string { return "Container" }

// ColumnSet lays out columns side by side.
type ColumnSet struct {
	ElementCommon
	Type    string   `json:"type"`
	Columns []Column `json:"columns"`
}

// NewColumnSet builds a ColumnSet with its discriminator set.
func NewColumnSet(columns ...Column) *ColumnSet {
	return &ColumnSet{Type: "ColumnSet", Columns: columns}
}

func (*ColumnSet) elementKind() string { return "ColumnSet" }

// Column is a vertical slice of a ColumnSet. It only appears inside one, so
// it is not itself a CardElement.
type Column struct {
	Type  string        `json:"type"`
	Items []CardElement `json:"items"`
	Width string        `json:"width,omitempty"` // "auto", "stretch", or a weight
}

// NewColumn builds a Column with its discriminator set.
func NewColumn(items ...CardElement) Column { return Column{Type: "Column", Items: items} }

// FactSet renders aligned name/value pairs.
type FactSet struct {
	ElementCommon
	Type  string `json:"type"`
	Facts []Fact `json:"facts"`
}

// NewFactSet builds a FactSet with its discriminator set.
func NewFactSet(facts ...Fact) *FactSet { return &FactSet{Type: "FactSet", Facts: facts} }

func (*FactSet) elementKind() string { return "FactSet" }

// Fact is one name/value row of a FactSet.
type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// InputText collects free-form text from the card viewer.
type InputText struct {
	ElementCommon
	Type        string `json:"type"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
	IsMultiline bool   `json:"isMultiline,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// NewInputText builds an Input.Text with its discriminator set.
func NewInputText(id string) *InputText {
	in := &InputText{Type: "Input.Text"}
	in.ID = id
	return in
}

func (*InputText) elementKind() string { return "Input.Text" }

// InputChoiceSet collects a selection from a fixed list of choices.
type InputChoiceSet struct {
	ElementCommon
	Type          string   `json:"type"`
	Choices       []Choice `json:"choices"`
	IsMultiSelect bool     `json:"isMultiSelect,omitempty"`
	Style         string   `json:"style,omitempty"` // "compact" or "expanded"
	Value         string   `json:"value,omitempty"`
}

// NewInputChoiceSet builds an Input.ChoiceSet with its discriminator set.
func NewInputChoiceSet(id string, choices ...Choice) *InputChoiceSet {
	in := &InputChoiceSet{Type: "Input.ChoiceSet", Choices: choices}
	in.ID = id
	return in
}

func (*InputChoiceSet) elementKind() string { return "Input.ChoiceSet" }

// Choice is one selectable entry of an InputChoiceSet.
type Choice struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// CardAction is the union over card action kinds.
type CardAction interface {
	actionKind() string
}

// ActionSubmit posts the card's input values back through an
// AttachmentAction event.
type ActionSubmit struct {
	Type  string         `json:"type"`
	Title string         `json:"title,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// NewActionSubmit builds an Action.Submit with its discriminator set.
func NewActionSubmit(title string) *ActionSubmit {
	return &ActionSubmit{Type: "Action.Submit", Title: title}
}

func (*ActionSubmit) actionKind() string { return "Action.Submit" }

// ActionOpenURL opens a link on the viewer's client.
type ActionOpenURL struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// NewActionOpenURL builds an Action.OpenUrl with its discriminator set.
func NewActionOpenURL(title, url string) *ActionOpenURL {
	return &ActionOpenURL{Type: "Action.OpenUrl", Title: title, URL: url}
}

func (*ActionOpenURL) actionKind() string { return "Action.OpenUrl" }

// ActionShowCard expands a nested card inline.
type ActionShowCard struct {
	Type  string       `json:"type"`
	Title string       `json:"title,omitempty"`
	Card  AdaptiveCard `json:"card"`
}

// NewActionShowCard builds an Action.ShowCard with its discriminator set.
func NewActionShowCard(title string, card AdaptiveCard) *ActionShowCard {
	return &ActionShowCard{Type: "Action.ShowCard", Title: title, Card: card}
}

func (*ActionShowCard) actionKind() string { return "Action.ShowCard" }

// UnmarshalJSON decodes a card, dispatching body elements and actions on
// their "type" discriminator.
func (c *AdaptiveCard) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    string            `json:"type"`
		Version string            `json:"version"`
		Schema  string            `json:"$schema"`
		Body    []json.RawMessage `json:"body"`
		Actions []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Type = raw.Type
	c.Version = raw.Version
	c.Schema = raw.Schema
	c.Body = nil
	c.Actions = nil
	for _, r := range raw.Body {
		el, err := decodeElement(r)
		if err != nil {
			return err
		}
		c.Body = append(c.Body, el)
	}
	for _, r := range raw.Actions {
		a, err := decodeAction(r)
		if err != nil {
			return err
		}
		c.Actions = append(c.Actions, a)
	}
	return nil
}

// UnmarshalJSON decodes a column including its nested element items.
func (col *Column) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string            `json:"type"`
		Items []json.RawMessage `json:"items"`
		Width string            `json:"width"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	col.Type = raw.Type
	col.Width = raw.Width
	col.Items = nil
	for _, r := range raw.Items {
		el, err := decodeElement(r)
		if err != nil {
			return err
		}
		col.Items = append(col.Items, el)
	}
	return nil
}

// UnmarshalJSON decodes a container including its nested element items.
func (ct *Container) UnmarshalJSON(data []byte) error {
	var raw struct {
		ElementCommon
		Type  string            `json:"type"`
		Items []json.RawMessage `json:"items"`
		Style string            `json:"style"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ct.ElementCommon = raw.ElementCommon
	ct.Type = raw.Type
	ct.Style = raw.Style
	ct.Items = nil
	for _, r := range raw.Items {
		el, err := decodeElement(r)
		if err != nil {
			return err
		}
		ct.Items = append(ct.Items, el)
	}
	return nil
}

func decodeElement(raw json.RawMessage) (CardElement, error) {
	kind, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	var el CardElement
	switch kind {
	case "TextBlock":
		el = &TextBlock{}
	case "Image":
		el = &Image{}
	case "Container":
		el = &Container{}
	case "ColumnSet":
		el = &ColumnSet{}
	case "FactSet":
		el = &FactSet{}
	case "Input.Text":
		el = &InputText{}
	case "Input.ChoiceSet":
		el = &InputChoiceSet{}
	default:
		return nil, fmt.Errorf("card: unknown element type %q", kind)
	}
	if err := json.Unmarshal(raw, el); err != nil {
		return nil, err
	}
	return el, nil
}

func decodeAction(raw json.RawMessage) (CardAction, error) {
	kind, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	var a CardAction
	switch kind {
	case "Action.Submit":
		a = &ActionSubmit{}
	case "Action.OpenUrl":
		a = &ActionOpenURL{}
	case "Action.ShowCard":
		a = &ActionShowCard{}
	default:
		return nil, fmt.Errorf("card: unknown action type %q", kind)
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, err
	}
	return a, nil
}

func peekType(raw json.RawMessage) (string, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", err
	}
	if probe.Type == "" {
		return "", fmt.Errorf("card: element missing type discriminator")
	}
	return probe.Type, nil
}

// Package card builds Teams adaptive-card messages from daily records.
// Builders are pure: they never perform I/O.
package card

import "encoding/json"

const (
	contentTypeAdaptive = "application/vnd.microsoft.card.adaptive"
	schemaURL           = "http://adaptivecards.io/schemas/adaptive-card.json"
	nbspRun             = "&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;&nbsp;"
)

// Message is the envelope accepted by a Teams workflow webhook.
type Message struct {
	Type        string       `json:"type"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	ContentType string       `json:"contentType"`
	Content     AdaptiveCard `json:"content"`
}

type AdaptiveCard struct {
	Schema  string    `json:"$schema"`
	Type    string    `json:"type"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	MSTeams *MSTeams  `json:"msteams,omitempty"`
	Actions []Action  `json:"actions,omitempty"`
}

// Element is a TextBlock or RichTextBlock.
type Element struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	Weight    string    `json:"weight,omitempty"`
	Size      string    `json:"size,omitempty"`
	Wrap      bool      `json:"wrap,omitempty"`
	Spacing   string    `json:"spacing,omitempty"`
	Separator bool      `json:"separator,omitempty"`
	IsSubtle  bool      `json:"isSubtle,omitempty"`
	Inlines   []TextRun `json:"inlines,omitempty"`
}

type TextRun struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Spacing string `json:"spacing,omitempty"`
}

type MSTeams struct {
	Entities []Mention `json:"entities"`
}

type Mention struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Mentioned Mentioned `json:"mentioned"`
}

type Mentioned struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func wrap(version string, body []Element, teams *MSTeams, actions []Action) Message {
	return Message{
		Type: "message",
		Attachments: []Attachment{{
			ContentType: contentTypeAdaptive,
			Content: AdaptiveCard{
				Schema:  schemaURL,
				Type:    "AdaptiveCard",
				Version: version,
				Body:    body,
				MSTeams: teams,
				Actions: actions,
			},
		}},
	}
}

// Body returns the card body of a message built by this package.
func (m Message) Body() []Element {
	if len(m.Attachments) == 0 {
		return nil
	}
	return m.Attachments[0].Content.Body
}

// Texts flattens every text in the body, including rich-text runs, in order.
func (m Message) Texts() []string {
	var out []string
	for _, el := range m.Body() {
		if el.Text != "" {
			out = append(out, el.Text)
		}
		for _, run := range el.Inlines {
			out = append(out, run.Text)
		}
	}
	return out
}

// JSON renders the message for the audit store.
func (m Message) JSON() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func mention(name, id string) Mention {
	return Mention{
		Type:      "mention",
		Text:      "<at>" + name + "</at>",
		Mentioned: Mentioned{ID: id, Name: name},
	}
}

func textBlock(text string) Element {
	return Element{Type: "TextBlock", Text: text}
}

func richText(text, spacing string) Element {
	return Element{
		Type:    "RichTextBlock",
		Inlines: []TextRun{{Type: "TextRun", Text: text, Spacing: spacing}},
	}
}

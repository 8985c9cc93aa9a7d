package kosit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Message levels written by the validator
const (
	LevelError       = "error"
	LevelWarning     = "warning"
	LevelInformation = "information"
)

// Report is the parsed validation report of one document
type Report struct {
	Valid    bool      `json:"valid"`
	Accepted bool      `json:"accepted"`
	Scenario string    `json:"scenario,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Message is a single finding of a validation step
type Message struct {
	ID       string `json:"id,omitempty"`
	Level    string `json:"level"`
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Text     string `json:"text"`
}

func (m Message) String() string {
	var b strings.Builder
	if m.Code != "" {
		fmt.Fprintf(&b, "[%s] ", m.Code)
	}
	b.WriteString(m.Text)
	if m.Location != "" {
		fmt.Fprintf(&b, " at %s", m.Location)
	}
	return b.String()
}

// Errors returns the messages of level error
func (r *Report) Errors() []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.Level == LevelError {
			out = append(out, m)
		}
	}
	return out
}

// ParseReport reads a validator report document
func ParseReport(data []byte) (*Report, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "report" {
		return nil, fmt.Errorf("parse report: not a validation report")
	}

	r := &Report{}
	r.Valid, _ = strconv.ParseBool(root.SelectAttrValue("valid", "false"))
	walk(root, r)
	return r, nil
}

func walk(el *etree.Element, r *Report) {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "accept":
			if el.Tag == "assessment" {
				r.Accepted = true
			}
		case "scenario":
			if name := child.SelectElement("name"); name != nil {
				r.Scenario = strings.TrimSpace(name.Text())
			}
		case "message":
			r.Messages = append(r.Messages, parseMessage(child))
			continue
		}
		walk(child, r)
	}
}

func parseMessage(el *etree.Element) Message {
	m := Message{
		ID:       el.SelectAttrValue("id", ""),
		Level:    strings.ToLower(el.SelectAttrValue("level", LevelError)),
		Code:     el.SelectAttrValue("code", ""),
		Location: el.SelectAttrValue("xpathLocation", ""),
		Text:     strings.TrimSpace(el.Text()),
	}
	m.Line, _ = strconv.Atoi(el.SelectAttrValue("lineNumber", ""))
	m.Column, _ = strconv.Atoi(el.SelectAttrValue("columnNumber", ""))
	return m
}

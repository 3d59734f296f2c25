package page

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML representation of a page.
type File struct {
	Title    string    `yaml:"title"`
	Content  string    `yaml:"content"`
	Elements []Element `yaml:"elements"`
}

// Element is a top-level page element.
type Element struct {
	ID       string    `yaml:"id"`
	Class    []string  `yaml:"class"`
	Content  string    `yaml:"content"`
	Label    string    `yaml:"label"`
	Href     string    `yaml:"href"`
	Hidden   bool      `yaml:"hidden"`
	Children []Element `yaml:"children"`
}

// Load reads and parses the page file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a document from YAML page data. Elements are appended to the
// body in file order.
func Parse(data []byte) (*Document, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Document(), nil
}

// Document converts the file into a live document.
func (f File) Document() *Document {
	doc := NewDocument(f.Title)
	doc.Content = f.Content
	for _, el := range f.Elements {
		doc.Append(el.node())
	}
	return doc
}

func (e Element) node() *Node {
	n := NewNode(e.ID, e.Class...)
	n.Content = e.Content
	n.Label = e.Label
	n.Href = e.Href
	n.Hidden = e.Hidden
	for _, child := range e.Children {
		n.AppendChild(child.node())
	}
	return n
}

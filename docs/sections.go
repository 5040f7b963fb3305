package docs

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aidanlsb/rnm/internal/slugs"
)

// Section is one level-2 part of the method reference.
type Section struct {
	Title string
	Slug  string
	Body  string // markdown, heading included
}

// Methods returns the reference document.
func Methods() (string, error) {
	data, err := FS.ReadFile(MethodsFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MethodSections splits the reference into its level-2 sections.
func MethodSections() ([]Section, error) {
	data, err := FS.ReadFile(MethodsFile)
	if err != nil {
		return nil, err
	}
	return splitSections(data)
}

// MethodSection returns the section whose heading slug is name.
func MethodSection(name string) (*Section, error) {
	sections, err := MethodSections()
	if err != nil {
		return nil, err
	}
	want := slugs.HeadingSlug(name)
	for i := range sections {
		if sections[i].Slug == want {
			return &sections[i], nil
		}
	}
	return nil, fmt.Errorf("no reference for method %q", name)
}

func splitSections(content []byte) ([]Section, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	type mark struct {
		title string
		start int
	}
	var marks []mark
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level != 2 || heading.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		var title bytes.Buffer
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				title.Write(t.Segment.Value(content))
			}
		}
		marks = append(marks, mark{
			title: title.String(),
			start: lineStart(content, heading.Lines().At(0).Start),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	sections := make([]Section, len(marks))
	for i, m := range marks {
		end := len(content)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		sections[i] = Section{
			Title: m.title,
			Slug:  slugs.HeadingSlug(m.title),
			Body:  string(bytes.TrimRight(content[m.start:end], "\n")) + "\n",
		}
	}
	return sections, nil
}

func lineStart(content []byte, offset int) int {
	if i := bytes.LastIndexByte(content[:offset], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

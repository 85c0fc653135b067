package parse

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/componentsgen/pkg/types"
)

// RangeTypes are the type names accepted by @range
var RangeTypes = map[string]bool{
	"boolean": true,
	"int":     true,
	"integer": true,
	"number":  true,
	"byte":    true,
	"long":    true,
	"float":   true,
	"decimal": true,
	"double":  true,
	"string":  true,
	"json":    true,
}

var (
	tagStart     = regexp.MustCompile(`(?m)^@(\w+)`)
	rangeTag     = regexp.MustCompile(`@range\s*\{([^}]*)\}`)
	ignoredTag   = regexp.MustCompile(`@ignored\b`)
	leadingStars = regexp.MustCompile(`^\s*\*+ ?`)
)

// CommentData is what a doc comment says about one parameter or field
type CommentData struct {
	Description string
	Range       string // @range type, empty when absent
	Ignored     bool
}

// CommentLoader parses /** */ doc comments
type CommentLoader struct{}

// ParseParamComments reads the @param tags of a constructor comment, keyed by
// parameter name
func (c *CommentLoader) ParseParamComments(comment string) (map[string]CommentData, error) {
	out := make(map[string]CommentData)
	for _, block := range splitTags(cleanComment(comment)) {
		if block.tag != "param" {
			continue
		}
		name, rest := splitParamName(block.body)
		if name == "" {
			continue
		}
		data, err := parseDirectives(rest)
		if err != nil {
			return nil, fmt.Errorf("%w for parameter %s", err, name)
		}
		out[name] = data
	}
	return out, nil
}

// ParseFieldComment reads the comment attached directly to a field. The text
// before the first tag is the description.
func (c *CommentLoader) ParseFieldComment(comment string) (CommentData, error) {
	text := cleanComment(comment)
	description := text
	if loc := tagStart.FindStringIndex(text); loc != nil {
		description = text[:loc[0]]
	}

	data, err := parseDirectives(description)
	if err != nil {
		return CommentData{}, err
	}

	// Directives may also be written as their own tags
	if data.Range == "" {
		if data.Range, err = parseRange(text); err != nil {
			return CommentData{}, err
		}
	}
	data.Ignored = data.Ignored || ignoredTag.MatchString(text)
	return data, nil
}

// parseDirectives extracts @range and @ignored from text and returns the rest
// as the description
func parseDirectives(text string) (CommentData, error) {
	var data CommentData

	rng, err := parseRange(text)
	if err != nil {
		return CommentData{}, err
	}
	if rng != "" {
		data.Range = rng
		text = rangeTag.ReplaceAllString(text, "")
	}
	if ignoredTag.MatchString(text) {
		data.Ignored = true
		text = ignoredTag.ReplaceAllString(text, "")
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.TrimPrefix(text, "-"))
	data.Description = strings.Join(strings.Fields(text), " ")
	return data, nil
}

// parseRange returns the type of the first @range directive in text
func parseRange(text string) (string, error) {
	m := rangeTag.FindStringSubmatch(text)
	if m == nil {
		return "", nil
	}
	rng := strings.TrimSpace(m[1])
	if !RangeTypes[rng] {
		return "", fmt.Errorf("%w: unknown type %q", types.ErrInvalidRange, rng)
	}
	return rng, nil
}

// splitParamName splits "name - description" and skips a JSDoc {type} prefix
func splitParamName(body string) (string, string) {
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "{") {
		if end := strings.Index(body, "}"); end >= 0 {
			body = strings.TrimSpace(body[end+1:])
		}
	}
	i := strings.IndexFunc(body, unicode.IsSpace)
	if i < 0 {
		return body, ""
	}
	return body[:i], body[i:]
}

type tagBlock struct {
	tag  string
	body string
}

// splitTags cuts cleaned comment text into blocks, one per tag at a line start
func splitTags(text string) []tagBlock {
	locs := tagStart.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]tagBlock, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, tagBlock{
			tag:  text[loc[2]:loc[3]],
			body: text[loc[1]:end],
		})
	}
	return blocks
}

// cleanComment strips comment delimiters and leading asterisks
func cleanComment(comment string) string {
	comment = strings.TrimSpace(comment)
	comment = strings.TrimPrefix(comment, "/**")
	comment = strings.TrimPrefix(comment, "/*")
	comment = strings.TrimSuffix(comment, "*/")

	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(leadingStars.ReplaceAllString(line, ""))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

package mongostore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrInvalidQuery = errors.New("invalid aggregation query")

var queryPattern = regexp.MustCompile(`(?s)^\s*db\.([A-Za-z0-9_\-]+)\.aggregate\(\s*(\[.*\])\s*\)\s*;?\s*$`)

// Query is a parsed `db.<collection>.aggregate([...])` payload.
type Query struct {
	Collection string
	Pipeline   []bson.D
	Raw        string
}

// ParseQuery accepts the shell-like syntax models write: unquoted keys, single quoted strings,
// trailing commas, ObjectId(...) and ISODate(...) helpers.
func ParseQuery(raw string) (*Query, error) {
	m := queryPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: expected db.<collection>.aggregate([...])", ErrInvalidQuery)
	}

	normalized := NormalizeJSON(m[2])

	var wrapper struct {
		Pipeline []bson.D `bson:"pipeline"`
	}
	if err := bson.UnmarshalExtJSON([]byte(`{"pipeline":`+normalized+`}`), false, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	return &Query{Collection: m[1], Pipeline: wrapper.Pipeline, Raw: strings.TrimSpace(raw)}, nil
}

var helperPattern = regexp.MustCompile(`(?:new\s+)?(ObjectId|ISODate|Date)\(\s*"([^"]*)"\s*\)`)

// NormalizeJSON rewrites relaxed JavaScript object syntax into strict JSON.
func NormalizeJSON(src string) string {
	var b strings.Builder
	b.Grow(len(src) + 16)

	n := len(src)
	for i := 0; i < n; i++ {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			j := i + 1
			var lit strings.Builder
			for j < n && src[j] != c {
				if src[j] == '\\' && j+1 < n {
					if src[j+1] == '\'' {
						lit.WriteByte('\'')
					} else {
						lit.WriteByte(src[j])
						lit.WriteByte(src[j+1])
					}
					j += 2
					continue
				}
				if c == '\'' && src[j] == '"' {
					lit.WriteString(`\"`)
				} else {
					lit.WriteByte(src[j])
				}
				j++
			}
			b.WriteByte('"')
			b.WriteString(lit.String())
			b.WriteByte('"')
			i = j
		case c == ',':
			k := i + 1
			for k < n && isSpace(src[k]) {
				k++
			}
			if k < n && (src[k] == '}' || src[k] == ']') {
				continue
			}
			b.WriteByte(c)
		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			k := j
			for k < n && isSpace(src[k]) {
				k++
			}
			if k < n && src[k] == ':' {
				b.WriteByte('"')
				b.WriteString(word)
				b.WriteByte('"')
			} else {
				b.WriteString(word)
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}

	return helperPattern.ReplaceAllStringFunc(b.String(), func(m string) string {
		parts := helperPattern.FindStringSubmatch(m)
		if parts[1] == "ObjectId" {
			return fmt.Sprintf(`{"$oid":"%s"}`, parts[2])
		}
		value := parts[2]
		if len(value) == len("2006-01-02") {
			value += "T00:00:00Z"
		}
		return fmt.Sprintf(`{"$date":"%s"}`, value)
	})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

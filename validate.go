package tokens

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Severity grades a validation issue. Errors block saving, warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseSeverity converts a string into a Severity, defaulting to error.
func ParseSeverity(value string) Severity {
	if strings.EqualFold(strings.TrimSpace(value), string(SeverityWarning)) {
		return SeverityWarning
	}
	return SeverityError
}

// Issue is a single validation finding.
type Issue struct {
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	// Suggestions holds existing paths close to a missing reference target.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Issues is an ordered list of findings.
type Issues []Issue

// HasErrors reports whether any issue has error severity.
func (l Issues) HasErrors() bool {
	for _, issue := range l {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity issues.
func (l Issues) Errors() Issues {
	return l.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (l Issues) Warnings() Issues {
	return l.filter(SeverityWarning)
}

func (l Issues) filter(severity Severity) Issues {
	var out Issues
	for _, issue := range l {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Token types with a value shape check.
const (
	TypeColor     = "color"
	TypeDimension = "dimension"
	TypeNumber    = "number"
	TypeBoolean   = "boolean"
	TypeString    = "string"
)

const maxSuggestions = 3

// Value patterns for color and dimension tokens.
const (
	HexColorPattern  = `^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`
	DimensionPattern = `^-?(\d+(\.\d+)?|\.\d+)(px|rem|em|%)$`
)

var (
	hexColorPattern  = regexp.MustCompile(HexColorPattern)
	dimensionPattern = regexp.MustCompile(DimensionPattern)
)

// Validate checks every token of doc and returns the issues found.
// References are resolved against resolverDoc, normally the merged tree, so
// a business unit document alone can still reference core tokens. A nil
// resolverDoc means doc itself.
func Validate(doc, resolverDoc *Group) Issues {
	if resolverDoc == nil {
		resolverDoc = doc
	}
	v := validator{resolver: resolverDoc}
	walkTokens(doc, "", func(path string, node Node) {
		switch typed := node.(type) {
		case *Leaf:
			v.leaf(path, typed)
		case *Scalar:
			v.add(path, SeverityWarning, "Value is not a token; wrap it in an object with $value.")
		}
	})
	return v.issues
}

type validator struct {
	resolver *Group
	issues   Issues
	paths    []string
}

func (v *validator) add(path string, severity Severity, message string) {
	v.issues = append(v.issues, Issue{Path: path, Message: message, Severity: severity})
}

func (v *validator) leaf(path string, leaf *Leaf) {
	if !leaf.HasValue() {
		v.add(path, SeverityError, "Token must have a $value property.")
	}

	tokenType := ""
	rawType, hasType := leaf.RawType()
	switch typed := rawType.(type) {
	case string:
		tokenType = typed
	case nil:
	default:
		v.add(path, SeverityError, "Token $type must be a string.")
	}
	if !hasType || rawType == nil || rawType == "" {
		v.add(path, SeverityError, "Token must have a $type property.")
	}
	value := leaf.Value()

	if !leaf.HasValue() {
		return
	}
	if IsReference(value) {
		v.reference(path, value)
		return
	}
	if tokenType == "" {
		return
	}
	if message := checkShape(tokenType, value); message != "" {
		v.add(path, SeverityError, message)
	}
}

func (v *validator) reference(path string, value any) {
	res := Resolve(value, v.resolver)
	switch res.Status {
	case ResolveMissing:
		v.issues = append(v.issues, Issue{
			Path:        path,
			Message:     fmt.Sprintf("Missing reference target: %s", res.Target),
			Severity:    SeverityError,
			Suggestions: v.suggest(res.Target),
		})
	case ResolveNotToken:
		v.add(path, SeverityError, fmt.Sprintf("Reference target is not a token: %s", res.Target))
	case ResolveCircular:
		v.add(path, SeverityError, "Circular reference detected")
	}
}

func (v *validator) suggest(target string) []string {
	if v.paths == nil {
		v.paths = v.resolver.Paths()
	}
	ranks := fuzzy.RankFindFold(target, v.paths)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)
	out := make([]string, 0, maxSuggestions)
	for _, rank := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}

// checkShape validates a literal value against its declared type. It returns
// an empty string when the value fits or the type has no shape rule.
func checkShape(tokenType string, value any) string {
	switch tokenType {
	case TypeColor:
		s, ok := value.(string)
		if ok && (hexColorPattern.MatchString(s) || strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(")) {
			return ""
		}
		return fmt.Sprintf("Invalid color value %s: expected #RGB, #RRGGBB, #RRGGBBAA, rgb() or rgba().", encodeCompact(value))
	case TypeDimension:
		s, ok := value.(string)
		if ok && dimensionPattern.MatchString(s) {
			return ""
		}
		return fmt.Sprintf("Invalid dimension value %s: expected a number followed by px, rem, em or %%.", encodeCompact(value))
	case TypeNumber:
		if _, ok := value.(json.Number); ok {
			return ""
		}
		return fmt.Sprintf("Invalid number value %s: expected a number.", encodeCompact(value))
	case TypeBoolean:
		if _, ok := value.(bool); ok {
			return ""
		}
		return fmt.Sprintf("Invalid boolean value %s: expected true or false.", encodeCompact(value))
	case TypeString:
		if _, ok := value.(string); ok {
			return ""
		}
		return fmt.Sprintf("Invalid string value %s: expected a string.", encodeCompact(value))
	default:
		return ""
	}
}

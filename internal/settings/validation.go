package settings

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var (
	// ErrUnparseable marks documents that are not JSON at all.
	ErrUnparseable = errors.New("settings are not valid JSON")
	// ErrInvalidSettings marks JSON documents that do not match the settings schema.
	ErrInvalidSettings = errors.New("settings do not match the expected structure")
)

// Problem classifies why a document was rejected.
type Problem int

const (
	ProblemNone Problem = iota
	ProblemParse
	ProblemSchema
)

type fieldKind int

const (
	kindArray fieldKind = iota
	kindNumber
	kindBool
)

// requiredFields are the top-level fields every settings document must carry.
var requiredFields = []struct {
	name string
	kind fieldKind
}{
	{"sites", kindArray},
	{"rotationRate", kindNumber},
	{"useGlobalRotationRate", kindBool},
	{"refreshRate", kindNumber},
	{"wakeLock", kindBool},
}

var validate = validator.New()

// Validation is the outcome of AssertSettings: either valid settings or a reason.
type Validation struct {
	settings Settings
	problem  Problem
	reason   string
}

func valid(s Settings) Validation {
	return Validation{settings: s}
}

func invalid(problem Problem, format string, args ...any) Validation {
	return Validation{problem: problem, reason: fmt.Sprintf(format, args...)}
}

func (v Validation) Valid() bool { return v.problem == ProblemNone }

// Settings returns the accepted settings. It is the zero value for invalid documents.
func (v Validation) Settings() Settings { return v.settings }

func (v Validation) Problem() Problem { return v.problem }

func (v Validation) Reason() string { return v.reason }

// Err returns nil for valid documents and an error wrapping ErrUnparseable or
// ErrInvalidSettings otherwise.
func (v Validation) Err() error {
	switch v.problem {
	case ProblemNone:
		return nil
	case ProblemParse:
		return fmt.Errorf("%w: %s", ErrUnparseable, v.reason)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidSettings, v.reason)
	}
}

// AssertSettings checks a raw JSON document against the settings schema. All five
// top-level fields must be present with the right JSON type. Keys match exactly and
// any other field is ignored.
func AssertSettings(raw []byte) Validation {
	if !gjson.ValidBytes(raw) {
		return invalid(ProblemParse, "document is not valid JSON")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return invalid(ProblemSchema, "document must be a JSON object")
	}

	for _, f := range requiredFields {
		field := root.Get(f.name)
		if !field.Exists() {
			return invalid(ProblemSchema, "missing field %q", f.name)
		}
		if !hasKind(field, f.kind) {
			return invalid(ProblemSchema, "field %q must be %s", f.name, kindName(f.kind))
		}
	}

	s := Settings{
		RotationRate:          root.Get("rotationRate").Float(),
		UseGlobalRotationRate: root.Get("useGlobalRotationRate").Bool(),
		RefreshRate:           root.Get("refreshRate").Float(),
		WakeLock:              root.Get("wakeLock").Bool(),
	}
	sites, reason := decodeSites(root.Get("sites"))
	if reason != "" {
		return invalid(ProblemSchema, "%s", reason)
	}
	s.Sites = sites
	if err := validate.Struct(&s); err != nil {
		return invalid(ProblemSchema, "validate: %v", err)
	}
	return valid(s)
}

// decodeSites reads the site list. Each entry must be an object; url and
// rotationRate are optional but typed when present.
func decodeSites(arr gjson.Result) ([]Site, string) {
	items := arr.Array()
	sites := make([]Site, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Sprintf("sites[%d] must be an object", i)
		}
		var site Site
		if url := item.Get("url"); url.Exists() {
			if url.Type != gjson.String {
				return nil, fmt.Sprintf("sites[%d].url must be a string", i)
			}
			site.URL = url.String()
		}
		if rate := item.Get("rotationRate"); rate.Exists() {
			if rate.Type != gjson.Number {
				return nil, fmt.Sprintf("sites[%d].rotationRate must be a number", i)
			}
			site.RotationRate = rate.Float()
		}
		sites = append(sites, site)
	}
	return sites, ""
}

// Check reports whether s would be accepted by AssertSettings once encoded.
func Check(s Settings) error {
	if s.Sites == nil {
		return fmt.Errorf("%w: sites must be a list", ErrInvalidSettings)
	}
	if err := validate.Struct(&s); err != nil {
		return fmt.Errorf("%w: validate: %v", ErrInvalidSettings, err)
	}
	return nil
}

func hasKind(r gjson.Result, kind fieldKind) bool {
	switch kind {
	case kindArray:
		return r.IsArray()
	case kindNumber:
		return r.Type == gjson.Number
	case kindBool:
		return r.IsBool()
	default:
		return false
	}
}

func kindName(kind fieldKind) string {
	switch kind {
	case kindArray:
		return "an array"
	case kindNumber:
		return "a number"
	default:
		return "a boolean"
	}
}

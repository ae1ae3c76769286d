// Package fixtures loads the named user records that the registration scenarios submit.
//
// The records are read once, validated against an embedded JSON Schema, and are read-only
// after that.
package fixtures

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

//go:embed registrationData.json
var defaultData []byte

//go:embed fixtures.schema.json
var schemaData []byte

const schemaResourceName = "fixtures.schema.json"

// ScenarioName identifies one user record.
type ScenarioName string

const (
	ValidUser          ScenarioName = "validUser"
	InvalidEmail       ScenarioName = "invalidEmail"
	PasswordMismatch   ScenarioName = "passwordMismatch"
	NonNumericAge      ScenarioName = "nonNumericAge"
	NegativeAge        ScenarioName = "negativeAge"
	DuplicateEmail     ScenarioName = "duplicateEmail"
	InvalidName        ScenarioName = "invalidName"
	ShortPassword      ScenarioName = "shortPassword"
	KeyboardNavigation ScenarioName = "keyboardNavigation"
)

// ErrUnknownScenario is returned, wrapped, when a record is requested by a name that is not in
// the loaded data.
var ErrUnknownScenario = errors.New("unknown test data scenario")

// UserRecord is one candidate submission of the registration form.
type UserRecord struct {
	FullName        string                 `json:"fullName"`
	Email           string                 `json:"email"`
	Age             ldvalue.OptionalString `json:"age"`
	Password        string                 `json:"password"`
	ConfirmPassword string                 `json:"confirmPassword"`
}

// LoadError means the test data could not be read or was malformed. It is fatal to a test run.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load test data from %s: %s", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store holds the loaded records. There is no way to modify it after loading.
type Store struct {
	source  string
	records map[ScenarioName]UserRecord
}

// Default loads the test data that is built into the harness.
func Default() (*Store, error) {
	return load("built-in test data", defaultData)
}

// LoadFile loads test data from a JSON file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return load(path, data)
}

// Load reads test data from any source.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: "reader", Err: err}
	}
	return load("reader", data)
}

func load(source string, data []byte) (*Store, error) {
	if err := validate(data); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	var raw map[ScenarioName]UserRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	records := make(map[ScenarioName]UserRecord, len(raw))
	for name, r := range raw {
		records[name] = r.normalized()
	}
	return &Store{source: source, records: records}, nil
}

func validate(data []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaResourceName, schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile(schemaResourceName)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return schema.Validate(doc)
}

// Names that are typed into the form may contain accented letters, which can be written in
// more than one way in a JSON file; records always hold the composed form.
func (r UserRecord) normalized() UserRecord {
	ret := UserRecord{
		FullName:        norm.NFC.String(r.FullName),
		Email:           norm.NFC.String(r.Email),
		Password:        norm.NFC.String(r.Password),
		ConfirmPassword: norm.NFC.String(r.ConfirmPassword),
	}
	if r.Age.IsDefined() {
		ret.Age = ldvalue.NewOptionalString(norm.NFC.String(r.Age.StringValue()))
	}
	return ret
}

// Source describes where the data was loaded from.
func (s *Store) Source() string {
	return s.source
}

// Get returns the record for a scenario, or an error wrapping ErrUnknownScenario.
func (s *Store) Get(name ScenarioName) (UserRecord, error) {
	r, ok := s.records[name]
	if !ok {
		return UserRecord{}, fmt.Errorf("%w %q in %s", ErrUnknownScenario, name, s.source)
	}
	return r, nil
}

// Require checks that every one of the specified scenarios exists.
func (s *Store) Require(names ...ScenarioName) error {
	var missing []string
	for _, n := range names {
		if _, ok := s.records[n]; !ok {
			missing = append(missing, string(n))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w(s) %q in %s", ErrUnknownScenario, missing, s.source)
	}
	return nil
}

// Names returns all scenario names in sorted order.
func (s *Store) Names() []ScenarioName {
	ret := make([]ScenarioName, 0, len(s.records))
	for n := range s.records {
		ret = append(ret, n)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

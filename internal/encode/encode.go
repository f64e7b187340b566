// Package encode builds VerifyError words from a kind name and named
// detail parameters. It backs both the encode command and the compose TUI.
package encode

import (
	"fmt"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// Option is one allowed value of an enumerated parameter.
type Option struct {
	Value int64
	Label string
}

// Param describes one detail field of a kind.
type Param struct {
	Name        string
	Description string
	// Options restricts the value when set; otherwise Min..Max applies.
	Options []Option
	Min     int64
	Max     int64
	// Initial overrides Min as the default of a ranged parameter when non-zero.
	Initial int64
}

// Default is the first option, else Initial when set, else Min.
func (p Param) Default() int64 {
	if len(p.Options) > 0 {
		return p.Options[0].Value
	}
	if p.Initial != 0 {
		return p.Initial
	}

	return p.Min
}

func (p Param) check(v int64) error {
	if len(p.Options) > 0 {
		for _, o := range p.Options {
			if o.Value == v {
				return nil
			}
		}

		return fmt.Errorf("%w: %s=%d is not one of %s", errorcodes.ErrInvalidArg, p.Name, v, p.optionList())
	}
	if v < p.Min || v > p.Max {
		return fmt.Errorf("%w: %s=%d out of range %d..%d", errorcodes.ErrInvalidArg, p.Name, v, p.Min, p.Max)
	}

	return nil
}

func (p Param) optionList() string {
	parts := make([]string, len(p.Options))
	for i, o := range p.Options {
		parts[i] = fmt.Sprintf("%d (%s)", o.Value, o.Label)
	}

	return strings.Join(parts, ", ")
}

// Kind is a VerifyErrorCode together with the parameters its detail needs.
type Kind struct {
	Code   arv.VerifyErrorCode
	Params []Param
	build  func(v map[string]int64) (arv.VerifyError, error)
}

// Name is the kebab-case form of the code name, e.g. "board-id-mismatch".
func (k Kind) Name() string {
	return KebabName(k.Code.String())
}

// KebabName turns a CamelCase identifier into lower kebab case.
func KebabName(camel string) string {
	return strings.ToLower(strings.Join(camelcase.Split(camel), "-"))
}

// Build checks values against the parameters and builds the error. Missing
// parameters take their default; unknown ones are rejected.
func (k Kind) Build(values map[string]int64) (arv.VerifyError, error) {
	full := make(map[string]int64, len(k.Params))
	for _, p := range k.Params {
		v, ok := values[p.Name]
		if !ok {
			v = p.Default()
		}
		if err := p.check(v); err != nil {
			return arv.VerifyError{}, err
		}
		full[p.Name] = v
	}
	for name := range values {
		if _, ok := full[name]; !ok {
			return arv.VerifyError{}, fmt.Errorf("%w: %s takes no parameter %q", errorcodes.ErrInvalidArg, k.Name(), name)
		}
	}

	return k.build(full)
}

// Lookup finds a kind by kebab name, code name, or numeric code.
func Lookup(name string) (Kind, error) {
	for _, k := range kinds {
		if strings.EqualFold(name, k.Name()) || strings.EqualFold(name, k.Code.String()) ||
			name == fmt.Sprint(uint8(k.Code)) {
			return k, nil
		}
	}

	return Kind{}, fmt.Errorf("%w: %q", errorcodes.ErrUnknownKind, name)
}

// Kinds returns every kind in code order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)

	return out
}

// Package provision turns write-protect policy files into the NVRAM
// descriptors consulted during AP RO verification, and checks status
// register readings against them.
package provision

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/andrei-cloud/go_arv/internal/errorcodes"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

// Format is the encoding of a policy file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// RegisterPolicy is the expected value and mask of one status register.
type RegisterPolicy struct {
	Value int `yaml:"value" toml:"value"`
	Mask  int `yaml:"mask"  toml:"mask"`
}

// Registers groups the three status register policies. A nil entry leaves
// the register unprovisioned.
type Registers struct {
	SR1 *RegisterPolicy `yaml:"sr1" toml:"sr1"`
	SR2 *RegisterPolicy `yaml:"sr2" toml:"sr2"`
	SR3 *RegisterPolicy `yaml:"sr3" toml:"sr3"`
}

// Policy is a write-protect provisioning file.
type Policy struct {
	// RootKeyHashes is the number of root key hashes the device is
	// provisioned with; it must agree with the firmware build.
	RootKeyHashes *int      `yaml:"root_key_hashes" toml:"root_key_hashes"`
	Registers     Registers `yaml:"registers"       toml:"registers"`
}

// FormatForPath picks the decoder from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}

	return "", fmt.Errorf("%w: unsupported policy file extension %q", errorcodes.ErrInvalidPolicy, filepath.Ext(path))
}

// Load reads and decodes a policy file. It does not validate it.
func Load(path string) (*Policy, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}

	return Parse(data, format)
}

// Parse decodes policy data in the given format. Unknown keys are rejected
// so a misspelled register name cannot silently leave it unprovisioned.
func Parse(data []byte, format Format) (*Policy, error) {
	var p Policy
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: %w", errorcodes.ErrInvalidPolicy, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errorcodes.ErrInvalidPolicy, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v", errorcodes.ErrInvalidPolicy, undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", errorcodes.ErrInvalidPolicy, format)
	}

	return &p, nil
}

// byRegister returns the policies in register order.
func (p *Policy) byRegister() [3]*RegisterPolicy {
	return [3]*RegisterPolicy{p.Registers.SR1, p.Registers.SR2, p.Registers.SR3}
}

// WithDefaultRootKeyHashes fills in the root key hash count when the file
// does not set one.
func (p *Policy) WithDefaultRootKeyHashes(n int) *Policy {
	if p.RootKeyHashes == nil {
		p.RootKeyHashes = &n
	}

	return p
}

// Validate reports every problem in the policy at once.
func (p *Policy) Validate() error {
	var result *multierror.Error
	for i, rp := range p.byRegister() {
		if rp == nil {
			continue
		}
		reg := i + 1
		if rp.Value < 0 || rp.Value > 0xFF {
			result = multierror.Append(result, fmt.Errorf("sr%d: value %d out of byte range", reg, rp.Value))
		}
		if rp.Mask < 0 || rp.Mask > 0xFF {
			result = multierror.Append(result, fmt.Errorf("sr%d: mask %d out of byte range", reg, rp.Mask))
		}
		if rp.Value&^rp.Mask&0xFF != 0 {
			result = multierror.Append(result, fmt.Errorf(
				"sr%d: value 0x%02x sets bits outside mask 0x%02x", reg, rp.Value&0xFF, rp.Mask&0xFF))
		}
	}
	if p.RootKeyHashes != nil {
		if err := arv.CheckRootKeyHashCount(*p.RootKeyHashes); err != nil {
			result = multierror.Append(result, fmt.Errorf(
				"root_key_hashes: firmware is built with %d, policy has %d: %w",
				arv.NumRootKeyHashes, *p.RootKeyHashes, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", errorcodes.ErrInvalidPolicy, err)
	}

	return nil
}

// Descriptors converts the policy. A register without policy gets a zero
// mask, which matches any value. Call Validate first; out-of-range values
// are truncated to a byte.
func (p *Policy) Descriptors() [3]arv.WriteProtectDescriptor {
	var out [3]arv.WriteProtectDescriptor
	for i, rp := range p.byRegister() {
		if rp == nil {
			out[i] = arv.NewWriteProtectDescriptor(0, 0)
			continue
		}
		out[i] = arv.NewWriteProtectDescriptor(uint8(rp.Value), uint8(rp.Mask))
	}

	return out
}

package wallet

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Hardened is the BIP32 hardened child offset.
	Hardened = 0x80000000

	// MaxChildIndex is the largest index a segment may carry before the
	// hardened offset is applied.
	MaxChildIndex = Hardened - 1

	// MaxPathDepth is the deepest node BIP32 serialization can represent.
	MaxPathDepth = 255
)

// PathSegment is one level of a derivation path.
type PathSegment struct {
	Index    uint32 `json:"index"`
	Hardened bool   `json:"hardened"`
}

// ChildIndex returns the index passed to BIP32 child derivation.
func (s PathSegment) ChildIndex() uint32 {
	if s.Hardened {
		return s.Index + Hardened
	}
	return s.Index
}

// String renders the segment with a trailing apostrophe when hardened.
func (s PathSegment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// DerivationPath is an ordered list of segments below the master node.
// The empty path addresses the master node itself.
type DerivationPath []PathSegment

// ParseDerivationPath parses strings such as "m/44'/0'/0'/0/5". Hardened
// segments may be marked with ', h or H. The leading "m" is optional.
func ParseDerivationPath(s string) (DerivationPath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parts := strings.Split(s, "/")
	if parts[0] == "m" || parts[0] == "M" {
		parts = parts[1:]
	}
	if len(parts) > MaxPathDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidPath, len(parts), MaxPathDepth)
	}

	path := make(DerivationPath, 0, len(parts))
	for i, part := range parts {
		hardened := false
		if n := len(part); n > 0 {
			switch part[n-1] {
			case '\'', 'h', 'H':
				hardened = true
				part = part[:n-1]
			}
		}
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment at depth %d", ErrInvalidPath, i+1)
		}

		idx, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %w", ErrInvalidPath, parts[i], err)
		}
		seg := PathSegment{Index: uint32(idx), Hardened: hardened}
		if err := seg.validate(); err != nil {
			return nil, err
		}
		path = append(path, seg)
	}
	return path, nil
}

// MustParseDerivationPath is like ParseDerivationPath but panics on error.
// Intended for package-level constants and tests.
func MustParseDerivationPath(s string) DerivationPath {
	p, err := ParseDerivationPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path in "m/44'/0'/0'/0/0" form.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(seg.String())
	}
	return b.String()
}

// Validate checks every segment index and the overall depth.
func (p DerivationPath) Validate() error {
	if len(p) > MaxPathDepth {
		return fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidPath, len(p), MaxPathDepth)
	}
	for _, seg := range p {
		if err := seg.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s PathSegment) validate() error {
	if s.Index > MaxChildIndex {
		return fmt.Errorf("%w: index %d exceeds %d", ErrInvalidPath, s.Index, uint32(MaxChildIndex))
	}
	return nil
}

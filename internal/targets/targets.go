package targets

import (
	"fmt"
	"sort"
	"strings"
)

// Target is one of the ESP chips espup can provision a toolchain for.
type Target int

const (
	ESP32 Target = iota
	ESP32S2
	ESP32S3
	ESP32C2
	ESP32C3
)

var targetNames = map[Target]string{
	ESP32:   "esp32",
	ESP32S2: "esp32s2",
	ESP32S3: "esp32s3",
	ESP32C2: "esp32c2",
	ESP32C3: "esp32c3",
}

// All returns every supported target in canonical order.
func All() []Target {
	return []Target{ESP32, ESP32S2, ESP32S3, ESP32C2, ESP32C3}
}

func (t Target) String() string {
	return targetNames[t]
}

// Xtensa reports whether the target's primary core is an Xtensa CPU.
func (t Target) Xtensa() bool {
	return t == ESP32 || t == ESP32S2 || t == ESP32S3
}

// Riscv reports whether the target needs RISC-V toolchain support.
// ESP32-S2 and ESP32-S3 are Xtensa chips but carry a RISC-V ULP
// coprocessor, so every target except the plain ESP32 qualifies.
func (t Target) Riscv() bool {
	return t != ESP32
}

// UnsupportedTargetError indicates a target token that espup does not know.
type UnsupportedTargetError struct {
	Token string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("target '%s' is not supported", e.Token)
}

// Set is an unordered, duplicate-free collection of targets.
type Set map[Target]struct{}

// NewSet builds a set from the given targets.
func NewSet(ts ...Target) Set {
	s := make(Set, len(ts))
	for _, t := range ts {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts a target into the set.
func (s Set) Add(t Target) {
	s[t] = struct{}{}
}

// Remove deletes a target from the set.
func (s Set) Remove(t Target) {
	delete(s, t)
}

// Contains reports whether the set includes t.
func (s Set) Contains(t Target) bool {
	_, ok := s[t]
	return ok
}

// Any reports whether any member satisfies pred.
func (s Set) Any(pred func(Target) bool) bool {
	for t := range s {
		if pred(t) {
			return true
		}
	}
	return false
}

// Sorted returns the members in canonical order.
func (s Set) Sorted() []Target {
	ts := make([]Target, 0, len(s))
	for t := range s {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}

// Strings returns the member names in canonical order.
func (s Set) Strings() []string {
	ts := s.Sorted()
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.String())
	}
	return names
}

func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}

// NeedsXtensaRust reports whether the set requires the Xtensa Rust
// toolchain (any Xtensa-core target present).
func (s Set) NeedsXtensaRust() bool {
	return s.Any(Target.Xtensa)
}

// NeedsRiscvTarget reports whether the set requires RISC-V target support
// in the Rust nightly channel.
func (s Set) NeedsRiscvTarget() bool {
	return s.Any(Target.Riscv)
}

// Parse resolves a comma or space separated list of chip names into a set.
// The literal "all" expands to every supported target. Unknown tokens fail
// with UnsupportedTargetError.
func Parse(input string) (Set, error) {
	tokens := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(tokens) == 0 {
		return nil, &UnsupportedTargetError{Token: input}
	}

	set := make(Set)
	for _, token := range tokens {
		name := strings.ToLower(token)
		if name == "all" {
			for _, t := range All() {
				set.Add(t)
			}
			continue
		}
		t, err := fromName(name)
		if err != nil {
			return nil, err
		}
		set.Add(t)
	}
	return set, nil
}

// FromStrings rebuilds a set from persisted target names.
func FromStrings(names []string) (Set, error) {
	set := make(Set, len(names))
	for _, name := range names {
		t, err := fromName(name)
		if err != nil {
			return nil, err
		}
		set.Add(t)
	}
	return set, nil
}

func fromName(name string) (Target, error) {
	for t, n := range targetNames {
		if n == name {
			return t, nil
		}
	}
	return 0, &UnsupportedTargetError{Token: name}
}

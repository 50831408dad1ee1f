package sx

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/btree"
)

// RubyPair is a base text span with its phonetic reading
type RubyPair struct {
	Base    string
	Reading string
}

// RubyMap is a character trie mapping base texts to their annotations.
// The zero value is an empty map ready to use.
type RubyMap struct {
	child btree.Map[rune, *RubyMap]
	value []RubyPair
}

// Insert registers the annotation of key, replacing any previous one
func (m *RubyMap) Insert(key string, pairs []RubyPair) {
	if key == "" {
		return
	}
	node := m
	for _, r := range key {
		next, ok := node.child.Get(r)
		if !ok {
			next = &RubyMap{}
			node.child.Set(r, next)
		}
		node = next
	}
	node.value = pairs
}

// Lookup returns the annotation registered for exactly key
func (m *RubyMap) Lookup(key string) ([]RubyPair, bool) {
	if key == "" {
		return nil, false
	}
	node := m
	for _, r := range key {
		next, ok := node.child.Get(r)
		if !ok {
			return nil, false
		}
		node = next
	}
	return node.value, node.value != nil
}

// Match walks the trie along s and returns the length in characters of the
// longest registered key that is a prefix of s, with its annotation.
// It returns zero if no key is a prefix of s.
func (m *RubyMap) Match(s []rune) (int, []RubyPair) {
	var (
		n     int
		pairs []RubyPair
	)
	node := m
	for i, r := range s {
		next, ok := node.child.Get(r)
		if !ok {
			break
		}
		node = next
		if node.value != nil {
			n, pairs = i+1, node.value
		}
	}
	return n, pairs
}

// Len returns the number of registered keys
func (m *RubyMap) Len() int {
	n := 0
	if m.value != nil {
		n++
	}
	m.child.Scan(func(_ rune, c *RubyMap) bool {
		n += c.Len()
		return true
	})
	return n
}

// Register adds an entry with the given readings, as parsed by ParseRubyEntry,
// and returns the pairs of the annotation.
//
// A single reading annotates the whole base. With one reading per character
// every character gets its own reading and is also registered alone.
// Otherwise each reading annotates one character and the last one takes the
// rest of the base.
func (m *RubyMap) Register(base string, readings []string) []RubyPair {
	pairs := rubyPairs(base, readings)
	m.Insert(base, pairs)

	chars := []rune(base)
	if len(chars) > 1 && len(readings) == len(chars) {
		for _, p := range pairs {
			m.Insert(p.Base, []RubyPair{p})
		}
	}
	return pairs
}

func rubyPairs(base string, readings []string) []RubyPair {
	chars := []rune(base)
	if len(readings) <= 1 || len(readings) > len(chars) {
		return []RubyPair{{Base: base, Reading: strings.Join(readings, "")}}
	}

	pairs := make([]RubyPair, 0, len(readings))
	last := len(readings) - 1
	for i, reading := range readings[:last] {
		pairs = append(pairs, RubyPair{Base: string(chars[i]), Reading: reading})
	}
	pairs = append(pairs, RubyPair{Base: string(chars[last:]), Reading: readings[last]})
	return pairs
}

// ParseRubyEntry splits an entry of the form "base:reading" or "base:r1,r2,...".
// Without a colon the entry is just a base and readings is nil.
func ParseRubyEntry(s string) (base string, readings []string) {
	base, rest, found := strings.Cut(strings.TrimSpace(s), ":")
	base = strings.TrimSpace(base)
	if !found {
		return base, nil
	}
	for _, r := range strings.Split(rest, ",") {
		readings = append(readings, strings.TrimSpace(r))
	}
	return base, readings
}

// LoadRubyDictionary registers in m every entry read from r, one per line.
// Blank lines and lines starting with '#' are ignored. It returns the number of entries read.
func LoadRubyDictionary(m *RubyMap, name string, r io.Reader) (int, error) {
	n := 0
	lnum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lnum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		base, readings := ParseRubyEntry(line)
		if base == "" || readings == nil {
			return n, fmt.Errorf("%s:%d: invalid dictionary entry: %q", name, lnum, line)
		}
		m.Register(base, readings)
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading dictionary %s: %w", name, err)
	}
	return n, nil
}

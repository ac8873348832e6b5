package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonwraymond/routecost/lookup"
)

var (
	errMalformedTag = errors.New("routecost: malformed tag, want name=value")
	errUnknownName  = errors.New("routecost: unknown tag name")
)

type tag struct {
	name, value string
}

func parseTag(s string) (tag, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" || value == "" {
		return tag{}, fmt.Errorf("%w: %q", errMalformedTag, s)
	}
	return tag{name: name, value: value}, nil
}

func parseTags(args []string) ([]tag, error) {
	tags := make([]tag, 0, len(args))
	for _, a := range args {
		t, err := parseTag(a)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// readRecords calls fn for every record in r. A record is one line of
// whitespace-separated name=value tags; blank lines and lines starting with
// # are skipped.
func readRecords(r io.Reader, fn func(tags []tag) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tags, err := parseTags(strings.Fields(line))
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := fn(tags); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func readRecordFile(path string, fn func(tags []tag) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := readRecords(f, fn); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// vectorOf maps tags onto a fresh vector without growing reg. Unknown values
// become lookup.Unknown; unknown names are an error when strict is set and
// ignored otherwise.
func vectorOf(reg *lookup.Registry, tags []tag, strict bool) (lookup.IndexVector, error) {
	vec := reg.NewIndexVector()
	for _, t := range tags {
		if strict && reg.NameIndex(t.name) == lookup.NotFound {
			return nil, fmt.Errorf("%w: %q", errUnknownName, t.name)
		}
		reg.RegisterInto(vec, t.name, t.value)
	}
	return vec, nil
}

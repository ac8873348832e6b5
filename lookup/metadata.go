package lookup

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Well-known context names.
const (
	ContextGlobal = "global"
	ContextWay    = "way"
	ContextNode   = "node"
)

// Hard-wired names injected as the first name of way and node registries when
// the variable-length format is in use.
const (
	ReverseDirection  = "reversedirection"
	NodeAccessGranted = "nodeaccessgranted"
)

const (
	contextTag       = "---context:"
	lookupVersionTag = "---lookupversion:"
	minorVersionTag  = "---minorversion:"
	varLengthTag     = "---readvarlength"
)

// Metadata holds the file-level flags of a lookup metadata file.
type Metadata struct {
	LookupVersion int
	MinorVersion  int
	VarLength     bool
}

// MetaParser feeds the metadata lines of one context into a registry.
type MetaParser struct {
	// VarLength selects the variable-length wire format, which hard-wires
	// the direction (way) or access (node) flag as name 0.
	VarLength bool

	context        string
	registry       *Registry
	parsedLines    int
	fixTagsWritten bool
}

// NewMetaParser creates a parser for context that fills registry.
func NewMetaParser(context string, registry *Registry) *MetaParser {
	return &MetaParser{context: context, registry: registry}
}

// Context returns the context name this parser accepts lines for.
func (p *MetaParser) Context() string {
	return p.context
}

// Registry returns the registry being filled.
func (p *MetaParser) Registry() *Registry {
	return p.registry
}

// ParseLine registers one "name value [alias...]" line.
func (p *MetaParser) ParseLine(line string) error {
	p.parsedLines++
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	name, value := tokens[0], tokens[1]
	if idx := strings.IndexByte(name, ';'); idx >= 0 {
		name = name[:idx]
	}

	if p.VarLength {
		if !p.fixTagsWritten {
			p.fixTagsWritten = true
			switch p.context {
			case ContextWay:
				p.registry.Register(ReverseDirection, "yes")
			case ContextNode:
				p.registry.Register(NodeAccessGranted, "yes")
			}
		}
		if name == ReverseDirection || name == NodeAccessGranted {
			return nil
		}
	}

	_, created := p.registry.Register(name, value)
	if created != nil {
		for _, alias := range tokens[2:] {
			created.AddAlias(alias)
		}
	}
	return nil
}

// Finish completes parsing. A non-global context without any lines is a
// configuration error. The registry is frozen and its current vector cleared.
func (p *MetaParser) Finish() error {
	if p.parsedLines == 0 && p.context != ContextGlobal {
		return &ConfigError{Context: p.context, Err: ErrNoContextData}
	}
	p.registry.ResetCurrent()
	p.registry.Freeze()
	return nil
}

// ReadMetadata reads a metadata file, routing each context section to the
// parser registered for it. Sections without a parser are skipped. Every
// parser is finished once the input is exhausted.
func ReadMetadata(r io.Reader, parsers ...*MetaParser) (Metadata, error) {
	var md Metadata
	byContext := make(map[string]*MetaParser, len(parsers))
	for _, p := range parsers {
		byContext[p.context] = p
	}

	var current *MetaParser
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, contextTag):
			current = byContext[line[len(contextTag):]]
		case strings.HasPrefix(line, lookupVersionTag):
			v, err := strconv.Atoi(line[len(lookupVersionTag):])
			if err != nil {
				return md, &ConfigError{Line: lineNo, Err: fmt.Errorf("lookup version: %w", err)}
			}
			md.LookupVersion = v
		case strings.HasPrefix(line, minorVersionTag):
			v, err := strconv.Atoi(line[len(minorVersionTag):])
			if err != nil {
				return md, &ConfigError{Line: lineNo, Err: fmt.Errorf("minor version: %w", err)}
			}
			md.MinorVersion = v
		case line == varLengthTag:
			md.VarLength = true
			for _, p := range parsers {
				p.VarLength = true
			}
		case strings.HasPrefix(line, "---"):
			// unknown header
		case current != nil:
			if err := current.ParseLine(line); err != nil {
				return md, &ConfigError{Context: current.context, Line: lineNo, Err: err}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return md, fmt.Errorf("lookup: reading metadata: %w", err)
	}

	for _, p := range parsers {
		if err := p.Finish(); err != nil {
			return md, err
		}
	}
	return md, nil
}

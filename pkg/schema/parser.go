package schema

import (
	"fmt"
	"strconv"
)

// ParseError is a single schema syntax or semantic error tied to a source
// position.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// Parser parses .kiwi schema source into a Schema.
type Parser struct {
	lexer   *Lexer
	current Token
	pending []string // comments harvested while loading current
	errors  []ParseError
}

// NewParser creates a parser for input from the named file.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// ParseFile parses filename's contents into a Schema. Returns the parsed
// schema (possibly partial) and any errors encountered; callers should
// treat a non-empty error slice as a hard failure.
func ParseFile(filename, input string) (*Schema, []ParseError) {
	p := NewParser(filename, input)
	return p.Parse()
}

// Parse parses the entire schema source: a sequence of enum, struct, and
// message definitions.
func (p *Parser) Parse() (*Schema, []ParseError) {
	schema := &Schema{}

	for {
		comments := p.takeComments()
		if p.check(TokenEOF) {
			break
		}
		if !p.checkKeyword("enum") && !p.checkKeyword("struct") && !p.checkKeyword("message") {
			p.errorf("expected 'enum', 'struct', or 'message', got %s", p.current)
			p.synchronize()
			continue
		}
		def, err := p.parseDefinition(comments)
		if err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
			continue
		}
		schema.Definitions = append(schema.Definitions, *def)
	}

	return schema, p.errors
}

func (p *Parser) parseDefinition(comments []string) (*Definition, *ParseError) {
	var kind Kind
	switch p.current.Value {
	case "enum":
		kind = KindEnum
	case "struct":
		kind = KindStruct
	case "message":
		kind = KindMessage
	}
	pos := p.current.Position
	p.advance() // consume keyword

	if !p.check(TokenIdent) {
		return nil, p.error(fmt.Sprintf("expected definition name, got %s", p.current))
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenLBrace) {
		return nil, p.error(fmt.Sprintf("expected '{' after %q, got %s", name, p.current))
	}

	def := &Definition{
		Position: pos,
		Name:     name,
		Kind:     kind,
		Comments: comments,
	}

	for {
		fieldComments := p.takeComments()
		if p.check(TokenRBrace) || p.check(TokenEOF) {
			_ = fieldComments // a trailing comment with nothing to attach to
			break
		}
		var field *Field
		var err *ParseError
		if kind == KindEnum {
			field, err = p.parseEnumMember(fieldComments)
		} else {
			field, err = p.parseField(fieldComments, kind)
		}
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, *field)
	}

	if !p.consume(TokenRBrace) {
		return nil, p.error(fmt.Sprintf("expected '}' to close %q, got %s", name, p.current))
	}

	return def, nil
}

// parseField parses "type IDENT ('=' INT)? ';'" for a struct or message
// field.
func (p *Parser) parseField(comments []string, kind Kind) (*Field, *ParseError) {
	pos := p.current.Position

	if !p.check(TokenIdent) {
		return nil, p.error(fmt.Sprintf("expected field type, got %s", p.current))
	}
	typeName := p.current.Value
	p.advance()

	isArray := false
	if p.check(TokenLBracket) {
		p.advance()
		if !p.consume(TokenRBracket) {
			return nil, p.error(fmt.Sprintf("expected ']' after '[', got %s", p.current))
		}
		isArray = true
	}

	if !p.check(TokenIdent) {
		return nil, p.error(fmt.Sprintf("expected field name, got %s", p.current))
	}
	name := p.current.Value
	p.advance()

	var id uint32
	switch kind {
	case KindMessage:
		if !p.consume(TokenEquals) {
			return nil, p.error(fmt.Sprintf("expected '=' after field name %q in message", name))
		}
		if !p.check(TokenInt) {
			return nil, p.error(fmt.Sprintf("expected field ID, got %s", p.current))
		}
		n, err := strconv.ParseUint(p.current.Value, 10, 32)
		if err != nil {
			return nil, p.error(fmt.Sprintf("invalid field ID %q: %v", p.current.Value, err))
		}
		id = uint32(n)
		p.advance()
	case KindStruct:
		if p.check(TokenEquals) {
			return nil, p.error(fmt.Sprintf("struct field %q may not declare a value (struct fields are positional)", name))
		}
	}

	if !p.consume(TokenSemicolon) {
		return nil, p.error(fmt.Sprintf("expected ';' after field %q, got %s", name, p.current))
	}

	field := &Field{
		Position: pos,
		Name:     name,
		IsArray:  isArray,
		Value:    id,
		Comments: comments,
	}
	if code, ok := builtinNames[typeName]; ok {
		field.Type = code
	} else {
		field.UnresolvedType = typeName
	}
	return field, nil
}

// parseEnumMember parses "IDENT '=' INT ';'".
func (p *Parser) parseEnumMember(comments []string) (*Field, *ParseError) {
	pos := p.current.Position

	if !p.check(TokenIdent) {
		return nil, p.error(fmt.Sprintf("expected enum member name, got %s", p.current))
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenEquals) {
		return nil, p.error(fmt.Sprintf("expected '=' after enum member %q", name))
	}
	if !p.check(TokenInt) {
		return nil, p.error(fmt.Sprintf("expected enum discriminant, got %s", p.current))
	}
	n, err := strconv.ParseUint(p.current.Value, 10, 32)
	if err != nil {
		return nil, p.error(fmt.Sprintf("invalid enum discriminant %q: %v", p.current.Value, err))
	}
	p.advance()

	if !p.consume(TokenSemicolon) {
		return nil, p.error(fmt.Sprintf("expected ';' after enum member %q", name))
	}

	return &Field{
		Position: pos,
		Name:     name,
		Value:    uint32(n),
		Comments: comments,
	}, nil
}

// advance loads the next token into p.current, first harvesting any
// comments that precede it. Comment harvesting lives here, on the one code
// path that consumes tokens, so no call site can skip a token by reading
// the stream twice; takeComments hands the harvested lines to whichever
// definition or field starts at the current token.
func (p *Parser) advance() {
	p.pending = p.lexer.LeadingComments()
	p.current = p.lexer.Next()
}

// takeComments returns the comments that preceded the current token and
// clears them. Consumes no tokens.
func (p *Parser) takeComments() []string {
	comments := p.pending
	p.pending = nil
	return comments
}

func (p *Parser) check(t TokenType) bool {
	return p.current.Type == t
}

func (p *Parser) checkKeyword(kw string) bool {
	return p.current.Type == TokenIdent && p.current.Value == kw
}

func (p *Parser) consume(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) error(msg string) *ParseError {
	return &ParseError{Position: p.current.Position, Message: msg}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, ParseError{Position: p.current.Position, Message: fmt.Sprintf(format, args...)})
}

// synchronize skips tokens until the start of the next definition or EOF,
// so one malformed definition doesn't cascade into spurious errors for the
// rest of the file.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		if p.checkKeyword("enum") || p.checkKeyword("struct") || p.checkKeyword("message") {
			return
		}
		p.advance()
	}
}

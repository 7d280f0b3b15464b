package schema

import "testing"

func tokenTypes(src string) []TokenType {
	l := NewLexer("test.kiwi", src)
	var types []TokenType
	for {
		tok := l.Next()
		types = append(types, tok.Type)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return types
}

func TestLexerPunctuation(t *testing.T) {
	got := tokenTypes("{}[];=,")
	want := []TokenType{TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket, TokenSemicolon, TokenEquals, TokenComma, TokenEOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerIdentifiersAndInts(t *testing.T) {
	l := NewLexer("test.kiwi", "message Foo123 _bar -42 7")
	tok := l.Next()
	if tok.Type != TokenIdent || tok.Value != "message" {
		t.Fatalf("got %+v", tok)
	}
	tok = l.Next()
	if tok.Type != TokenIdent || tok.Value != "Foo123" {
		t.Fatalf("got %+v", tok)
	}
	tok = l.Next()
	if tok.Type != TokenIdent || tok.Value != "_bar" {
		t.Fatalf("got %+v", tok)
	}
	tok = l.Next()
	if tok.Type != TokenInt || tok.Value != "-42" {
		t.Fatalf("got %+v", tok)
	}
	tok = l.Next()
	if tok.Type != TokenInt || tok.Value != "7" {
		t.Fatalf("got %+v", tok)
	}
	if l.Next().Type != TokenEOF {
		t.Error("expected EOF")
	}
}

func TestLexerSkipsLineComments(t *testing.T) {
	l := NewLexer("test.kiwi", "foo // a comment\nbar")
	if tok := l.Next(); tok.Value != "foo" {
		t.Fatalf("got %+v", tok)
	}
	if tok := l.Next(); tok.Value != "bar" {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexerSkipsBlockComments(t *testing.T) {
	l := NewLexer("test.kiwi", "foo /* multi\nline */ bar")
	if tok := l.Next(); tok.Value != "foo" {
		t.Fatalf("got %+v", tok)
	}
	if tok := l.Next(); tok.Value != "bar" {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexerUnterminatedBlockCommentDoesNotPanic(t *testing.T) {
	l := NewLexer("test.kiwi", "foo /* never closes")
	if tok := l.Next(); tok.Value != "foo" {
		t.Fatalf("got %+v", tok)
	}
	if tok := l.Next(); tok.Type != TokenEOF {
		t.Fatalf("got %+v, want EOF", tok)
	}
}

func TestLexerPositionTracking(t *testing.T) {
	l := NewLexer("test.kiwi", "a\nb")
	first := l.Next()
	if first.Position.Line != 1 || first.Position.Column != 1 {
		t.Errorf("got %+v, want line 1 col 1", first.Position)
	}
	second := l.Next()
	if second.Position.Line != 2 || second.Position.Column != 1 {
		t.Errorf("got %+v, want line 2 col 1", second.Position)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	l := NewLexer("test.kiwi", "@")
	tok := l.Next()
	if tok.Type != TokenError {
		t.Fatalf("got %+v, want TokenError", tok)
	}
}

func TestLeadingCommentsCollectsLineComments(t *testing.T) {
	l := NewLexer("test.kiwi", "// first\n// second\nfoo")
	comments := l.LeadingComments()
	if len(comments) != 2 || comments[0] != "first" || comments[1] != "second" {
		t.Fatalf("got %v", comments)
	}
	if tok := l.Next(); tok.Value != "foo" {
		t.Fatalf("got %+v", tok)
	}
}

func TestLeadingCommentsIgnoresBlockComments(t *testing.T) {
	l := NewLexer("test.kiwi", "/* not collected */ foo")
	comments := l.LeadingComments()
	if len(comments) != 0 {
		t.Fatalf("got %v, want none", comments)
	}
	if tok := l.Next(); tok.Value != "foo" {
		t.Fatalf("got %+v", tok)
	}
}

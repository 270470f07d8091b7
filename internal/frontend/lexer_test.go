package frontend

import "testing"

func TestLexerTokenTypes(t *testing.T) {
	src := `int x; x = 1 + 2 * (3 - 4) / 5 % 6; if (x <= 7) {}`
	want := []tokenType{
		tInt, tIdentifier, tSemi,
		tIdentifier, tAssign, tInteger, tPlus, tInteger, tStar, tLParen, tInteger, tMinus, tInteger, tRParen,
		tSlash, tInteger, tPercent, tInteger, tSemi,
		tIf, tLParen, tIdentifier, tLe, tInteger,
	}
	l := newLexer(src)
	for i, w := range want {
		tok := l.nextToken()
		if tok.typ != w {
			t.Fatalf("token %d: got %s, want %s (val %q)", i, tok.typ, w, tok.val)
		}
	}
}

func TestLexerLineCounting(t *testing.T) {
	src := "int x;\nint y;\nprint(x);"
	l := newLexer(src)
	var lines []int
	for {
		tok := l.nextToken()
		if tok.typ == tEOF {
			break
		}
		if tok.typ == tInt {
			lines = append(lines, tok.line)
		}
	}
	if len(lines) != 2 || lines[0] != 1 || lines[1] != 2 {
		t.Fatalf("unexpected line numbers for 'int' tokens: %v", lines)
	}
}

func TestLexerSkipsLineComments(t *testing.T) {
	src := "int x; // a trailing comment\nint y;"
	l := newLexer(src)
	var kinds []tokenType
	for {
		tok := l.nextToken()
		kinds = append(kinds, tok.typ)
		if tok.typ == tEOF || tok.typ == tError {
			break
		}
	}
	for _, k := range kinds {
		if k == tError {
			t.Fatalf("unexpected lex error for input with a comment: %v", kinds)
		}
	}
}

func TestLexerUnterminatedBang(t *testing.T) {
	l := newLexer("!")
	tok := l.nextToken()
	if tok.typ != tError {
		t.Fatalf("expected lex error for bare '!', got %s", tok.typ)
	}
}

func TestIsKeywordBucketing(t *testing.T) {
	cases := map[string]tokenType{
		"if": tIf, "do": tDo, "int": tInt, "for": tFor,
		"void": tVoid, "else": tElse, "print": tPrint, "while": tWhile,
		"return": tReturn, "notakeyword": tIdentifier,
	}
	for s, want := range cases {
		got, ok := isKeyword(s)
		if want == tIdentifier {
			if ok {
				t.Errorf("isKeyword(%q) = %s, want not a keyword", s, got)
			}
			continue
		}
		if !ok || got != want {
			t.Errorf("isKeyword(%q) = %s, %v; want %s, true", s, got, ok, want)
		}
	}
}

package asn1

import (
	"strconv"

	"github.com/go-asn1/per/internal"
)

// parser is a recursive-descent parser over the lexer's token stream,
// with one token of lookahead.
type parser struct {
	lex  *lexer
	tok  token
	prev token
}

// Parse parses a complete ASN.1 module: a header, a BEGIN/END block of
// type assignments. It is total: any input either returns a Module or a
// *internal.ParseError carrying a source position.
func Parse(src string) (mod *Module, err error) {
	defer internal.Recover(&err)
	p := &parser{lex: newLexer(src)}
	p.advance()
	return p.parseModule(), nil
}

func (p *parser) advance() {
	p.prev = p.tok
	p.tok = p.lex.next()
}

func (p *parser) fail(detail string) {
	panic(&internal.ParseError{Pos: p.tok.pos, Detail: detail})
}

func (p *parser) expectIdent(text string) {
	if p.tok.kind != tokIdent || p.tok.text != text {
		p.fail("expected " + text)
	}
	p.advance()
}

func (p *parser) expectPunct(text string) {
	if p.tok.kind != tokPunct || p.tok.text != text {
		p.fail("expected " + text)
	}
	p.advance()
}

func (p *parser) atIdent(text string) bool {
	return p.tok.kind == tokIdent && p.tok.text == text
}

func (p *parser) atPunct(text string) bool {
	return p.tok.kind == tokPunct && p.tok.text == text
}

func (p *parser) parseModule() *Module {
	if p.tok.kind != tokIdent {
		p.fail("expected module name")
	}
	name := p.tok.text
	p.advance()
	p.expectIdent("DEFINITIONS")
	// Optional tag-default keywords before "::=", e.g. "EXPLICIT TAGS".
	for p.tok.kind == tokIdent && !p.atIdent("BEGIN") {
		if p.tok.kind == tokAssign {
			break
		}
		p.advance()
	}
	if p.tok.kind != tokAssign {
		p.fail("expected ::=")
	}
	p.advance()
	p.expectIdent("BEGIN")

	var assignments []TypeAssignment
	for !p.atIdent("END") {
		if p.tok.kind == tokEOF {
			p.fail("unexpected end of input, expected END")
		}
		assignments = append(assignments, p.parseTypeAssignment())
	}
	p.advance() // consume END
	return &Module{Name: name, Assignments: assignments}
}

func (p *parser) parseTypeAssignment() TypeAssignment {
	if p.tok.kind != tokIdent {
		p.fail("expected type assignment name")
	}
	name := p.tok.text
	p.advance()
	if p.tok.kind != tokAssign {
		p.fail("expected ::=")
	}
	p.advance()
	return TypeAssignment{Name: name, Type: p.parseType()}
}

func (p *parser) parseType() TypeExpr {
	if p.tok.kind != tokIdent {
		p.fail("expected type")
	}
	switch p.tok.text {
	case "BOOLEAN":
		p.advance()
		return BooleanType{}
	case "NULL":
		p.advance()
		return NullType{}
	case "OBJECT":
		p.advance()
		p.expectIdent("IDENTIFIER")
		return ObjectIdentifierType{}
	case "INTEGER":
		p.advance()
		return p.parseIntegerTail()
	case "ENUMERATED":
		p.advance()
		return p.parseEnumeratedTail()
	case "BIT":
		p.advance()
		p.expectIdent("STRING")
		return BitStringType{Size: p.parseOptionalSize()}
	case "OCTET":
		p.advance()
		p.expectIdent("STRING")
		return OctetStringType{Size: p.parseOptionalSize()}
	case "IA5String", "VisibleString", "UTF8String":
		kind := CharacterStringKind(p.tok.text)
		p.advance()
		size := p.parseOptionalSize()
		alphabet := p.parseOptionalFrom()
		return CharacterStringType{Kind: kind, Size: size, Alphabet: alphabet}
	case "SEQUENCE":
		p.advance()
		return p.parseSequenceTail()
	case "CHOICE":
		p.advance()
		return p.parseChoiceTail()
	default:
		name := p.tok.text
		p.advance()
		return ReferenceType{Name: name}
	}
}

func (p *parser) parseNumber() int64 {
	if p.tok.kind != tokNumber {
		p.fail("expected number")
	}
	n, err := strconv.ParseInt(p.tok.text, 10, 64)
	if err != nil {
		p.fail("invalid number " + p.tok.text)
	}
	p.advance()
	return n
}

func (p *parser) parseIntegerTail() TypeExpr {
	it := &IntegerType{}
	if p.atPunct("{") {
		p.advance()
		it.NamedValues = map[string]int64{}
		for {
			name := p.tok.text
			p.advance()
			p.expectPunct("(")
			it.NamedValues[name] = p.parseNumber()
			p.expectPunct(")")
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectPunct("}")
	}
	if p.atPunct("(") {
		p.advance()
		min := p.parseSignedNumber()
		max := min
		ext := false
		if p.tok.kind == tokRange {
			p.advance()
			max = p.parseSignedNumber()
		}
		if p.atPunct(",") {
			p.advance()
			p.expectEllipsis()
			ext = true
		}
		it.Constraint = &ValueConstraint{Min: min, Max: max}
		it.Extensible = ext
		p.expectPunct(")")
	}
	return *it
}

func (p *parser) parseSignedNumber() int64 {
	return p.parseNumber()
}

func (p *parser) expectEllipsis() {
	if p.tok.kind != tokEllipsis {
		p.fail("expected ...")
	}
	p.advance()
}

func (p *parser) parseEnumeratedTail() TypeExpr {
	p.expectPunct("{")
	et := &EnumeratedType{}
	inExtension := false
	for {
		if p.tok.kind == tokEllipsis {
			p.advance()
			et.Extensible = true
			inExtension = true
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
		name := p.tok.text
		p.advance()
		var num *int64
		if p.atPunct("(") {
			p.advance()
			n := p.parseNumber()
			num = &n
			p.expectPunct(")")
		}
		v := EnumValue{Name: name, Number: num}
		if inExtension {
			et.ExtensionValues = append(et.ExtensionValues, v)
		} else {
			et.Values = append(et.Values, v)
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct("}")
	return *et
}

func (p *parser) parseOptionalSize() *SizeConstraint {
	if !p.atPunct("(") {
		return nil
	}
	p.advance()
	p.expectIdent("SIZE")
	p.expectPunct("(")
	sc := p.parseSizeBody()
	p.expectPunct(")")
	p.expectPunct(")")
	return sc
}

func (p *parser) parseSizeBody() *SizeConstraint {
	lo := p.parseNumber()
	sc := &SizeConstraint{}
	if p.tok.kind == tokRange {
		p.advance()
		hi := p.parseNumber()
		min, max := uint64(lo), uint64(hi)
		sc.Min, sc.Max = &min, &max
	} else {
		v := uint64(lo)
		sc.Fixed = &v
	}
	if p.atPunct(",") {
		p.advance()
		p.expectEllipsis()
		sc.Extensible = true
	}
	return sc
}

func (p *parser) parseOptionalFrom() string {
	if !p.atIdent("FROM") {
		return ""
	}
	p.advance()
	p.expectPunct("(")
	alphabet := ""
	for !p.atPunct(")") {
		if p.tok.kind == tokEOF {
			p.fail("unexpected end of input, expected )")
		}
		if p.tok.kind == tokString {
			alphabet += p.tok.text
		}
		p.advance()
	}
	p.advance()
	return alphabet
}

func (p *parser) parseSequenceTail() TypeExpr {
	if p.atIdent("OF") {
		p.advance()
		return SequenceOfType{Item: p.parseType()}
	}
	if p.atPunct("(") {
		size := p.parseOptionalSize()
		p.expectIdent("OF")
		return SequenceOfType{Item: p.parseType(), Size: size}
	}
	p.expectPunct("{")
	fields, extFields, ext := p.parseFieldList()
	p.expectPunct("}")
	return SequenceType{Fields: fields, ExtensionFields: extFields, Extensible: ext}
}

func (p *parser) parseChoiceTail() TypeExpr {
	p.expectPunct("{")
	fields, extFields, ext := p.parseFieldList()
	p.expectPunct("}")
	return ChoiceType{Alternatives: fields, ExtensionAlternatives: extFields, Extensible: ext}
}

// parseFieldList parses the comma-separated field/alternative list shared
// by SEQUENCE and CHOICE, including an optional "..." extension marker
// after which subsequent fields are collected separately.
func (p *parser) parseFieldList() (fields, extFields []SeqField, extensible bool) {
	inExtension := false
	for !p.atPunct("}") {
		if p.tok.kind == tokEllipsis {
			p.advance()
			extensible = true
			inExtension = true
			if p.atPunct(",") {
				p.advance()
				continue
			}
			continue
		}
		f := p.parseField()
		if inExtension {
			extFields = append(extFields, f)
		} else {
			fields = append(fields, f)
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return fields, extFields, extensible
}

func (p *parser) parseField() SeqField {
	if p.tok.kind != tokIdent {
		p.fail("expected field name")
	}
	name := p.tok.text
	p.advance()
	typ := p.parseType()
	f := SeqField{Name: name, Type: typ}
	if p.atIdent("OPTIONAL") {
		p.advance()
		f.Optional = true
	} else if p.atIdent("DEFAULT") {
		p.advance()
		f.HasDefault = true
		f.DefaultValue = p.parseDefaultValue()
	}
	return f
}

// parseDefaultValue parses a scalar DEFAULT value: a number, a signed
// number, a quoted string, or a bare identifier (boolean literal or
// enumerated value name).
func (p *parser) parseDefaultValue() interface{} {
	switch p.tok.kind {
	case tokNumber:
		v := p.parseNumber()
		return v
	case tokString:
		s := p.tok.text
		p.advance()
		return s
	case tokIdent:
		switch p.tok.text {
		case "TRUE":
			p.advance()
			return true
		case "FALSE":
			p.advance()
			return false
		default:
			s := p.tok.text
			p.advance()
			return s
		}
	default:
		p.fail("expected default value")
		return nil
	}
}

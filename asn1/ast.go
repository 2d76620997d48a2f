package asn1

// Module is the parsed form of a single ASN.1 module: a name and its
// ordered list of type assignments.
type Module struct {
	Name        string
	Assignments []TypeAssignment
}

// TypeAssignment binds a type reference name to the type expression it
// stands for.
type TypeAssignment struct {
	Name string
	Type TypeExpr
}

// TypeExpr is implemented by every ASN.1 type form this parser accepts.
type TypeExpr interface{ typeExpr() }

type typeExprBase struct{}

func (typeExprBase) typeExpr() {}

// ValueConstraint is an INTEGER value-range or single-value constraint.
type ValueConstraint struct {
	Min, Max int64
}

type BooleanType struct{ typeExprBase }
type NullType struct{ typeExprBase }
type ObjectIdentifierType struct{ typeExprBase }

type IntegerType struct {
	typeExprBase
	NamedValues map[string]int64
	Constraint  *ValueConstraint
	Extensible  bool
}

type EnumValue struct {
	Name   string
	Number *int64
}

type EnumeratedType struct {
	typeExprBase
	Values          []EnumValue
	ExtensionValues []EnumValue
	Extensible      bool
}

// SizeConstraint is a SIZE(...) constraint on a string or SEQUENCE OF.
type SizeConstraint struct {
	Fixed      *uint64
	Min, Max   *uint64
	Extensible bool
}

type BitStringType struct {
	typeExprBase
	Size *SizeConstraint
}

type OctetStringType struct {
	typeExprBase
	Size *SizeConstraint
}

// CharacterStringKind names which of the three supported character
// string types a CharacterStringType is.
type CharacterStringKind string

const (
	CharIA5      CharacterStringKind = "IA5String"
	CharVisible  CharacterStringKind = "VisibleString"
	CharUTF8     CharacterStringKind = "UTF8String"
)

type CharacterStringType struct {
	typeExprBase
	Kind     CharacterStringKind
	Size     *SizeConstraint
	Alphabet string
}

// SeqField is one SEQUENCE field or CHOICE alternative in the AST.
type SeqField struct {
	Name         string
	Type         TypeExpr
	Optional     bool
	HasDefault   bool
	DefaultValue interface{}
}

type SequenceType struct {
	typeExprBase
	Fields          []SeqField
	ExtensionFields []SeqField
	Extensible      bool
}

type SequenceOfType struct {
	typeExprBase
	Item TypeExpr
	Size *SizeConstraint
}

type ChoiceType struct {
	typeExprBase
	Alternatives          []SeqField
	ExtensionAlternatives []SeqField
	Extensible            bool
}

// ReferenceType is an as-yet-unresolved named type reference.
type ReferenceType struct {
	typeExprBase
	Name string
}

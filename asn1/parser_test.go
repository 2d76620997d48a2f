package asn1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleModule(t *testing.T) {
	mod, err := Parse(`
		Greeting DEFINITIONS ::= BEGIN

		-- a friendly enumeration
		Mood ::= ENUMERATED { happy(0), sad(1), ... , curious(2) }

		Greeting ::= SEQUENCE {
			mood Mood,
			message IA5String (SIZE(0..64)) OPTIONAL,
			...,
			shout BOOLEAN DEFAULT FALSE
		}

		END
	`)
	require.NoError(t, err)
	assert.Equal(t, "Greeting", mod.Name)
	require.Len(t, mod.Assignments, 2)

	mood := mod.Assignments[0].Type.(EnumeratedType)
	assert.True(t, mood.Extensible)
	assert.Equal(t, []EnumValue{{Name: "happy", Number: ptr(int64(0))}, {Name: "sad", Number: ptr(int64(1))}}, mood.Values)
	assert.Equal(t, []EnumValue{{Name: "curious", Number: ptr(int64(2))}}, mood.ExtensionValues)

	greeting := mod.Assignments[1].Type.(SequenceType)
	assert.True(t, greeting.Extensible)
	require.Len(t, greeting.Fields, 2)
	assert.Equal(t, "mood", greeting.Fields[0].Name)
	assert.True(t, greeting.Fields[1].Optional)
	require.Len(t, greeting.ExtensionFields, 1)
	assert.True(t, greeting.ExtensionFields[0].HasDefault)
	assert.Equal(t, false, greeting.ExtensionFields[0].DefaultValue)
}

func TestParseIntegerConstraintsAndNamedValues(t *testing.T) {
	mod, err := Parse(`
		M DEFINITIONS ::= BEGIN
		Code ::= INTEGER { ok(0), fail(1) } (0..10, ...)
		END
	`)
	require.NoError(t, err)
	it := mod.Assignments[0].Type.(IntegerType)
	assert.Equal(t, int64(0), it.NamedValues["ok"])
	assert.Equal(t, int64(1), it.NamedValues["fail"])
	require.NotNil(t, it.Constraint)
	assert.Equal(t, int64(0), it.Constraint.Min)
	assert.Equal(t, int64(10), it.Constraint.Max)
	assert.True(t, it.Extensible)
}

func TestParseSequenceOfWithSize(t *testing.T) {
	mod, err := Parse(`
		M DEFINITIONS ::= BEGIN
		Items ::= SEQUENCE (SIZE(0..5)) OF BOOLEAN
		END
	`)
	require.NoError(t, err)
	sq := mod.Assignments[0].Type.(SequenceOfType)
	require.NotNil(t, sq.Size)
	assert.Equal(t, uint64(0), *sq.Size.Min)
	assert.Equal(t, uint64(5), *sq.Size.Max)
	_, ok := sq.Item.(BooleanType)
	assert.True(t, ok)
}

func TestParseRecursiveSequence(t *testing.T) {
	mod, err := Parse(`
		M DEFINITIONS ::= BEGIN
		TreeNode ::= SEQUENCE {
			value INTEGER (0..255),
			children SEQUENCE OF TreeNode OPTIONAL
		}
		END
	`)
	require.NoError(t, err)
	tn := mod.Assignments[0].Type.(SequenceType)
	childrenType := tn.Fields[1].Type.(SequenceOfType)
	ref, ok := childrenType.Item.(ReferenceType)
	require.True(t, ok)
	assert.Equal(t, "TreeNode", ref.Name)
}

func TestParseSyntaxErrorHasPosition(t *testing.T) {
	_, err := Parse("M DEFINITIONS BEGIN END")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error at 1:15")
}

func TestParseRejectsMissingEnd(t *testing.T) {
	_, err := Parse(`
		M DEFINITIONS ::= BEGIN
		X ::= BOOLEAN
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "END")
}

func ptr[T any](v T) *T { return &v }

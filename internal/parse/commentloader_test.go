package parse

import (
	"testing"

	"github.com/dshills/componentsgen/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLoader_ParseParamComments(t *testing.T) {
	c := &CommentLoader{}

	comments, err := c.ParseParamComments(`/**
   * Creates the thing.
   * @param fieldA - This is a great field! @range {float}
   * @param fieldB This is B @range {float}
   * @param fieldC This is C @ignored
   * @param {string} fieldD Typed
   *   and continued
   * @param fieldE
   * @returns nothing
   */`)
	require.NoError(t, err)

	assert.Equal(t, map[string]CommentData{
		"fieldA": {Description: "This is a great field!", Range: "float"},
		"fieldB": {Description: "This is B", Range: "float"},
		"fieldC": {Description: "This is C", Ignored: true},
		"fieldD": {Description: "Typed and continued"},
		"fieldE": {},
	}, comments)
}

// A directive starting its own line is a tag of its own and does not belong
// to the @param above it
func TestCommentLoader_ParseParamComments_DirectiveLines(t *testing.T) {
	c := &CommentLoader{}

	comments, err := c.ParseParamComments(`/**
   * @param x - the x
   * @range {float}
   * @param y - the y
   *   continued @range {float}
   * @param z - the z
   * @range {color}
   */`)
	require.NoError(t, err)

	assert.Equal(t, map[string]CommentData{
		"x": {Description: "the x"},
		"y": {Description: "the y continued", Range: "float"},
		"z": {Description: "the z"},
	}, comments)
}

func TestCommentLoader_ParseParamComments_Empty(t *testing.T) {
	c := &CommentLoader{}

	comments, err := c.ParseParamComments("")
	require.NoError(t, err)
	assert.Empty(t, comments)

	comments, err = c.ParseParamComments("/** Just a description. */")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentLoader_InvalidRange(t *testing.T) {
	c := &CommentLoader{}

	_, err := c.ParseParamComments(`/**
 * @param a - desc @range {notatype}
 */`)
	require.ErrorIs(t, err, types.ErrInvalidRange)
	assert.Contains(t, err.Error(), "notatype")
	assert.Contains(t, err.Error(), "parameter a")

	_, err = c.ParseFieldComment(`/** @range {nope} */`)
	assert.ErrorIs(t, err, types.ErrInvalidRange)
}

func TestCommentLoader_RangeTypes(t *testing.T) {
	c := &CommentLoader{}
	for rangeType := range RangeTypes {
		comments, err := c.ParseParamComments("/** @param x @range {" + rangeType + "} */")
		require.NoError(t, err, rangeType)
		assert.Equal(t, rangeType, comments["x"].Range)
	}
}

func TestCommentLoader_ParseFieldComment(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    CommentData
	}{
		{"empty", "", CommentData{}},
		{"single line", "/** The name. */", CommentData{Description: "The name."}},
		{
			name: "multi line with range",
			comment: `/**
     * The size
     * in bytes.
     * @range {integer}
     */`,
			want: CommentData{Description: "The size in bytes.", Range: "integer"},
		},
		{"inline directives", "/** Secret @ignored */", CommentData{Description: "Secret", Ignored: true}},
		{
			name: "ignored tag",
			comment: `/**
     * Internal.
     * @ignored
     */`,
			want: CommentData{Description: "Internal.", Ignored: true},
		},
		{
			name: "other tags are skipped",
			comment: `/**
     * Value.
     * @default 3
     */`,
			want: CommentData{Description: "Value."},
		},
	}

	c := &CommentLoader{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ParseFieldComment(tt.comment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

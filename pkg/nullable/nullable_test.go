package nullable

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNull_Constructors(t *testing.T) {
	v, ok := From("x").Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	assert.True(t, Nil[int]().IsNull())
	assert.True(t, Null[int]{}.IsNull())

	n := 7
	assert.Equal(t, From(7), FromPtr(&n))
	assert.True(t, FromPtr[int](nil).IsNull())

	p := From(3).Ptr()
	require.NotNil(t, p)
	assert.Equal(t, 3, *p)
	assert.Nil(t, Nil[int]().Ptr())
}

func TestOptional_Constructors(t *testing.T) {
	v, ok := Some(1.5).Get()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	assert.True(t, None[string]().IsZero())
	assert.False(t, Some("").IsZero())
	assert.Equal(t, "def", None[string]().OrElse("def"))
	assert.Equal(t, "", Some("").OrElse("def"))
}

type row struct {
	Name  Null[string]     `json:"name"`
	Count Optional[int]    `json:"count,omitzero"`
	Note  Optional[string] `json:"note"`
}

/*
TestJSON_RoundTrip exercises the serialised forms: null stays null, absent
fields tagged omitzero disappear, and JSON null decodes into the empty state
of either type.
*/
func TestJSON_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   row
		want string
	}{
		{
			name: "all_present",
			in:   row{Name: From("a"), Count: Some(2), Note: Some("n")},
			want: `{"name":"a","count":2,"note":"n"}`,
		},
		{
			name: "null_and_absent",
			in:   row{},
			want: `{"name":null,"note":null}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}

	var got row
	require.NoError(t, json.Unmarshal([]byte(`{"name":null,"count":null,"note":"x"}`), &got))
	assert.True(t, got.Name.IsNull())
	assert.True(t, got.Count.IsZero())
	assert.Equal(t, Some("x"), got.Note)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"y","count":4}`), &got))
	assert.Equal(t, From("y"), got.Name)
	assert.Equal(t, Some(4), got.Count)

	assert.Error(t, json.Unmarshal([]byte(`{"count":"four"}`), &got))
}

type embedsNull struct {
	Null[int]
}

// Same field count as Null itself, with the wrapper methods promoted.
type (
	embedsNullPlusOne struct {
		Null[int]
		Extra int
	}
	embedsOptionalPlusOne struct {
		Optional[string]
		Extra bool
	}
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name     string
		typ      reflect.Type
		wantKind Kind
		wantElem reflect.Type
	}{
		{"null_string", reflect.TypeFor[Null[string]](), NullKind, reflect.TypeFor[string]()},
		{"optional_int", reflect.TypeFor[Optional[int]](), OptionalKind, reflect.TypeFor[int]()},
		{"null_of_pointer", reflect.TypeFor[Null[*int]](), NullKind, reflect.TypeFor[*int]()},
		{"plain_string", reflect.TypeFor[string](), Plain, nil},
		{"plain_pointer", reflect.TypeFor[*string](), Plain, nil},
		{"embedding_struct", reflect.TypeFor[embedsNull](), Plain, nil},
		{"embedding_null_plus_field", reflect.TypeFor[embedsNullPlusOne](), Plain, nil},
		{"embedding_optional_plus_field", reflect.TypeFor[embedsOptionalPlusOne](), Plain, nil},
		{"nil_type", nil, Plain, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, elem := Inspect(tt.typ)
			assert.Equal(t, tt.wantKind, k)
			assert.Equal(t, tt.wantElem, elem)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "null", NullKind.String())
	assert.Equal(t, "optional", OptionalKind.String())
}

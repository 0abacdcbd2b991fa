package codec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/daylist/internal/codec"
	"github.com/idilsaglam/daylist/internal/model"
)

func Test_Encode_Writes_Compact_Array(t *testing.T) {
	t.Parallel()

	b, err := codec.Encode([]model.Entry{{ID: "1709280000000", Name: "Milk"}, {ID: "2", Name: "Eggs", Done: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1709280000000","name":"Milk","done":false},{"id":"2","name":"Eggs","done":true}]`, string(b))
}

func Test_Encode_Nil_List_Is_Empty_Array(t *testing.T) {
	t.Parallel()

	b, err := codec.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func Test_Decode_Encode_Round_Trip(t *testing.T) {
	t.Parallel()

	lists := [][]model.Entry{
		{},
		{{ID: "a", Name: "Milk"}},
		{{ID: "a", Name: "Milk", Done: true}, {ID: "b", Name: "Ünïcode ✔"}, {ID: "c", Name: `quote " and \ slash`}},
	}

	for _, list := range lists {
		b, err := codec.Encode(list)
		require.NoError(t, err)

		got, err := codec.Decode(b)
		require.NoError(t, err)

		if diff := cmp.Diff(list, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func Test_Encode_Refuses_Invalid_UTF8(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		entries []model.Entry
	}{
		{name: "Name", entries: []model.Entry{{ID: "a", Name: "\xfe"}}},
		{name: "NameAfterValid", entries: []model.Entry{{ID: "a", Name: "Milk"}, {ID: "b", Name: "Eggs\xff"}}},
		{name: "ID", entries: []model.Entry{{ID: "\xc3", Name: "Milk"}}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b, err := codec.Encode(tc.entries)
			require.ErrorIs(t, err, codec.ErrNotUTF8)
			assert.Nil(t, b)
		})
	}
}

func Test_Decode_Accepts_Original_App_Documents(t *testing.T) {
	t.Parallel()

	got, err := codec.Decode([]byte(`[{"id":"1709280000000","name":"Milk ","done":false}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.Entry{{ID: "1709280000000", Name: "Milk "}}, got)
}

func Test_Decode_Null_Is_Empty_List(t *testing.T) {
	t.Parallel()

	got, err := codec.Decode([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func Test_Decode_Rejects_Malformed_Documents(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		doc  string
	}{
		{name: "Syntax", doc: `[{"id":"a",`},
		{name: "Object", doc: `{"id":"a","name":"Milk"}`},
		{name: "WrongIDType", doc: `[{"id":1,"name":"Milk","done":false}]`},
		{name: "WrongDoneType", doc: `[{"id":"a","name":"Milk","done":"yes"}]`},
		{name: "MissingID", doc: `[{"name":"Milk","done":false}]`},
		{name: "BlankName", doc: `[{"id":"a","name":"   ","done":false}]`},
		{name: "DuplicateID", doc: `[{"id":"a","name":"Milk"},{"id":"a","name":"Eggs"}]`},
		{name: "Empty", doc: ``},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.Decode([]byte(testCase.doc))
			require.ErrorIs(t, err, codec.ErrMalformed)
		})
	}
}

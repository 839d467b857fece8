package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMergeKeepsSiblingKeys(t *testing.T) {
	t.Parallel()

	doc := Document{
		"personal_info": map[string]any{
			"profile": map[string]any{"age": float64(30)},
			"contact": map[string]any{"email": "a@b.com"},
		},
	}

	doc.Merge(Document{"personal_info": map[string]any{"profile": map[string]any{"full_name": "Jane"}}})

	name, ok := doc.Get([]string{"personal_info", "profile", "full_name"})
	require.True(t, ok)
	assert.Equal(t, "Jane", name)

	age, ok := doc.Get([]string{"personal_info", "profile", "age"})
	require.True(t, ok)
	assert.Equal(t, float64(30), age)

	email, ok := doc.Get([]string{"personal_info", "contact", "email"})
	require.True(t, ok)
	assert.Equal(t, "a@b.com", email)
}

func TestDocumentMergeReplacesListsAndScalars(t *testing.T) {
	t.Parallel()

	doc := Document{
		"tags":  []any{"a", "b"},
		"count": float64(1),
		"nested": map[string]any{
			"kind": "object",
		},
	}

	doc.Merge(Document{
		"tags":   []any{"c"},
		"count":  float64(2),
		"nested": "flattened",
	})

	assert.Equal(t, []any{"c"}, doc["tags"])
	assert.Equal(t, float64(2), doc["count"])
	assert.Equal(t, "flattened", doc["nested"])
}

func TestDocumentMergeDoesNotAliasPartial(t *testing.T) {
	t.Parallel()

	partial := Document{"section": map[string]any{"list": []any{"x"}}}
	doc := Document{}
	doc.Merge(partial)

	partial["section"].(map[string]any)["list"] = []any{"mutated"}

	value, ok := doc.Get([]string{"section", "list"})
	require.True(t, ok)
	assert.Equal(t, []any{"x"}, value)
}

func TestDocumentSetPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     Document
		path    []string
		wantErr error
	}{
		{name: "creates intermediates", doc: Document{}, path: []string{"personal_info", "profile", "full_name"}},
		{name: "overwrites leaf", doc: Document{"personal_info": map[string]any{"profile": "old"}}, path: []string{"personal_info", "profile"}},
		{name: "rejects scalar intermediate", doc: Document{"personal_info": map[string]any{"profile": "old"}}, path: []string{"personal_info", "profile", "full_name"}, wantErr: ErrPathConflict},
		{name: "rejects list intermediate", doc: Document{"work": []any{"a"}}, path: []string{"work", "title"}, wantErr: ErrPathConflict},
		{name: "rejects empty path", doc: Document{}, path: nil, wantErr: ErrEmptyPath},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.doc.SetPath(tt.path, "Jane")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			got, ok := tt.doc.Get(tt.path)
			require.True(t, ok)
			assert.Equal(t, "Jane", got)
		})
	}
}

func TestDocumentAppendAndRemoveFromList(t *testing.T) {
	t.Parallel()

	doc := Document{}
	path := []string{"calendar_and_events", "reminders"}

	require.NoError(t, doc.AppendToList(path, "dentist"))
	require.NoError(t, doc.AppendToList(path, map[string]any{"task": "call mom"}))

	list, ok := doc.Get(path)
	require.True(t, ok)
	assert.Len(t, list, 2)

	removed, err := doc.RemoveFromList(path, map[string]any{"task": "call mom"})
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = doc.RemoveFromList(path, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	list, _ = doc.Get(path)
	assert.Equal(t, []any{"dentist"}, list)

	require.NoError(t, doc.SetPath([]string{"scalar"}, "text"))
	require.ErrorIs(t, doc.AppendToList([]string{"scalar"}, "x"), ErrPathConflict)

	removed, err = doc.RemoveFromList([]string{"absent", "list"}, "x")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDocumentAppendToTypedSlice(t *testing.T) {
	t.Parallel()

	doc := Document{"tags": []string{"a"}}
	require.NoError(t, doc.AppendToList([]string{"tags"}, "b"))
	assert.Equal(t, []any{"a", "b"}, doc["tags"])
}

func TestDocumentRevisionRoundTrip(t *testing.T) {
	t.Parallel()

	doc := Document{}
	assert.Equal(t, int64(0), doc.Revision())

	doc.SetRevision(7)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(7), decoded.Revision())
}

func TestDocumentDecodeAndPut(t *testing.T) {
	t.Parallel()

	doc := Document{}
	state := InternalState{LastProcessedRequestID: "r1"}
	require.NoError(t, doc.Put(KeyInternalState, state))

	var decoded InternalState
	require.NoError(t, doc.Decode(KeyInternalState, &decoded))
	assert.Equal(t, state, decoded)

	var missing BackendState
	require.NoError(t, doc.Decode("absent", &missing))
	assert.Zero(t, missing)
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"personal_info", "profile", "full_name"}, SplitPath(" personal_info.profile..full_name "))
	assert.Empty(t, SplitPath(""))
}

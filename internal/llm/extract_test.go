package llm_test

import (
	"testing"

	"github.com/grivax/grivax-api/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	type doc struct {
		Title string `json:"title"`
		Items []int  `json:"items"`
	}

	tests := []struct {
		name    string
		raw     string
		want    doc
		wantErr error
	}{
		{
			name: "PlainObject",
			raw:  `{"title":"Go","items":[1,2]}`,
			want: doc{Title: "Go", Items: []int{1, 2}},
		},
		{
			name: "FencedWithProse",
			raw:  "Here is your course:\n```json\n{\"title\": \"Go\", \"items\": [3]}\n```\nEnjoy!",
			want: doc{Title: "Go", Items: []int{3}},
		},
		{
			name: "NestedObjects",
			raw:  `prefix {"title":"a {b}","items":[]} suffix`,
			want: doc{Title: "a {b}", Items: []int{}},
		},
		{
			name:    "NoObject",
			raw:     "I cannot help with that.",
			wantErr: llm.ErrNoJSONObject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got doc
			err := llm.ExtractObject(tt.raw, &got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("BrokenJSON", func(t *testing.T) {
		var got doc
		err := llm.ExtractObject(`{"title": "unterminated}`, &got)
		require.Error(t, err)
		assert.NotErrorIs(t, err, llm.ErrNoJSONObject)
	})
}

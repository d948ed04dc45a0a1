package analyzer

import (
	"testing"

	"github.com/mcncl/isjson/internal/classifier"
	"github.com/mcncl/isjson/internal/models"
	"github.com/mcncl/isjson/internal/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toValue(t *testing.T, v any) models.Value {
	t.Helper()
	out, err := classifier.NewClassifier().Convert(v)
	require.NoError(t, err)
	return out
}

func TestAnalyze_Primitives(t *testing.T) {
	a := NewAnalyzer()

	assert.Equal(t, shape.TypeNull, a.Analyze(models.NullValue()).Type)
	assert.Equal(t, shape.TypeBoolean, a.Analyze(models.BoolValue(true)).Type)
	assert.Equal(t, shape.TypeNumber, a.Analyze(models.NumberValue(1.5)).Type)

	s := a.Analyze(models.StringValue("2023-05-20"))
	assert.Equal(t, shape.TypeString, s.Type)
	assert.Equal(t, shape.FormatDate, s.Format)

	plain := NewAnalyzerWithFormats(false).Analyze(models.StringValue("2023-05-20"))
	assert.Empty(t, plain.Format)
}

func TestAnalyze_SimpleObject(t *testing.T) {
	doc := map[string]any{
		"name":       "John Doe",
		"age":        30,
		"is_student": false,
		"uuid":       "550e8400-e29b-41d4-a716-446655440000",
		"updated_at": nil,
	}

	s := NewAnalyzer().Analyze(toValue(t, doc))
	require.Equal(t, shape.TypeObject, s.Type)
	require.Len(t, s.Properties, 5)
	assert.Equal(t, shape.TypeString, s.Properties["name"].Type)
	assert.Equal(t, shape.TypeNumber, s.Properties["age"].Type)
	assert.Equal(t, shape.TypeBoolean, s.Properties["is_student"].Type)
	assert.Equal(t, shape.FormatUUID, s.Properties["uuid"].Format)
	assert.Equal(t, shape.TypeNull, s.Properties["updated_at"].Type)
	assert.False(t, s.Exact)
}

func TestAnalyze_ArrayOfObjectsMergesProperties(t *testing.T) {
	doc := []any{
		map[string]any{"type": "user", "id": 1, "name": "Alice"},
		map[string]any{"type": "group", "id": 2, "members": 5},
		map[string]any{"type": "user", "id": 3, "name": "Bob", "active": true},
	}

	s := NewAnalyzer().Analyze(toValue(t, doc))
	require.Equal(t, shape.TypeArray, s.Type)
	require.NotNil(t, s.Items)

	props := s.Items.Properties
	require.Len(t, props, 5)
	assert.False(t, props["type"].Optional)
	assert.False(t, props["id"].Optional)
	assert.True(t, props["name"].Optional)
	assert.True(t, props["members"].Optional)
	assert.True(t, props["active"].Optional)

	assert.Empty(t, s.Validate(toValue(t, doc)))
}

func TestAnalyze_HeterogeneousArray(t *testing.T) {
	doc := []any{1, "string", true, nil, map[string]any{"nested": "object"}, []any{1, 2, 3}}

	s := NewAnalyzer().Analyze(toValue(t, doc))
	require.NotNil(t, s.Items)
	assert.True(t, s.Items.Nullable)
	require.Len(t, s.Items.AnyOf, 5)

	types := make([]shape.Type, 0, len(s.Items.AnyOf))
	for _, alt := range s.Items.AnyOf {
		types = append(types, alt.Type)
	}
	assert.Equal(t, []shape.Type{shape.TypeNumber, shape.TypeString, shape.TypeBoolean, shape.TypeObject, shape.TypeArray}, types)

	assert.Empty(t, s.Validate(toValue(t, doc)))
}

func TestAnalyze_NullableElements(t *testing.T) {
	s := NewAnalyzer().Analyze(toValue(t, []any{nil, "a", "b"}))
	require.NotNil(t, s.Items)
	assert.Equal(t, shape.TypeString, s.Items.Type)
	assert.True(t, s.Items.Nullable)
	assert.Empty(t, s.Items.AnyOf)
}

func TestAnalyze_NestedArrays(t *testing.T) {
	s := NewAnalyzer().Analyze(toValue(t, []any{[]any{1}, []any{}, []any{2, 3}}))
	require.NotNil(t, s.Items)
	assert.Equal(t, shape.TypeArray, s.Items.Type)
	require.NotNil(t, s.Items.Items)
	assert.Equal(t, shape.TypeNumber, s.Items.Items.Type)
}

func TestAnalyze_EmptyArray(t *testing.T) {
	s := NewAnalyzer().Analyze(models.ArrayValue())
	assert.Equal(t, shape.TypeArray, s.Type)
	assert.Nil(t, s.Items)
}

func TestAnalyze_DifferentStringFormats(t *testing.T) {
	s := NewAnalyzer().Analyze(toValue(t, []any{"2023-05-20", "2023-05-20T14:56:23Z"}))
	require.NotNil(t, s.Items)
	assert.Equal(t, shape.TypeString, s.Items.Type)
	assert.Empty(t, s.Items.Format)
}

func TestAnalyze_InferredShapeCompiles(t *testing.T) {
	doc := map[string]any{
		"users": []any{
			map[string]any{"id": 1, "roles": []any{"admin"}, "metadata": map[string]any{"login_count": 42}},
			map[string]any{"id": 2, "roles": []any{}, "metadata": nil},
		},
	}

	s := NewAnalyzer().Analyze(toValue(t, doc))
	data, err := s.YAML()
	require.NoError(t, err)

	parsed, err := shape.ParseBytes(data)
	require.NoError(t, err)
	assert.Empty(t, parsed.Validate(toValue(t, doc)))

	metadata := parsed.Properties["users"].Items.Properties["metadata"]
	assert.True(t, metadata.Nullable)
	assert.Equal(t, shape.TypeObject, metadata.Type)
}

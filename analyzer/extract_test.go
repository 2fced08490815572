package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisText(t *testing.T) {
	const body = `{"user_reply":"Sorry to hear that...","summary":"Critical bug","actions":["Investigate crash"]}`
	want := Analysis{
		UserReply: "Sorry to hear that...",
		Summary:   "Critical bug",
		Actions:   []string{"Investigate crash"},
	}

	testCases := []struct {
		name string
		text string
	}{
		{name: "bare object", text: body},
		{name: "surrounding whitespace", text: "\n\n  " + body + "  \n"},
		{name: "json fence", text: "```json\n" + body + "\n```"},
		{name: "plain fence", text: "```\n" + body + "\n```"},
		{name: "fence without closing", text: "```json\n" + body},
		{name: "closing fence only", text: body + "\n```"},
		{name: "single line fence", text: "```json " + body + "```"},
		{name: "prose around object", text: "Here is the analysis:\n" + body + "\nHope this helps."},
		{name: "prose and fence", text: "Sure!\n```json\n" + body + "\n```\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := ParseAnalysisText(testCase.text)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseAnalysisTextRejects(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{name: "empty", text: "   "},
		{name: "not json", text: "I'm sorry, I can't help with that."},
		{name: "truncated object", text: `{"user_reply":"Thanks","summary":`},
		{name: "array", text: `["a","b"]`},
		{name: "wrong types", text: `{"user_reply":1,"summary":true,"actions":"x"}`},
		{name: "unrelated keys", text: `{"answer":"42"}`},
		{name: "fenced garbage", text: "```json\nnot json\n```"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ParseAnalysisText(testCase.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoStructuredPayload))
		})
	}
}

func TestParseAnalysisTextMissingFieldsStayAbsent(t *testing.T) {
	got, err := ParseAnalysisText(`{"user_reply":"Thanks!","summary":"Positive"}`)
	require.NoError(t, err)

	assert.Equal(t, "Thanks!", got.UserReply)
	assert.Equal(t, "Positive", got.Summary)
	assert.Nil(t, got.Actions)
}

func TestParseAnalysisTextKeepsFieldsVerbatim(t *testing.T) {
	got, err := ParseAnalysisText(`{"user_reply":"  Thanks!\n","summary":" s ","actions":[" ","Call customer",""]}`)
	require.NoError(t, err)

	assert.Equal(t, "  Thanks!\n", got.UserReply)
	assert.Equal(t, " s ", got.Summary)
	assert.Equal(t, []string{" ", "Call customer", ""}, got.Actions)
}

func TestDecodeStructured(t *testing.T) {
	got, err := decodeStructured(map[string]any{
		"user_reply": "Thanks",
		"summary":    "Positive",
		"actions":    []any{"Share with team"},
	})
	require.NoError(t, err)
	assert.Equal(t, Analysis{UserReply: "Thanks", Summary: "Positive", Actions: []string{"Share with team"}}, got)

	_, err = decodeStructured(nil)
	assert.ErrorIs(t, err, ErrNoStructuredPayload)
}

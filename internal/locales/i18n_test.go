package locales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit_FallsBackToEnglishOnBadCode(t *testing.T) {
	require.NoError(t, Init("not a language!"))
	assert.Equal(t, language.English, DefaultLanguageTag())
}

func TestGetMessage(t *testing.T) {
	require.NoError(t, Init("en"))

	t.Run("English", func(t *testing.T) {
		msg := GetMessage(NewLocalizer("en"), "MsgGroupLine", map[string]interface{}{
			"Index": 1, "Name": "Test", "ID": "g1",
		}, nil)
		assert.Equal(t, "1. Test (ID: g1)", msg)
	})

	t.Run("Russian", func(t *testing.T) {
		msg := GetMessage(NewLocalizer("ru"), "MsgCancelled", nil, nil)
		assert.Equal(t, "Операция отменена пользователем", msg)
	})

	t.Run("MissingTranslationFallsBackToEnglish", func(t *testing.T) {
		msg := GetMessage(NewLocalizer("ru"), "MsgErrorOccurred", map[string]interface{}{"Error": "boom"}, nil)
		assert.Equal(t, "An error occurred: boom", msg)
	})

	t.Run("UnknownIDReturnsID", func(t *testing.T) {
		assert.Equal(t, "MsgDoesNotExist", GetMessage(NewLocalizer("en"), "MsgDoesNotExist", nil, nil))
	})

	t.Run("PromptKeepsTrailingSpace", func(t *testing.T) {
		assert.Equal(t, "Enter API ID: ", GetMessage(NewLocalizer("en"), "PromptAPIID", nil, nil))
	})
}

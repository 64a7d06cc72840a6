package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"series":"0320"}`, `{"series":"0320"}`, true},
		{"prose wrapped", "Вот результат:\n```json\n{\"series\":\"0320\"}\n```\nГотово.", `{"series":"0320"}`, true},
		{"nested braces", `x {"a":{"b":"c"}} y`, `{"a":{"b":"c"}}`, true},
		{"brace in string", `{"text":"скобка } внутри"}`, `{"text":"скобка } внутри"}`, true},
		{"no json", "простой текст без структуры", "", false},
		{"unterminated", `{"series":"0320"`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}

func TestValidatePassportPayload(t *testing.T) {
	schema := BuildFieldsSchema(constants.DocTypePassport)

	assert.NoError(t, ValidateJSONAgainstSchema(schema,
		[]byte(`{"lastName":"Иванов","series":"0320","number":"706987"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema,
		[]byte(`{"lastName":"Иванов","unexpected":"x"}`)), "unknown properties are rejected")
	assert.Error(t, ValidateJSONAgainstSchema(schema,
		[]byte(`{"series":320}`)), "non-string values are rejected")
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`not json`)))
}

func TestCheckRefusal(t *testing.T) {
	refusals := []string{
		"I'm sorry, but I can't assist with that request.",
		"Я не могу помочь с обработкой документов, удостоверяющих личность.",
		"This request violates our content policy.",
	}
	for _, text := range refusals {
		err := CheckRefusal(text)
		require.Error(t, err, "expected refusal for %q", text)
		assert.ErrorIs(t, err, common.ErrRefused)
	}

	assert.NoError(t, CheckRefusal(`{"series":"0320","number":"706987"}`))
}

func TestPromptFor(t *testing.T) {
	assert.Contains(t, PromptFor(constants.DocTypePassport), "паспорта")
	assert.Contains(t, PromptFor(constants.DocTypeSnils), "СНИЛС")
	assert.Contains(t, PromptFor(constants.DocTypeLicense), "водительского")
	assert.Contains(t, PromptFor(constants.DocTypeUnknown), "JSON")
}

package vision

import "github.com/pravodoc/docrecog/constants"

// Document prompts. Each one demands strict JSON with the exact field
// names the local extractor produces, so both paths merge cleanly.

const passportPrompt = `Ты распознаёшь фотографию паспорта РФ.
Внимательно найди серию (4 цифры) и номер (6 цифр): они напечатаны
вертикально красным цветом на правом краю страницы и могут повторяться
в машиночитаемой зоне внизу. Извлеки все видимые поля.
Верни СТРОГО JSON без пояснений:
{"lastName":"","firstName":"","middleName":"","series":"","number":"","birthDate":"","birthPlace":"","issueDate":"","issuedBy":"","departmentCode":""}
Пустые поля опусти. Даты в формате ДД.ММ.ГГГГ.`

const snilsPrompt = `Ты распознаёшь фотографию СНИЛС (страхового свидетельства РФ).
Извлеки номер (формат XXX-XXX-XXX XX) и ФИО владельца.
Верни СТРОГО JSON без пояснений:
{"lastName":"","firstName":"","middleName":"","number":"","birthDate":""}
Пустые поля опусти.`

const licensePrompt = `Ты распознаёшь фотографию водительского удостоверения РФ.
Извлеки серию, номер, ФИО, даты выдачи и окончания, открытые категории.
Верни СТРОГО JSON без пояснений:
{"lastName":"","firstName":"","middleName":"","series":"","number":"","issueDate":"","expiryDate":"","categories":""}
Пустые поля опусти.`

const defaultPrompt = `Распознай весь текст на изображении документа.
Верни СТРОГО JSON без пояснений: {"text":"весь распознанный текст"}.`

// PromptFor returns the extraction prompt for a document type.
func PromptFor(docType constants.DocType) string {
	switch docType {
	case constants.DocTypePassport:
		return passportPrompt
	case constants.DocTypeSnils:
		return snilsPrompt
	case constants.DocTypeLicense:
		return licensePrompt
	default:
		return defaultPrompt
	}
}

package assistant

import "github.com/sagecampus/sage-assistant-go/internal/lang"

// cannotRespondMessage is the fixed apology returned when the completion
// service fails. Localized to the detected request language.
func cannotRespondMessage(tag lang.Tag) string {
	if tag == lang.Turkish {
		return "Üzgünüm, şu anda yanıt oluşturamıyorum. Lütfen daha sonra tekrar deneyin."
	}
	return "I'm sorry, I cannot generate a response at the moment. Please try again later."
}

// languageFallbackMessage is the fixed apology returned when the repair
// attempt still produced the wrong language.
func languageFallbackMessage(tag lang.Tag) string {
	if tag == lang.Turkish {
		return "Üzgünüm, yanıtı Türkçe oluşturamadım. Lütfen tekrar deneyin."
	}
	return "Sorry, I couldn't produce a response in English. Please try again."
}
